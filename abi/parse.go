package abi

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract-abi/args"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

type document struct {
	Types       map[string]typeDoc `json:"types" yaml:"types"`
	Constructor *endpointDoc       `json:"constructor" yaml:"constructor"`
	Name        string             `json:"name" yaml:"name"`
	Endpoints   []endpointDoc      `json:"endpoints" yaml:"endpoints"`
}

type endpointDoc struct {
	Name       string      `json:"name" yaml:"name"`
	Mutability string      `json:"mutability" yaml:"mutability"`
	Docs       []string    `json:"docs" yaml:"docs"`
	Inputs     []inputDoc  `json:"inputs" yaml:"inputs"`
	Outputs    []outputDoc `json:"outputs" yaml:"outputs"`
}

type inputDoc struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	MultiArg bool   `json:"multi_arg" yaml:"multi_arg"`
}

type outputDoc struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	MultiResult bool   `json:"multi_result" yaml:"multi_result"`
}

type typeDoc struct {
	Type     string       `json:"type" yaml:"type"`
	Fields   []fieldDoc   `json:"fields" yaml:"fields"`
	Variants []variantDoc `json:"variants" yaml:"variants"`
}

type fieldDoc struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type variantDoc struct {
	Discriminant *int       `json:"discriminant" yaml:"discriminant"`
	Name         string     `json:"name" yaml:"name"`
	Fields       []fieldDoc `json:"fields" yaml:"fields"`
}

// Parse reads an ABI document in JSON form.
func Parse(data []byte) (*Definition, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.ParseFailed("ABI JSON", err)
	}
	return build(&doc)
}

// ParseYAML reads an ABI document in YAML form.
func ParseYAML(data []byte) (*Definition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseFailed("ABI YAML", err)
	}
	return build(&doc)
}

// LoadFile reads an ABI document, choosing the format by file extension.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("cannot read ABI file "+path, err)
	}
	var def *Definition
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		def, err = ParseYAML(data)
	default:
		def, err = Parse(data)
	}
	if err != nil {
		return nil, err
	}
	Logger().Debug("loaded ABI",
		zap.String("path", path),
		zap.String("name", def.Name),
		zap.Int("endpoints", len(def.Endpoints)),
		zap.Int("types", len(def.Types)))
	return def, nil
}

func build(doc *document) (*Definition, error) {
	def := &Definition{
		Name:  doc.Name,
		Types: make(map[string]*codec.Type, len(doc.Types)),
	}

	// Declare every custom type first so fields can refer to any of them.
	names := slices.Sorted(maps.Keys(doc.Types))
	for _, name := range names {
		td := doc.Types[name]
		switch td.Type {
		case "struct":
			def.Types[name] = &codec.Type{Kind: codec.KindStruct, Name: name}
		case "enum", "explicit-enum":
			def.Types[name] = &codec.Type{Kind: codec.KindEnum, Name: name}
		default:
			return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
				Path("types", name).
				Detail("unsupported type kind %q", td.Type).
				Build()
		}
	}

	r := &resolver{custom: def.Types}
	for _, name := range names {
		if err := fillType(r, def.Types[name], doc.Types[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := def.Types[name].Validate(); err != nil {
			return nil, err
		}
	}

	if doc.Constructor != nil {
		ep, err := buildEndpoint(r, doc.Constructor)
		if err != nil {
			return nil, err
		}
		if ep.Name == "" {
			ep.Name = "init"
		}
		def.Constructor = ep
	}

	seen := make(map[string]bool, len(doc.Endpoints))
	for i := range doc.Endpoints {
		ep, err := buildEndpoint(r, &doc.Endpoints[i])
		if err != nil {
			return nil, err
		}
		if seen[ep.Name] {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path("endpoints", ep.Name).
				Detail("duplicate endpoint %q", ep.Name).
				Build()
		}
		seen[ep.Name] = true
		if err := ep.Validate(); err != nil {
			return nil, err
		}
		def.Endpoints = append(def.Endpoints, ep)
	}
	return def, nil
}

func fillType(r *resolver, t *codec.Type, td typeDoc) error {
	switch t.Kind {
	case codec.KindStruct:
		fields, err := buildFields(r, []string{"types", t.Name}, td.Fields)
		if err != nil {
			return err
		}
		t.Fields = fields
	case codec.KindEnum:
		for i, vd := range td.Variants {
			if vd.Discriminant != nil && *vd.Discriminant != i {
				return errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Path("types", t.Name, vd.Name).
					Value(*vd.Discriminant).
					Detail("variant %s has discriminant %d but is declared at position %d", vd.Name, *vd.Discriminant, i).
					Build()
			}
			fields, err := buildFields(r, []string{"types", t.Name, vd.Name}, vd.Fields)
			if err != nil {
				return err
			}
			v := codec.Variant{Name: vd.Name, Fields: fields, Shape: variantShape(fields)}
			t.Variants = append(t.Variants, v)
		}
	}
	return nil
}

// variantShape treats fields named "0", "1", ... as a positional payload.
func variantShape(fields []codec.Field) codec.Shape {
	if len(fields) == 0 {
		return codec.ShapeUnit
	}
	for i, f := range fields {
		if f.Name != strconv.Itoa(i) {
			return codec.ShapeStruct
		}
	}
	return codec.ShapeTuple
}

func buildFields(r *resolver, path []string, docs []fieldDoc) ([]codec.Field, error) {
	fields := make([]codec.Field, 0, len(docs))
	for _, fd := range docs {
		e, err := parseExpr(fd.Type)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "field "+fd.Name)
		}
		t, err := r.typeOf(e)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindOf(err)).
				Path(append(path, fd.Name)...).
				Cause(err).
				Detail("cannot resolve field type %q", fd.Type).
				Build()
		}
		fields = append(fields, codec.NewField(fd.Name, t))
	}
	return fields, nil
}

func buildEndpoint(r *resolver, ed *endpointDoc) (*Endpoint, error) {
	ep := &Endpoint{
		Name:       ed.Name,
		Mutability: ed.Mutability,
		Docs:       ed.Docs,
	}
	for i, in := range ed.Inputs {
		ps, err := endpointParams(r, ed.Name, in.Name, in.Type, "input "+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		ep.Inputs = append(ep.Inputs, ps...)
	}
	for i, out := range ed.Outputs {
		name := out.Name
		if name == "" {
			name = "out" + strconv.Itoa(i)
		}
		ps, err := endpointParams(r, ed.Name, name, out.Type, "output "+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		ep.Outputs = append(ep.Outputs, ps...)
	}
	return ep, nil
}

// endpointParams resolves one declared input or output. A top-level
// multi<A,B,...> occupies the same slots as its items declared one by one,
// so it is flattened; this lets it end in variadic<T> or optional<T>.
func endpointParams(r *resolver, endpoint, name, typ, where string) ([]args.Param, error) {
	e, err := parseExpr(typ)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, endpoint+" "+where)
	}
	items := []expr{e}
	names := []string{name}
	if e.name == "multi" {
		items = e.args
		names = make([]string, len(items))
		for j := range items {
			names[j] = name + "_" + strconv.Itoa(j)
		}
	}
	out := make([]args.Param, 0, len(items))
	for j, item := range items {
		p, err := r.param(names[j], item)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindOf(err)).
				Path("endpoints", endpoint, name).
				Cause(err).
				Detail("cannot resolve %s type %q", where, typ).
				Build()
		}
		out = append(out, p)
	}
	return out, nil
}
