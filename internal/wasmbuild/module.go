package wasmbuild

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionMemory   = 0x05
	sectionExport   = 0x07
	sectionCode     = 0x0a
	sectionData     = 0x0b

	externFunc   = 0x00
	externMemory = 0x02

	funcTypeForm = 0x60
)

// MemoryExport is the export name of the module's linear memory.
const MemoryExport = "memory"

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

type importFunc struct {
	module string
	name   string
	sig    signature
}

type localFunc struct {
	name   string
	sig    signature
	locals []api.ValueType
	body   []byte
}

type segment struct {
	data   []byte
	offset uint32
}

// ModuleBuilder builds a core module with function imports, exported
// functions, one exported memory and active data segments.
type ModuleBuilder struct {
	imports     []importFunc
	funcs       []localFunc
	data        []segment
	memoryPages uint32
}

// NewModule creates a builder with a one-page memory.
func NewModule() *ModuleBuilder {
	return &ModuleBuilder{memoryPages: 1}
}

// Import declares a host function import and returns its function index.
// All imports must be declared before the first Func.
func (b *ModuleBuilder) Import(module, name string, params, results []api.ValueType) uint32 {
	if len(b.funcs) > 0 {
		panic("wasmbuild: Import after Func")
	}
	b.imports = append(b.imports, importFunc{
		module: module,
		name:   name,
		sig:    signature{params: params, results: results},
	})
	return uint32(len(b.imports) - 1)
}

// Func defines an exported function and returns its function index. Locals
// are numbered after params.
func (b *ModuleBuilder) Func(name string, params, results, locals []api.ValueType, code *Code) uint32 {
	b.funcs = append(b.funcs, localFunc{
		name:   name,
		sig:    signature{params: params, results: results},
		locals: locals,
		body:   code.Bytes(),
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Memory sets the minimum number of 64KiB pages.
func (b *ModuleBuilder) Memory(pages uint32) {
	b.memoryPages = pages
}

// Data places bytes at offset when the module is instantiated.
func (b *ModuleBuilder) Data(offset uint32, data []byte) {
	b.data = append(b.data, segment{offset: offset, data: data})
}

// Build generates the module bytes.
func (b *ModuleBuilder) Build() []byte {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	wasm = appendSection(wasm, sectionType, b.buildTypeSection())
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, sectionImport, b.buildImportSection())
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionFunction, b.buildFuncSection())
	}
	wasm = appendSection(wasm, sectionMemory, b.buildMemorySection())
	wasm = appendSection(wasm, sectionExport, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionCode, b.buildCodeSection())
	}
	if len(b.data) > 0 {
		wasm = appendSection(wasm, sectionData, b.buildDataSection())
	}
	return wasm
}

func appendSection(wasm []byte, id byte, body []byte) []byte {
	wasm = append(wasm, id)
	wasm = AppendULEB128(wasm, uint32(len(body)))
	return append(wasm, body...)
}

// One type per function, imports first. Duplicates are legal.
func (b *ModuleBuilder) buildTypeSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.imports)+len(b.funcs)))
	for _, imp := range b.imports {
		section = appendSignature(section, imp.sig)
	}
	for _, f := range b.funcs {
		section = appendSignature(section, f.sig)
	}
	return section
}

func appendSignature(buf []byte, sig signature) []byte {
	buf = append(buf, funcTypeForm)
	buf = AppendULEB128(buf, uint32(len(sig.params)))
	for _, t := range sig.params {
		buf = append(buf, ValType(t))
	}
	buf = AppendULEB128(buf, uint32(len(sig.results)))
	for _, t := range sig.results {
		buf = append(buf, ValType(t))
	}
	return buf
}

func (b *ModuleBuilder) buildImportSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.imports)))
	for i, imp := range b.imports {
		section = appendName(section, imp.module)
		section = appendName(section, imp.name)
		section = append(section, externFunc)
		section = AppendULEB128(section, uint32(i))
	}
	return section
}

func (b *ModuleBuilder) buildFuncSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.funcs)))
	for i := range b.funcs {
		section = AppendULEB128(section, uint32(len(b.imports)+i))
	}
	return section
}

func (b *ModuleBuilder) buildMemorySection() []byte {
	section := []byte{0x01, 0x00}
	return AppendULEB128(section, b.memoryPages)
}

func (b *ModuleBuilder) buildExportSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.funcs)+1))
	section = appendName(section, MemoryExport)
	section = append(section, externMemory, 0x00)
	for i, f := range b.funcs {
		section = appendName(section, f.name)
		section = append(section, externFunc)
		section = AppendULEB128(section, uint32(len(b.imports)+i))
	}
	return section
}

func (b *ModuleBuilder) buildCodeSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.funcs)))
	for _, f := range b.funcs {
		var body []byte
		body = AppendULEB128(body, uint32(len(f.locals)))
		for _, t := range f.locals {
			body = append(body, 0x01, ValType(t))
		}
		body = append(body, f.body...)
		body = append(body, opEnd)

		section = AppendULEB128(section, uint32(len(body)))
		section = append(section, body...)
	}
	return section
}

func (b *ModuleBuilder) buildDataSection() []byte {
	var section []byte
	section = AppendULEB128(section, uint32(len(b.data)))
	for _, seg := range b.data {
		section = append(section, 0x00, opI32Const)
		section = AppendSLEB128(section, int32(seg.offset))
		section = append(section, opEnd)
		section = AppendULEB128(section, uint32(len(seg.data)))
		section = append(section, seg.data...)
	}
	return section
}

// ValType converts a wazero value type to its binary encoding.
func ValType(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI32:
		return 0x7f
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}
