// Package scenario runs scripted contract calls and checks their outcomes.
//
// A scenario is a YAML document:
//
//	name: endpoint_2
//	steps:
//	  - name: echo
//	    endpoint: endpoint_2
//	    args: [4, 75, 874566, 8984584484, 1848]
//	    expect:
//	      status: ok
//	      results: [4, 75, 874566, 8984584484, 1848]
//	  - name: b rejected
//	    endpoint: endpoint_2
//	    args: [4, 76, 874566, 8984584484, 1848]
//	    expect:
//	      status: user_error
//	      message: b failed
//
// Arguments and expected results are native values (see abi.FromNative).
// A step may give raw hex slots instead of args.
package scenario

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract-abi/dispatch"
	"github.com/wippyai/contract-abi/errors"
)

// Scenario is an ordered list of calls.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one call and its expected outcome.
type Step struct {
	Expect   Expect   `yaml:"expect"`
	Name     string   `yaml:"name"`
	Endpoint string   `yaml:"endpoint"`
	Args     []any    `yaml:"args"`
	Raw      []string `yaml:"raw"`
}

// Expect describes the outcome a step must produce. Results are compared
// slot by slot after encoding them against the endpoint outputs; RawResults
// are compared as hex.
type Expect struct {
	ReturnCode *int     `yaml:"return_code"`
	Status     string   `yaml:"status"`
	Message    string   `yaml:"message"`
	Results    []any    `yaml:"results"`
	RawResults []string `yaml:"raw_results"`
}

// Parse reads a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.ParseFailed("scenario", err)
	}
	for i := range sc.Steps {
		if err := sc.Steps[i].validate(); err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path("steps", sc.Steps[i].label(i)).
				Cause(err).
				Detail("invalid step %d", i).
				Build()
		}
	}
	return &sc, nil
}

// LoadFile reads a scenario from disk.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read scenario "+path, err)
	}
	return Parse(data)
}

func (s *Step) validate() error {
	if s.Endpoint == "" {
		return errors.InvalidInput(errors.PhaseParse, "missing endpoint")
	}
	if len(s.Args) > 0 && len(s.Raw) > 0 {
		return errors.InvalidInput(errors.PhaseParse, "args and raw are mutually exclusive")
	}
	if s.Expect.Status == "" {
		s.Expect.Status = dispatch.StatusSuccess.String()
	}
	switch s.Expect.Status {
	case dispatch.StatusSuccess.String(), dispatch.StatusRejected.String(), dispatch.StatusFault.String():
	default:
		return errors.InvalidInput(errors.PhaseParse, "unknown status "+s.Expect.Status)
	}
	return nil
}

func (s *Step) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Endpoint + "#" + strconv.Itoa(i)
}
