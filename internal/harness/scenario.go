package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the path of the specification file.
	Spec string `yaml:"spec"`

	// Budget overrides the concurrency budget. Zero uses a small default.
	Budget int `yaml:"budget,omitempty"`

	// Input lists the records fed to the pipeline, in order.
	Input []InputRecord `yaml:"input"`

	// Expect holds run-level expectations.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate individual findings.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InputRecord describes one input line.
type InputRecord struct {
	// Raw, when set, is used verbatim and every other field is ignored.
	Raw string `yaml:"raw,omitempty"`

	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Query  string `yaml:"query,omitempty"`
	Status int64  `yaml:"status,omitempty"`

	// Bodies are JSON text. Content types default to application/json.
	RequestBody         string `yaml:"request_body,omitempty"`
	RequestContentType  string `yaml:"request_content_type,omitempty"`
	ResponseBody        string `yaml:"response_body,omitempty"`
	ResponseContentType string `yaml:"response_content_type,omitempty"`

	Tags []string `yaml:"tags,omitempty"`
}

// ExpectClause specifies run-level outcomes. Nil fields are not checked.
type ExpectClause struct {
	Records *int64 `yaml:"records,omitempty"`
	Skipped *int64 `yaml:"skipped,omitempty"`
	Results *int   `yaml:"results,omitempty"`

	// Kinds is the multiset of finding kinds, in any order.
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion validates the findings of a run.
type Assertion struct {
	// Type is one of finding_contains, finding_count, finding_absent.
	Type string `yaml:"type"`

	Kind      string   `yaml:"kind,omitempty"`
	Path      string   `yaml:"path,omitempty"`
	Method    string   `yaml:"method,omitempty"`
	Parameter string   `yaml:"parameter,omitempty"`
	JSONPath  string   `yaml:"json_path,omitempty"`
	Issue     string   `yaml:"issue,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`

	// Count is the expected number of findings (finding_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFindingContains = "finding_contains"
	AssertFindingCount    = "finding_count"
	AssertFindingAbsent   = "finding_absent"
)

// LoadScenario reads and parses a scenario YAML file, resolving the spec
// path relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// a relative spec path against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(scenario.Spec) && basePath != "" {
		scenario.Spec = filepath.Join(basePath, scenario.Spec)
	}
	if _, err := os.Stat(scenario.Spec); err != nil {
		return nil, fmt.Errorf("invalid scenario: spec file not found: %s", scenario.Spec)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML. Unknown fields are rejected. The
// spec path is not resolved or checked.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // typos like "assertion:" fail loudly
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if s.Budget < 0 {
		return fmt.Errorf("budget must be non-negative")
	}
	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, rec := range s.Input {
		if rec.Raw != "" {
			continue
		}
		if rec.Method == "" {
			return fmt.Errorf("input[%d]: method is required", i)
		}
		if rec.Path == "" {
			return fmt.Errorf("input[%d]: path is required", i)
		}
		if rec.Status == 0 {
			return fmt.Errorf("input[%d]: status is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFindingContains, AssertFindingAbsent:
		if a.Kind == "" && a.Path == "" && a.Parameter == "" && a.JSONPath == "" {
			return fmt.Errorf("assertions[%d]: at least one of kind, path, parameter, json_path is required for %s", index, a.Type)
		}
	case AssertFindingCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for finding_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for finding_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
