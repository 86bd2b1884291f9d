// Package fixture replays recorded instrumentation scenarios from JSON:
// class definitions, construction calls and forward patches, run through
// the real interceptor and adapter.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string           `json:"description"`
	Classes     []FixtureClass   `json:"classes"`
	Steps       []FixtureStep    `json:"steps"`
	Expected    []ExpectedResult `json:"expected_results,omitempty"`
}

// FixtureClass declares one instrumentable class.
type FixtureClass struct {
	Name          string         `json:"name"`
	Pkg           string         `json:"pkg"`
	Base          string         `json:"base,omitempty"`
	InitParams    []FixtureParam `json:"init_params"`
	ForwardParams []string       `json:"forward_params"`
}

// FixtureParam is a declared constructor parameter, optionally defaulted.
type FixtureParam struct {
	Name    string          `json:"name"`
	Default json.RawMessage `json:"default,omitempty"`
}

// FixtureStep is one replay action; exactly one field is set.
type FixtureStep struct {
	Construct *ConstructStep `json:"construct,omitempty"`
	Patch     *PatchStep     `json:"patch,omitempty"`
	Call      *CallStep      `json:"call,omitempty"`
}

// ConstructStep instantiates a class.
type ConstructStep struct {
	Class  string         `json:"class"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// PatchStep replaces the forward method with a patch declaring the given
// parameter names.
type PatchStep struct {
	Class  string   `json:"class"`
	Params []string `json:"params"`
}

// CallStep invokes forward on the most recent instance of the class.
type CallStep struct {
	Class  string         `json:"class"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// ExpectedResult captures the expected outcome of one step.
type ExpectedResult struct {
	Step    int      `json:"step"`
	Action  string   `json:"action"` // "construct" | "patch" | "patch_adapted" | "call"
	Missing []string `json:"missing,omitempty"`
}

// #endregion fixture-types

// #region load

// Load reads and parses a fixture file.
func Load(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	for i, step := range f.Steps {
		if step.Construct == nil && step.Patch == nil && step.Call == nil {
			return Fixture{}, fmt.Errorf("fixture step %d: no action", i)
		}
	}
	return f, nil
}

// #endregion load
