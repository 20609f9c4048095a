// Package harness provides conformance testing for the mutation engine.
//
// Scenarios are YAML files describing an operation sequence with expected
// outcomes; the harness runs them against a seeded store and returns the
// final snapshot for inspection. They serve as executable contracts for
// the versioning and validation rules.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - op: create_release
//	    payload: { id: REL-2025-06-01, release_date: "2025-06-01", description: "Summer." }
//	  - op: create_epic_version
//	    payload: { epic_id: EPIC-001, release_ref: REL-2024-12-01, summary: "Late." }
//	    expect_error: CLOSED_RELEASE
//
// Steps without expect_error must succeed; steps with it must fail with
// exactly that taxonomy code and leave the store unchanged.
package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reqstore/internal/mutate"
	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/store"
	"github.com/roach88/reqstore/internal/testutil"
)

// Scenario is one conformance scenario.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one operation in a scenario.
type Step struct {
	Op      string         `yaml:"op"`
	Payload map[string]any `yaml:"payload"`

	// ExpectError names the taxonomy code this step must fail with.
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &sc, nil
}

// Run executes the scenario against a store seeded with the standard
// fixture and returns the final snapshot. Timestamps and operation IDs are
// deterministic so repeated runs produce identical state.
func (sc *Scenario) Run(dataDir string) (*record.Snapshot, error) {
	st := store.New(dataDir)
	if err := st.SaveAll(testutil.SeedSnapshot()); err != nil {
		return nil, err
	}

	clock := testutil.NewTickingClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	seq := 0
	engine := mutate.New(st,
		mutate.WithClock(clock.Now),
		mutate.WithOpID(func() string {
			seq++
			return fmt.Sprintf("%s-%04d", sc.Name, seq)
		}),
	)

	for i, step := range sc.Steps {
		payload, err := json.Marshal(step.Payload)
		if err != nil {
			return nil, fmt.Errorf("scenario %s step %d: encode payload: %w", sc.Name, i+1, err)
		}

		_, err = engine.Apply(step.Op, payload)
		switch {
		case step.ExpectError == "" && err != nil:
			return nil, fmt.Errorf("scenario %s step %d (%s): unexpected error: %w", sc.Name, i+1, step.Op, err)
		case step.ExpectError != "" && err == nil:
			return nil, fmt.Errorf("scenario %s step %d (%s): expected %s, got success", sc.Name, i+1, step.Op, step.ExpectError)
		case step.ExpectError != "" && string(record.CodeOf(err)) != step.ExpectError:
			return nil, fmt.Errorf("scenario %s step %d (%s): expected %s, got %v", sc.Name, i+1, step.Op, step.ExpectError, err)
		}
	}

	return st.LoadAll()
}
