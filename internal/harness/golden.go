package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tenpair/internal/ir"
)

// TraceSnapshot captures the observable outcome of a scenario.
// Snapshot hashes are left out so golden files stay readable; the edit
// stream and final board pin the same information.
type TraceSnapshot struct {
	ScenarioName string
	Width        int
	Trace        []TraceEvent
	Board        string
}

// toIR converts the snapshot to an IR object for canonical serialization.
// ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toIR() ir.IRObject {
	cycles := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		ops := make(ir.IRArray, len(event.Ops))
		for j, op := range event.Ops {
			obj := ir.IRObject{
				"seq":     ir.IRInt(op.Seq),
				"op":      ir.IRString(op.Op),
				"outcome": ir.IRString(op.Outcome),
			}
			if op.Reason != "" {
				obj["reason"] = ir.IRString(op.Reason)
			}
			ops[j] = obj
		}

		edits := make(ir.IRArray, len(event.Edits))
		for j, e := range event.EditStrings() {
			edits[j] = ir.IRString(e)
		}

		cycle := ir.IRObject{
			"seq":   ir.IRInt(event.Seq),
			"ops":   ops,
			"edits": edits,
		}
		if event.Invariant != "" {
			cycle["invariant"] = ir.IRString(event.Invariant)
		}
		cycles[i] = cycle
	}

	return ir.IRObject{
		"scenario": ir.IRString(s.ScenarioName),
		"width":    ir.IRInt(s.Width),
		"cycles":   cycles,
		"board":    ir.IRString(s.Board),
	}
}

// RunWithGolden executes a scenario and compares its trace against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Width:        scenario.Width,
		Trace:        result.Trace,
		Board:        result.Board,
	}
	return result, assertSnapshot(t, scenario.Name, &snapshot)
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, width int, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Width:        width,
		Trace:        result.Trace,
		Board:        result.Board,
	}
	return assertSnapshot(t, scenarioName, &snapshot)
}

// GoldenBytes returns the canonical golden encoding of a result.
func GoldenBytes(scenarioName string, width int, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Width:        width,
		Trace:        result.Trace,
		Board:        result.Board,
	}
	return ir.MarshalCanonical(snapshot.toIR())
}

func assertSnapshot(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := ir.MarshalCanonical(snapshot.toIR())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
