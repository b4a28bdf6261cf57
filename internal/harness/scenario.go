package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tenpair/internal/game"
)

// Scenario is a scripted game: an optional starting layout, a list of
// steps with expectations, and assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Width is the row width. Zero means game.DefaultWidth.
	Width int `yaml:"width,omitempty"`

	// Layout is added as a single cycle and fully rendered before the
	// first step.
	Layout []int `yaml:"layout,omitempty"`

	// Classic starts from game.ClassicLayout. Excludes Layout.
	Classic bool `yaml:"classic,omitempty"`

	// SessionID fixes the journal session id. Default "scenario".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps run in order after the layout.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action.
type Step struct {
	// Op is one of the Step* constants.
	Op string `yaml:"op"`

	Value *int   `yaml:"value,omitempty"` // add
	ID    *int64 `yaml:"id,omitempty"`    // toggle
	Pos   *int   `yaml:"pos,omitempty"`   // pick
	Row   *int   `yaml:"row,omitempty"`   // remove

	// Count is the number of scheduler ticks for tick. Default 1.
	Count int `yaml:"count,omitempty"`

	// Expect validates the cycle the step produced.
	// If nil, a rejection fails the scenario.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Step operations.
const (
	StepAdd    = "add"
	StepToggle = "toggle"
	StepPick   = "pick" // toggle the tile at a board position
	StepUse    = "use"
	StepRemove = "remove"
	StepAppend = "append"
	StepTick   = "tick"
	StepDrain  = "drain"
)

// ExpectClause specifies the expected cycle of a step.
type ExpectClause struct {
	// Outcome is "applied" or "rejected".
	Outcome string `yaml:"outcome"`

	// Reason is the expected rejection reason (e.g. "NOT_MATCHABLE").
	Reason string `yaml:"reason,omitempty"`

	// Edits is the exact edit list the cycle queued, in String form.
	// If nil, edits are not checked.
	Edits []string `yaml:"edits,omitempty"`

	// Result is the operation's result (tile id for add, count for append).
	Result *int64 `yaml:"result,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind restricts edit_count to one edit kind (e.g. "row_removed").
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected value for edit_count, pending, tiles and rendered.
	Count int `yaml:"count,omitempty"`

	// Rows is the expected rendered board, one line per row (board).
	Rows []string `yaml:"rows,omitempty"`

	// Pair is the expected hint as two positions, or empty for none (hint).
	Pair []int `yaml:"pair,omitempty"`
}

// Assertion type constants.
const (
	AssertEditCount         = "edit_count"
	AssertPending           = "pending"
	AssertTiles             = "tiles"
	AssertRendered          = "rendered"
	AssertBoard             = "board"
	AssertNoPresenterErrors = "no_presenter_errors"
	AssertReplay            = "replay"
	AssertHint              = "hint"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Width == 0 {
		scenario.Width = game.DefaultWidth
	}
	if scenario.SessionID == "" {
		scenario.SessionID = "scenario"
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
	if s.Width < 1 {
		return fmt.Errorf("width must be positive, got %d", s.Width)
	}
	if s.Classic && len(s.Layout) > 0 {
		return fmt.Errorf("classic and layout are mutually exclusive")
	}
	if len(s.Steps) == 0 && len(s.Layout) == 0 && !s.Classic {
		return fmt.Errorf("steps list is required when there is no layout")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case StepAdd:
		if st.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for add", index)
		}
	case StepToggle:
		if st.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for toggle", index)
		}
	case StepPick:
		if st.Pos == nil {
			return fmt.Errorf("steps[%d]: pos is required for pick", index)
		}
	case StepRemove:
		if st.Row == nil {
			return fmt.Errorf("steps[%d]: row is required for remove", index)
		}
	case StepUse, StepAppend:
	case StepTick, StepDrain:
		if st.Count < 0 {
			return fmt.Errorf("steps[%d]: count must be non-negative", index)
		}
		if st.Expect != nil {
			return fmt.Errorf("steps[%d]: %s takes no expect clause", index, st.Op)
		}
		return nil
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Expect != nil {
		switch st.Expect.Outcome {
		case "applied", "rejected":
		default:
			return fmt.Errorf("steps[%d].expect: outcome must be applied or rejected, got %q", index, st.Expect.Outcome)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertEditCount, AssertPending, AssertTiles, AssertRendered:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertBoard:
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows is required for board", index)
		}
	case AssertHint:
		if len(a.Pair) != 0 && len(a.Pair) != 2 {
			return fmt.Errorf("assertions[%d]: pair must have two positions", index)
		}
	case AssertNoPresenterErrors, AssertReplay:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
