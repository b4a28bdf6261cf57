package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/tenpair/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		for _, op := range event.Ops {
			fmt.Fprintf(&buf, "  [%d] %s %s", op.Seq, op.Op, op.Outcome)
			if op.Reason != "" {
				fmt.Fprintf(&buf, " %s", op.Reason)
			}
			buf.WriteString("\n")
		}
		if len(event.Edits) > 0 {
			fmt.Fprintf(&buf, "       -> %s\n", strings.Join(event.EditStrings(), ", "))
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEditCount:
		return assertEditCount(result, a)
	case AssertPending:
		return assertCount(result, a, result.Pending)
	case AssertTiles:
		return assertCount(result, a, result.Tiles)
	case AssertRendered:
		return assertCount(result, a, result.Rendered)
	case AssertBoard:
		return assertBoard(result, a)
	case AssertNoPresenterErrors:
		if len(result.PresenterErrors) > 0 {
			return fail(result, a, "no presenter errors", strings.Join(result.PresenterErrors, "; "))
		}
		return nil
	case AssertReplay:
		if result.ReplayError != "" {
			return fail(result, a, "journal replays to the same edits", result.ReplayError)
		}
		return nil
	case AssertHint:
		return assertHint(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func fail(result *Result, a Assertion, expected, actual string) error {
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// assertEditCount counts journaled edits, optionally of one kind.
func assertEditCount(result *Result, a Assertion) error {
	got := lo.CountBy(result.AllEdits(), func(e ir.Edit) bool {
		return a.Kind == "" || string(e.Kind()) == a.Kind
	})
	if got != a.Count {
		what := "edits"
		if a.Kind != "" {
			what = a.Kind + " edits"
		}
		return fail(result, a, fmt.Sprintf("%d %s", a.Count, what), fmt.Sprintf("%d %s", got, what))
	}
	return nil
}

func assertCount(result *Result, a Assertion, got int) error {
	if got != a.Count {
		return fail(result, a, fmt.Sprintf("%d", a.Count), fmt.Sprintf("%d", got))
	}
	return nil
}

// assertBoard compares the rendered grid line by line.
func assertBoard(result *Result, a Assertion) error {
	got := boardLines(result.Board)
	if !slices.Equal(got, a.Rows) {
		return fail(result, a, fmt.Sprintf("%q", a.Rows), fmt.Sprintf("%q", got))
	}
	return nil
}

func boardLines(board string) []string {
	board = strings.TrimSuffix(board, "\n")
	if board == "" {
		return []string{}
	}
	return strings.Split(board, "\n")
}

func assertHint(result *Result, a Assertion) error {
	if len(a.Pair) == 0 {
		if result.Hint != nil {
			return fail(result, a, "no matchable pair", fmt.Sprintf("%v", result.Hint))
		}
		return nil
	}
	if !slices.Equal(result.Hint, a.Pair) {
		return fail(result, a, fmt.Sprintf("%v", a.Pair), fmt.Sprintf("%v", result.Hint))
	}
	return nil
}
