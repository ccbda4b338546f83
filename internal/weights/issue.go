// Package weights validates the percentage weights of a strategic plan and
// rescales sibling weights so they sum to 100%.
//
// Every branch point of the plan tree (objectives of the plan, strategic
// actions of an objective, metrics of an action and main tasks of a metric)
// must have sibling weights summing to 100 within an absolute tolerance of
// 0.01. Validation never fails fast: it walks the whole tree and returns a
// report of every violation found. Callers re-run Validate or Totals after
// each edit; nothing in this package keeps state between calls.
package weights

import (
	"fmt"

	"github.com/iwvelando/plan-weights/internal/plan"
)

// Kind classifies a validation issue.
type Kind int

const (
	// WeightOutOfRange marks a weight that is missing, not a number, or
	// outside [0, 100].
	WeightOutOfRange Kind = iota + 1
	// SumMismatch marks a branch point whose sibling weights do not sum to 100.
	SumMismatch
	// RequiredFieldMissing marks an empty required or conditionally required field.
	RequiredFieldMissing
	// MinCardinalityViolation marks a collection that needs at least one child.
	MinCardinalityViolation
)

func (k Kind) String() string {
	switch k {
	case WeightOutOfRange:
		return "WeightOutOfRange"
	case SumMismatch:
		return "SumMismatch"
	case RequiredFieldMissing:
		return "RequiredFieldMissing"
	case MinCardinalityViolation:
		return "MinCardinalityViolation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for candidate := WeightOutOfRange; candidate <= MinCardinalityViolation; candidate++ {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown issue kind %q", string(text))
}

// Issue is a single violation attached to a location in the plan.
type Issue struct {
	Path    plan.Path `json:"path"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
}

// Result collects the issues found by Validate in the order they were found.
// The zero value is a valid, empty result.
type Result struct {
	issues []Issue
}

func (r *Result) add(path plan.Path, kind Kind, format string, args ...interface{}) {
	r.issues = append(r.issues, Issue{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Valid reports whether no issues were found.
func (r Result) Valid() bool {
	return len(r.issues) == 0
}

// Len returns the number of issues.
func (r Result) Len() int {
	return len(r.issues)
}

// Issues returns a copy of every issue in discovery order.
func (r Result) Issues() []Issue {
	return append([]Issue(nil), r.issues...)
}

// ByKind returns the issues of the given kind.
func (r Result) ByKind(kind Kind) []Issue {
	var out []Issue
	for _, issue := range r.issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// Paths returns every path with at least one issue, in first-seen order.
func (r Result) Paths() []string {
	seen := make(map[string]struct{}, len(r.issues))
	var paths []string
	for _, issue := range r.issues {
		key := issue.Path.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		paths = append(paths, key)
	}
	return paths
}

// Messages returns the messages recorded for one path, in order.
func (r Result) Messages(path string) []string {
	var out []string
	for _, issue := range r.issues {
		if issue.Path.String() == path {
			out = append(out, issue.Message)
		}
	}
	return out
}

// Errors maps each path to its ordered messages. An empty map means valid.
func (r Result) Errors() map[string][]string {
	out := make(map[string][]string, len(r.issues))
	for _, issue := range r.issues {
		key := issue.Path.String()
		out[key] = append(out[key], issue.Message)
	}
	return out
}
