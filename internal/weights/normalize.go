package weights

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"github.com/iwvelando/plan-weights/pkg/mathutil"
)

// ErrUnknownScope is returned by ParseScope for unrecognized scope names.
var ErrUnknownScope = errors.New("unknown normalization scope")

// Scope selects which weights NormalizeScope rescales.
type Scope int

const (
	// ScopeObjectives rescales the objective weights of the plan.
	ScopeObjectives Scope = iota
	// ScopeActions rescales every strategic action weight, flattened across
	// all objectives.
	ScopeActions
	// ScopeMetricsAndTasks rescales every metric and main task weight of the
	// whole plan as one flattened list.
	ScopeMetricsAndTasks
)

func (s Scope) String() string {
	switch s {
	case ScopeObjectives:
		return constants.ScopeObjectives
	case ScopeActions:
		return constants.ScopeActions
	case ScopeMetricsAndTasks:
		return constants.ScopeMetricsAndTasks
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope converts a scope name into a Scope.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case constants.ScopeObjectives:
		return ScopeObjectives, nil
	case constants.ScopeActions, "strategicactions":
		return ScopeActions, nil
	case constants.ScopeMetricsAndTasks, "metrics", "tasks":
		return ScopeMetricsAndTasks, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
}

// Update is a normalized weight to be written back into the plan.
type Update struct {
	Path  plan.Path `json:"path"`
	Value float64   `json:"value"`
}

// Normalize rescales weights proportionally so that they sum to 100, given
// their current total. Only positive weights are rescaled; zero and negative
// entries are returned unchanged, so the result can fall short of 100 when
// some siblings were zero. A zero total is a no-op. Values are rounded to two
// decimals, half away from zero. The input is not modified.
func Normalize(weights []float64, currentTotal float64) []float64 {
	out := make([]float64, len(weights))
	copy(out, weights)
	if currentTotal == 0 {
		return out
	}
	for i, w := range weights {
		if mathutil.IsPositive(w) {
			out[i] = mathutil.Round(mathutil.CalculatePercentage(w, currentTotal))
		}
	}
	return out
}

type entry struct {
	path   plan.Path
	weight plan.Weight
}

// scopeEntries flattens the weights of a scope in tree order.
func scopeEntries(p plan.Plan, scope Scope) ([]entry, error) {
	var entries []entry
	root := plan.Root()
	for i, obj := range p.Objectives {
		objPath := root.Objective(i)
		if scope == ScopeObjectives {
			entries = append(entries, entry{objPath, obj.Weight})
			continue
		}
		for j, act := range obj.StrategicActions {
			actPath := objPath.Action(j)
			if scope == ScopeActions {
				entries = append(entries, entry{actPath, act.Weight})
				continue
			}
			for k, met := range act.Metrics {
				metPath := actPath.Metric(k)
				entries = append(entries, entry{metPath, met.Weight})
				for t, task := range met.MainTasks {
					entries = append(entries, entry{metPath.Task(t), task.Weight})
				}
			}
		}
	}
	switch scope {
	case ScopeObjectives, ScopeActions, ScopeMetricsAndTasks:
		return entries, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
}

// ScopeTotal returns the flattened total of the weights in a scope. Callers
// check it is non-zero before offering normalization. The metrics and tasks
// scope totals only its positive weights.
func ScopeTotal(p plan.Plan, scope Scope) (float64, error) {
	entries, err := scopeEntries(p, scope)
	if err != nil {
		return 0, err
	}
	return scopeTotal(entries, scope), nil
}

// NormalizeScope computes the rescaled weights for every positive weight in
// the scope. It returns no updates when the scope total is zero.
func NormalizeScope(p plan.Plan, scope Scope) ([]Update, error) {
	entries, err := scopeEntries(p, scope)
	if err != nil {
		return nil, err
	}
	return normalizeEntries(entries, scopeTotal(entries, scope)), nil
}

func scopeTotal(entries []entry, scope Scope) float64 {
	if scope == ScopeMetricsAndTasks {
		return positiveTotal(entries)
	}
	return entriesTotal(entries)
}

// NormalizeBranch rescales the children of a single branch point, such as
// "objectives[0].strategicActions", so that the branch validates.
func NormalizeBranch(p plan.Plan, branch plan.Path) ([]Update, error) {
	entries, err := branchEntries(p, branch)
	if err != nil {
		return nil, err
	}
	return normalizeEntries(entries, entriesTotal(entries)), nil
}

// BranchSum returns the current sibling sum under a branch point.
func BranchSum(p plan.Plan, branch plan.Path) (float64, error) {
	entries, err := branchEntries(p, branch)
	if err != nil {
		return 0, err
	}
	return entriesTotal(entries), nil
}

func branchEntries(p plan.Plan, branch plan.Path) ([]entry, error) {
	children, err := p.ChildPaths(branch)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(children))
	for _, child := range children {
		w, err := p.WeightAt(child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{child, w})
	}
	return entries, nil
}

func entriesTotal(entries []entry) float64 {
	weights := make([]plan.Weight, len(entries))
	for i, e := range entries {
		weights[i] = e.weight
	}
	return SumWeights(weights)
}

func positiveTotal(entries []entry) float64 {
	var values []float64
	for _, e := range entries {
		if v := e.weight.Value(); mathutil.IsPositive(v) {
			values = append(values, v)
		}
	}
	return mathutil.Sum(values)
}

func normalizeEntries(entries []entry, total float64) []Update {
	if total == 0 {
		return nil
	}

	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.weight.Value()
	}
	normalized := Normalize(values, total)

	var updates []Update
	for i, e := range entries {
		if mathutil.IsPositive(values[i]) {
			updates = append(updates, Update{Path: e.path, Value: normalized[i]})
		}
	}
	return updates
}

// Apply writes normalized values into the plan as two-decimal weights.
func Apply(p *plan.Plan, updates []Update) error {
	for _, u := range updates {
		if err := p.SetWeight(u.Path, plan.FormatWeight(u.Value)); err != nil {
			return fmt.Errorf("failed to apply weight at %s: %w", u.Path.String(), err)
		}
	}
	return nil
}

// UpdatesMap renders updates as path to two-decimal weight text.
func UpdatesMap(updates []Update) map[string]string {
	out := make(map[string]string, len(updates))
	for _, u := range updates {
		out[u.Path.String()] = string(plan.FormatWeight(u.Value))
	}
	return out
}
