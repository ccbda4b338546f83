package weights

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/plan-weights/internal/plan"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		weights  []float64
		total    float64
		expected []float64
	}{
		{"Already balanced", []float64{30, 30, 40}, 100, []float64{30, 30, 40}},
		{"Doubled to fifty", []float64{10, 10}, 20, []float64{50, 50}},
		{"Zero siblings untouched", []float64{0, 50, 50}, 100, []float64{0, 50, 50}},
		{"Zero sibling keeps shortfall", []float64{0, 10, 30}, 40, []float64{0, 25, 75}},
		{"Thirds", []float64{1, 1, 1}, 3, []float64{33.33, 33.33, 33.33}},
		{"Two thirds rounds up", []float64{1, 2}, 3, []float64{33.33, 66.67}},
		{"Half away from zero", []float64{1, 7}, 8, []float64{12.5, 87.5}},
		{"Scale down", []float64{60, 60, 80}, 200, []float64{30, 30, 40}},
		{"Zero total is a no-op", []float64{0, 0}, 0, []float64{0, 0}},
		{"Negative untouched", []float64{-10, 60}, 50, []float64{-10, 120}},
		{"Empty", []float64{}, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.weights, tt.total)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-9, "index %d", i)
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []float64{10, 10}
	_ = Normalize(in, 20)
	assert.Equal(t, []float64{10, 10}, in)
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []float64{12.5, 37.5, 50}
	once := Normalize(in, 100)
	twice := Normalize(once, 100)
	assert.Equal(t, in, once)
	assert.Equal(t, once, twice)
}

func TestNormalizePreservesRatios(t *testing.T) {
	in := []float64{5, 10, 20, 40}
	out := Normalize(in, 75)
	for i := range in {
		for j := range in {
			assert.InDelta(t, in[i]/in[j], out[i]/out[j], 0.01, "ratio %d/%d", i, j)
		}
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		input    string
		expected Scope
	}{
		{"objectives", ScopeObjectives},
		{" Actions ", ScopeActions},
		{"strategicActions", ScopeActions},
		{"metrics-tasks", ScopeMetricsAndTasks},
		{"tasks", ScopeMetricsAndTasks},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			scope, err := ParseScope(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scope)
		})
	}

	_, err := ParseScope("everything")
	assert.True(t, errors.Is(err, ErrUnknownScope))

	assert.Equal(t, "metrics-tasks", ScopeMetricsAndTasks.String())
	assert.Equal(t, "Scope(9)", Scope(9).String())
}

func loadUnbalanced(t *testing.T) plan.Plan {
	t.Helper()
	p, err := plan.LoadPlan(filepath.Join("..", "..", "test", "unbalanced_plan.json"))
	require.NoError(t, err)
	return *p
}

func TestNormalizeScopeObjectives(t *testing.T) {
	p := loadUnbalanced(t)

	total, err := ScopeTotal(p, ScopeObjectives)
	require.NoError(t, err)
	assert.InDelta(t, 80, total, 1e-9)

	updates, err := NormalizeScope(p, ScopeObjectives)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"objectives[0]": "62.50",
		"objectives[1]": "37.50",
	}, UpdatesMap(updates))

	require.NoError(t, Apply(&p, updates))
	assert.Equal(t, plan.Weight("62.50"), p.Objectives[0].Weight)
	assert.Equal(t, plan.Weight("37.50"), p.Objectives[1].Weight)
	assert.Empty(t, Validate(p).Messages("objectives"))
}

func TestNormalizeScopeActionsFlattened(t *testing.T) {
	p := loadUnbalanced(t)

	total, err := ScopeTotal(p, ScopeActions)
	require.NoError(t, err)
	assert.InDelta(t, 120, total, 1e-9)

	updates, err := NormalizeScope(p, ScopeActions)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"objectives[0].strategicActions[0]": "8.33",
		"objectives[0].strategicActions[1]": "8.33",
		"objectives[1].strategicActions[0]": "83.33",
	}, UpdatesMap(updates))
}

func TestNormalizeScopeMetricsAndTasks(t *testing.T) {
	p := completePlan()
	setTasks(&p, "60", "", "20")

	updates, err := NormalizeScope(p, ScopeMetricsAndTasks)
	require.NoError(t, err)

	// metric 100 + tasks 60 and 20 flatten to a total of 180; the blank
	// task is left alone.
	assert.Equal(t, map[string]string{
		"objectives[0].strategicActions[0].metrics[0]": "55.56",
		tasksPath + "[0]": "33.33",
		tasksPath + "[2]": "11.11",
	}, UpdatesMap(updates))

	require.NoError(t, Apply(&p, updates))
	assert.Equal(t, plan.Weight(""), p.Objectives[0].StrategicActions[0].Metrics[0].MainTasks[1].Weight)
}

func TestNormalizeScopeMetricsAndTasksIgnoresNegatives(t *testing.T) {
	p := completePlan()
	p.Objectives[0].StrategicActions[0].Metrics[0].Weight = "60"
	setTasks(&p, "-20", "40")

	total, err := ScopeTotal(p, ScopeMetricsAndTasks)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	updates, err := NormalizeScope(p, ScopeMetricsAndTasks)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"objectives[0].strategicActions[0].metrics[0]": "60.00",
		tasksPath + "[1]": "40.00",
	}, UpdatesMap(updates))

	// Objectives still total every value, negatives included.
	p.Objectives = append(p.Objectives, p.Objectives[0])
	p.Objectives[0].Weight = "-20"
	p.Objectives[1].Weight = "40"
	total, err = ScopeTotal(p, ScopeObjectives)
	require.NoError(t, err)
	assert.Equal(t, 20.0, total)
}

func TestNormalizeScopeZeroTotal(t *testing.T) {
	p := plan.NewPlan()
	for _, scope := range []Scope{ScopeObjectives, ScopeActions, ScopeMetricsAndTasks} {
		updates, err := NormalizeScope(p, scope)
		require.NoError(t, err)
		assert.Empty(t, updates, scope.String())
	}

	_, err := NormalizeScope(p, Scope(42))
	assert.True(t, errors.Is(err, ErrUnknownScope))
}

func TestNormalizeBranch(t *testing.T) {
	p := completePlan()
	setTasks(&p, "60", "30")

	branch, err := plan.ParsePath(tasksPath)
	require.NoError(t, err)

	updates, err := NormalizeBranch(p, branch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		tasksPath + "[0]": "66.67",
		tasksPath + "[1]": "33.33",
	}, UpdatesMap(updates))

	require.NoError(t, Apply(&p, updates))
	assert.True(t, Validate(p).Valid(), "unexpected issues: %v", Validate(p).Errors())
}

func TestNormalizeBranchErrors(t *testing.T) {
	p := completePlan()

	_, err := NormalizeBranch(p, plan.Root().Objective(0))
	assert.True(t, errors.Is(err, plan.ErrInvalidPath))

	_, err = NormalizeBranch(p, plan.Root().Objective(3).Actions())
	assert.True(t, errors.Is(err, plan.ErrIndexOutOfRange))
}

func TestBranchSum(t *testing.T) {
	p := completePlan()
	setTasks(&p, "60", "30", "abc")

	branch, err := plan.ParsePath(tasksPath)
	require.NoError(t, err)
	sum, err := BranchSum(p, branch)
	require.NoError(t, err)
	assert.Equal(t, 90.0, sum)

	_, err = BranchSum(p, plan.Root().Objective(2).Actions())
	assert.True(t, errors.Is(err, plan.ErrIndexOutOfRange))
}

func TestApplyRejectsBadPath(t *testing.T) {
	p := completePlan()
	err := Apply(&p, []Update{{Path: plan.Root().Objective(9), Value: 10}})
	assert.True(t, errors.Is(err, plan.ErrIndexOutOfRange))
}

func TestTotals(t *testing.T) {
	p := loadUnbalanced(t)
	totals := Totals(p)

	var paths []string
	for _, total := range totals {
		paths = append(paths, total.Path.String())
	}
	assert.Equal(t, []string{
		"objectives",
		"objectives[0].strategicActions",
		"objectives[0].strategicActions[0].metrics",
		tasksPath,
		"objectives[0].strategicActions[1].metrics",
		"objectives[0].strategicActions[1].metrics[0].mainTasks",
		"objectives[1].strategicActions",
		"objectives[1].strategicActions[0].metrics",
		"objectives[1].strategicActions[0].metrics[0].mainTasks",
	}, paths)

	assert.Equal(t, BranchTotal{Path: totals[0].Path, Sum: 80, Children: 2, Balanced: false}, totals[0])
	assert.Equal(t, 90.0, totals[3].Sum)
	assert.False(t, totals[3].Balanced)
	assert.True(t, totals[2].Balanced)
}
