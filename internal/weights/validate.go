package weights

import (
	"strings"

	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"github.com/iwvelando/plan-weights/pkg/mathutil"
)

// Child names used in branch-point messages.
const (
	objectivesLevel = "objective"
	actionsLevel    = "strategic action"
	metricsLevel    = "metric"
	tasksLevel      = "main task"
)

// Validate checks every weight, every sibling sum and every required field of
// the plan. It never stops at the first problem and never panics on
// malformed weights; unparseable weights count as zero in sums and are
// reported separately.
func Validate(p plan.Plan) Result {
	var r Result

	root := plan.Root()
	required(&r, root.Field("userName"), p.UserName, "submitter name")
	required(&r, root.Field("projectTitle"), p.ProjectTitle, "project title")
	required(&r, root.Field("department"), p.Department, "department")
	required(&r, root.Field("goal"), p.Goal, "goal")

	objWeights := make([]plan.Weight, len(p.Objectives))
	for i, obj := range p.Objectives {
		objWeights[i] = obj.Weight
		validateObjective(&r, root.Objective(i), obj)
	}
	checkBranch(&r, root.Objectives(), objWeights, objectivesLevel)

	return r
}

func validateObjective(r *Result, path plan.Path, obj plan.Objective) {
	checkWeight(r, path.Weight(), obj.Weight)
	required(r, path.Field("objective"), obj.Objective, "objective")
	required(r, path.Field("executingBody"), obj.ExecutingBody, "executing body")
	required(r, path.Field("executionTime"), obj.ExecutionTime, "execution time")
	required(r, path.Field("budgetSource"), obj.BudgetSource, "budget source")
	checkBudget(r, path, obj)

	actWeights := make([]plan.Weight, len(obj.StrategicActions))
	for j, act := range obj.StrategicActions {
		actWeights[j] = act.Weight
		validateAction(r, path.Action(j), act)
	}
	checkBranch(r, path.Actions(), actWeights, actionsLevel)
}

func validateAction(r *Result, path plan.Path, act plan.Action) {
	checkWeight(r, path.Weight(), act.Weight)
	required(r, path.Field("action"), act.Action, "strategic action description")

	metWeights := make([]plan.Weight, len(act.Metrics))
	for k, met := range act.Metrics {
		metWeights[k] = met.Weight
		validateMetric(r, path.Metric(k), met)
	}
	checkBranch(r, path.Metrics(), metWeights, metricsLevel)
}

func validateMetric(r *Result, path plan.Path, met plan.Metric) {
	checkWeight(r, path.Weight(), met.Weight)
	required(r, path.Field("metric"), met.Metric, "metric description")

	taskWeights := make([]plan.Weight, len(met.MainTasks))
	for t, task := range met.MainTasks {
		taskWeights[t] = task.Weight
		taskPath := path.Task(t)
		checkWeight(r, taskPath.Weight(), task.Weight)
		required(r, taskPath.Field("task"), task.Task, "main task description")
		required(r, taskPath.Field("target"), task.Target, "target")
	}
	checkBranch(r, path.Tasks(), taskWeights, tasksLevel)
}

// checkBranch enforces the minimum of one child and the sibling sum at a
// branch point. An empty collection sums to zero and so also reports a
// SumMismatch.
func checkBranch(r *Result, path plan.Path, siblings []plan.Weight, child string) {
	if len(siblings) == 0 {
		r.add(path, MinCardinalityViolation, "at least one %s is required", child)
	}
	sum := SumWeights(siblings)
	if !mathutil.IsBalanced(sum) {
		r.add(path, SumMismatch, "%s weights must sum to 100%%, current total is %.2f%%", child, sum)
	}
}

func checkWeight(r *Result, path plan.Path, w plan.Weight) {
	if w.IsEmpty() {
		r.add(path, WeightOutOfRange, "weight is required")
		return
	}
	val, ok := w.Parse()
	if !ok || !mathutil.InRange(val, constants.MinWeight, constants.MaxWeight) {
		r.add(path, WeightOutOfRange, "weight must be a number between 0 and 100, got %q", string(w))
	}
}

func checkBudget(r *Result, path plan.Path, obj plan.Objective) {
	source := CanonicalBudgetSource(obj.BudgetSource)
	for _, field := range budgetRequirements[source] {
		if strings.TrimSpace(field.value(obj)) == "" {
			r.add(path.Field(field.name), RequiredFieldMissing, "%s is required when the budget source is %s", field.label, source)
		}
	}
}

func required(r *Result, path plan.Path, value, label string) {
	if strings.TrimSpace(value) == "" {
		r.add(path, RequiredFieldMissing, "%s is required", label)
	}
}

// SumWeights adds sibling weights, counting empty or unparseable weights as zero.
func SumWeights(siblings []plan.Weight) float64 {
	values := make([]float64, len(siblings))
	for i, w := range siblings {
		values[i] = w.Value()
	}
	return mathutil.Sum(values)
}
