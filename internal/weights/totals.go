package weights

import (
	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/mathutil"
)

// BranchTotal is the current sibling sum at one branch point.
type BranchTotal struct {
	Path     plan.Path `json:"path"`
	Sum      float64   `json:"sum"`
	Children int       `json:"children"`
	Balanced bool      `json:"balanced"`
}

// Totals returns the sibling sum of every branch point, parents before
// children, so a form can show running totals after each edit.
func Totals(p plan.Plan) []BranchTotal {
	root := plan.Root()
	objWeights := make([]plan.Weight, len(p.Objectives))
	for i, obj := range p.Objectives {
		objWeights[i] = obj.Weight
	}
	totals := []BranchTotal{branchTotal(root.Objectives(), objWeights)}

	for i, obj := range p.Objectives {
		objPath := root.Objective(i)
		actWeights := make([]plan.Weight, len(obj.StrategicActions))
		for j, act := range obj.StrategicActions {
			actWeights[j] = act.Weight
		}
		totals = append(totals, branchTotal(objPath.Actions(), actWeights))

		for j, act := range obj.StrategicActions {
			actPath := objPath.Action(j)
			metWeights := make([]plan.Weight, len(act.Metrics))
			for k, met := range act.Metrics {
				metWeights[k] = met.Weight
			}
			totals = append(totals, branchTotal(actPath.Metrics(), metWeights))

			for k, met := range act.Metrics {
				taskWeights := make([]plan.Weight, len(met.MainTasks))
				for t, task := range met.MainTasks {
					taskWeights[t] = task.Weight
				}
				totals = append(totals, branchTotal(actPath.Metric(k).Tasks(), taskWeights))
			}
		}
	}
	return totals
}

func branchTotal(path plan.Path, siblings []plan.Weight) BranchTotal {
	sum := SumWeights(siblings)
	return BranchTotal{
		Path:     path,
		Sum:      mathutil.Round(sum),
		Children: len(siblings),
		Balanced: mathutil.IsBalanced(sum),
	}
}
