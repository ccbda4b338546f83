// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"

	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"github.com/iwvelando/plan-weights/pkg/mathutil"
)

// EvenWeights splits 100 into n two-decimal weights. The last weight takes
// the rounding remainder so the split always sums to exactly 100.
func EvenWeights(n int) []plan.Weight {
	if n <= 0 {
		return nil
	}
	share := mathutil.Round(constants.TargetWeightTotal / float64(n))
	out := make([]plan.Weight, n)
	for i := 0; i < n-1; i++ {
		out[i] = plan.FormatWeight(share)
	}
	out[n-1] = plan.FormatWeight(mathutil.Round(constants.TargetWeightTotal - share*float64(n-1)))
	return out
}

// BalancedPlan builds a complete, valid plan with the given number of
// children at every level, each level split evenly.
func BalancedPlan(objectives, actions, metrics, tasks int) plan.Plan {
	p := plan.Plan{
		UserName:     "Test Planner",
		ProjectTitle: "Generated plan",
		Department:   "Planning",
		Goal:         "Exercise the weight tree",
	}

	objWeights := EvenWeights(objectives)
	actWeights := EvenWeights(actions)
	metWeights := EvenWeights(metrics)
	taskWeights := EvenWeights(tasks)

	for i := 0; i < objectives; i++ {
		obj := plan.Objective{
			Objective:              fmt.Sprintf("Objective %d", i+1),
			Weight:                 objWeights[i],
			ExecutingBody:          "Planning directorate",
			ExecutionTime:          "Q1-Q4",
			BudgetSource:           constants.BudgetSourceGovernment,
			GovernmentBudgetAmount: "100000",
			GovernmentBudgetCode:   "6211",
		}
		for j := 0; j < actions; j++ {
			act := plan.Action{Action: fmt.Sprintf("Action %d.%d", i+1, j+1), Weight: actWeights[j]}
			for k := 0; k < metrics; k++ {
				met := plan.Metric{Metric: fmt.Sprintf("Metric %d.%d.%d", i+1, j+1, k+1), Weight: metWeights[k]}
				for t := 0; t < tasks; t++ {
					met.MainTasks = append(met.MainTasks, plan.Task{
						Task:   fmt.Sprintf("Task %d.%d.%d.%d", i+1, j+1, k+1, t+1),
						Weight: taskWeights[t],
						Target: "1",
					})
				}
				act.Metrics = append(act.Metrics, met)
			}
			obj.StrategicActions = append(obj.StrategicActions, act)
		}
		p.Objectives = append(p.Objectives, obj)
	}
	return p
}
