// Package plan defines the strategic plan tree (objectives, strategic
// actions, metrics and main tasks) together with typed paths into it and the
// operations used to edit and load it.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/plan-weights/pkg/constants"
)

// Weight is a percentage stored as the text the user typed.
type Weight string

// Parse returns the numeric value of the weight and whether the text starts
// with a finite decimal number. Like a form field read with parseFloat, the
// longest leading number is used and any trailing text ("50%") is ignored.
func (w Weight) Parse() (float64, bool) {
	prefix := leadingNumber(strings.TrimSpace(string(w)))
	if prefix == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// leadingNumber returns the longest prefix of s of the form
// [+-]digits[.digits][(e|E)[+-]digits], or "" when s has no leading digit.
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		i = j
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return strings.TrimSuffix(s[:i], ".")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Value returns the parsed weight, or 0 when the text is empty or not a
// number. It never returns NaN.
func (w Weight) Value() float64 {
	val, _ := w.Parse()
	return val
}

// IsEmpty reports whether no weight has been entered.
func (w Weight) IsEmpty() bool {
	return strings.TrimSpace(string(w)) == ""
}

// FormatWeight renders a numeric weight with two decimals.
func FormatWeight(val float64) Weight {
	return Weight(strconv.FormatFloat(val, 'f', constants.WeightDecimals, 64))
}

// UnmarshalJSON accepts both quoted text and bare JSON numbers, keeping the
// number's literal text.
func (w *Weight) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*w = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*w = Weight(text)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("weight must be a string or number: %w", err)
	}
	*w = Weight(num.String())
	return nil
}

// Task is a leaf of the plan tree.
type Task struct {
	Task   string `yaml:"task" json:"task" mapstructure:"task"`
	Weight Weight `yaml:"weight" json:"weight" mapstructure:"weight"`
	Target string `yaml:"target" json:"target" mapstructure:"target"`
}

// Metric measures a strategic action through its main tasks.
type Metric struct {
	Metric    string `yaml:"metric" json:"metric" mapstructure:"metric"`
	Weight    Weight `yaml:"weight" json:"weight" mapstructure:"weight"`
	MainTasks []Task `yaml:"mainTasks" json:"mainTasks" mapstructure:"mainTasks"`
}

// Action is a strategic action under an objective.
type Action struct {
	Action  string   `yaml:"action" json:"action" mapstructure:"action"`
	Weight  Weight   `yaml:"weight" json:"weight" mapstructure:"weight"`
	Metrics []Metric `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// Objective holds strategic actions plus execution and budget metadata. The
// metadata does not take part in weight calculations.
type Objective struct {
	Objective        string   `yaml:"objective" json:"objective" mapstructure:"objective"`
	Weight           Weight   `yaml:"weight" json:"weight" mapstructure:"weight"`
	StrategicActions []Action `yaml:"strategicActions" json:"strategicActions" mapstructure:"strategicActions"`

	ExecutingBody          string `yaml:"executingBody,omitempty" json:"executingBody,omitempty" mapstructure:"executingBody"`
	ExecutionTime          string `yaml:"executionTime,omitempty" json:"executionTime,omitempty" mapstructure:"executionTime"`
	BudgetSource           string `yaml:"budgetSource,omitempty" json:"budgetSource,omitempty" mapstructure:"budgetSource"`
	GovernmentBudgetAmount string `yaml:"governmentBudgetAmount,omitempty" json:"governmentBudgetAmount,omitempty" mapstructure:"governmentBudgetAmount"`
	GovernmentBudgetCode   string `yaml:"governmentBudgetCode,omitempty" json:"governmentBudgetCode,omitempty" mapstructure:"governmentBudgetCode"`
	GrantBudgetAmount      string `yaml:"grantBudgetAmount,omitempty" json:"grantBudgetAmount,omitempty" mapstructure:"grantBudgetAmount"`
	SDGBudgetAmount        string `yaml:"sdgBudgetAmount,omitempty" json:"sdgBudgetAmount,omitempty" mapstructure:"sdgBudgetAmount"`
}

// Plan is the root of a strategic plan submission.
type Plan struct {
	UserName     string      `yaml:"userName" json:"userName" mapstructure:"userName"`
	ProjectTitle string      `yaml:"projectTitle" json:"projectTitle" mapstructure:"projectTitle"`
	Department   string      `yaml:"department" json:"department" mapstructure:"department"`
	Goal         string      `yaml:"goal" json:"goal" mapstructure:"goal"`
	Objectives   []Objective `yaml:"objectives" json:"objectives" mapstructure:"objectives"`
}

// NewPlan returns a blank plan holding a single objective with one action,
// one metric and one task, all weights empty.
func NewPlan() Plan {
	return Plan{Objectives: []Objective{newObjective()}}
}

func newObjective() Objective {
	return Objective{StrategicActions: []Action{newAction()}}
}

func newAction() Action {
	return Action{Metrics: []Metric{newMetric()}}
}

func newMetric() Metric {
	return Metric{MainTasks: []Task{{}}}
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := p
	out.Objectives = make([]Objective, len(p.Objectives))
	for i, obj := range p.Objectives {
		out.Objectives[i] = obj
		out.Objectives[i].StrategicActions = make([]Action, len(obj.StrategicActions))
		for j, act := range obj.StrategicActions {
			out.Objectives[i].StrategicActions[j] = act
			out.Objectives[i].StrategicActions[j].Metrics = make([]Metric, len(act.Metrics))
			for k, met := range act.Metrics {
				out.Objectives[i].StrategicActions[j].Metrics[k] = met
				tasks := make([]Task, len(met.MainTasks))
				copy(tasks, met.MainTasks)
				out.Objectives[i].StrategicActions[j].Metrics[k].MainTasks = tasks
			}
		}
	}
	return out
}
