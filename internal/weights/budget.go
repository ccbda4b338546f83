package weights

import (
	"strings"

	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/constants"
)

var budgetSourceAliases = map[string]string{
	"government": constants.BudgetSourceGovernment,
	"gov":        constants.BudgetSourceGovernment,
	"መንግስት":      constants.BudgetSourceGovernment,
	"grant":      constants.BudgetSourceGrant,
	"ግራንት":       constants.BudgetSourceGrant,
	"sdg":        constants.BudgetSourceSDG,
	"ኢስዲጂ":       constants.BudgetSourceSDG,
}

// CanonicalBudgetSource returns the canonical identifier for a budget source.
// Unknown values are returned lower-cased and trimmed.
func CanonicalBudgetSource(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := budgetSourceAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

type budgetField struct {
	name  string
	label string
	value func(o plan.Objective) string
}

// budgetRequirements lists the fields that become required for each source.
var budgetRequirements = map[string][]budgetField{
	constants.BudgetSourceGovernment: {
		{name: "governmentBudgetAmount", label: "government budget amount", value: func(o plan.Objective) string { return o.GovernmentBudgetAmount }},
		{name: "governmentBudgetCode", label: "government budget code", value: func(o plan.Objective) string { return o.GovernmentBudgetCode }},
	},
	constants.BudgetSourceGrant: {
		{name: "grantBudgetAmount", label: "grant budget amount", value: func(o plan.Objective) string { return o.GrantBudgetAmount }},
	},
	constants.BudgetSourceSDG: {
		{name: "sdgBudgetAmount", label: "SDG budget amount", value: func(o plan.Objective) string { return o.SDGBudgetAmount }},
	},
}
