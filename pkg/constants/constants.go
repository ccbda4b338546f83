// Package constants provides shared constants for the plan-weights application.
package constants

// Weight constants
const (
	// DecimalPrecision is the precision for weight rounding (2 decimal places)
	DecimalPrecision = 100

	// WeightDecimals is the number of decimals written back into a plan
	WeightDecimals = 2

	// WeightTolerance is the absolute tolerance, in percentage points, for a
	// sibling sum to count as 100%. It is fixed, not configurable.
	WeightTolerance = 0.01

	// TargetWeightTotal is the sum every set of sibling weights must reach
	TargetWeightTotal = 100.0

	// MinWeight is the smallest acceptable weight
	MinWeight = 0.0

	// MaxWeight is the largest acceptable weight
	MaxWeight = 100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Budget source constants
const (
	// BudgetSourceGovernment requires a government budget amount and code
	BudgetSourceGovernment = "government"

	// BudgetSourceGrant requires a grant budget amount
	BudgetSourceGrant = "grant"

	// BudgetSourceSDG requires an SDG budget amount
	BudgetSourceSDG = "sdg"
)

// Normalization scope names
const (
	// ScopeObjectives rescales the objective weights of a plan
	ScopeObjectives = "objectives"

	// ScopeActions rescales every strategic action weight, flattened across objectives
	ScopeActions = "actions"

	// ScopeMetricsAndTasks rescales every metric and task weight in one flattened list
	ScopeMetricsAndTasks = "metrics-tasks"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size for plans (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
