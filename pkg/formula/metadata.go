// Package formula turns Wilkinson-notation model formulas into a
// variable-centric metadata structure describing every variable's role,
// generated columns, interactions, and random-effects structure.
//
// The package is a decoupled front-end: it does not validate formulas
// against a dataset and does not build design matrices. Downstream
// materializers consume its output.
package formula

// Role classifies a variable by its first appearance in the formula.
type Role string

// Variable roles.
const (
	RoleResponse     Role = "response"
	RoleFixedEffect  Role = "fixed_effect"
	RoleRandomEffect Role = "random_effect"
	RoleGrouping     Role = "grouping_variable"
	RoleIdentity     Role = "identity"
)

// Transformation records one function application to a variable and the
// columns it expands into.
type Transformation struct {
	Function         string         `json:"function"`
	Parameters       map[string]any `json:"parameters"`
	GeneratesColumns []string       `json:"generates_columns"`
}

// Correlation values rendered into RandomEffectRecord. CrossParameter
// correlation renders as the literal id between the bars.
const (
	CorrCorrelated   = "correlated"
	CorrUncorrelated = "uncorrelated"
)

// RandomEffectRecord describes one side of a random-effect term: Kind
// "grouping" on the grouping variable, Kind "effect" on each effect
// variable left of the bar.
type RandomEffectRecord struct {
	Kind         string   `json:"kind"`
	Group        string   `json:"group"`
	Correlation  string   `json:"correlation"`
	HasIntercept bool     `json:"has_intercept"`
	Variables    []string `json:"variables,omitempty"`    // grouping records only
	Interactions []string `json:"interactions,omitempty"` // effect interactions within the group
}

// Variable is the semantic record for one input column. The response
// always has id 1; other ids are dense and increasing in first
// appearance order. Role reflects the first registration; later
// appearances attach their structure to the same record.
type Variable struct {
	ID               uint                 `json:"id"`
	Name             string               `json:"name"`
	Role             Role                 `json:"role"`
	GeneratedColumns []string             `json:"generated_columns"`
	Transformations  []Transformation     `json:"transformations"`
	Interactions     []string             `json:"interactions"`
	RandomEffects    []RandomEffectRecord `json:"random_effects"`
}

// MetaData is the output root. AllGeneratedColumns is ordered by
// variable id with "intercept" inserted at index 1 when present;
// FormulaOrder maps 1-based textual appearance order to the same column
// set, a bijection.
type MetaData struct {
	Formula            string            `json:"formula"`
	HasIntercept       bool              `json:"has_intercept"`
	Family             string            `json:"family"`
	RandomEffectsModel bool              `json:"is_random_effects_model"`
	UncorrelatedSlopes bool              `json:"has_uncorrelated_slopes_and_intercepts"`
	ColumnNames        []string          `json:"column_names"`
	Variables          []*Variable       `json:"variables"`
	AllGenerated       []string          `json:"all_generated_columns"`
	FormulaOrder       map[string]string `json:"all_generated_columns_formula_order"`
}

// DefaultFamily is used when the formula does not name a family.
const DefaultFamily = "gaussian"
