package parser

import "github.com/statforge/wilk/pkg/token"

// Term represents a node on the right-hand side of a formula.
type Term interface {
	termNode()
}

// GroupExpr represents the grouping side of a random-effect term.
type GroupExpr interface {
	groupNode()
}

// ArgValue represents a function-call argument value.
type ArgValue interface {
	argValueNode()
}

// ---------- Terms ----------

// ColumnName is a bare variable reference.
type ColumnName struct {
	Name string
	Pos  token.Position
}

func (*ColumnName) termNode() {}

// FunctionCall is a transformation applied to one or more variables,
// e.g. poly(disp, 4) or log(hp).
type FunctionCall struct {
	Name string // lowercase function name as written
	Args []Arg
	Pos  token.Position
}

func (*FunctionCall) termNode() {}

// InteractionOp distinguishes the two interaction operators.
type InteractionOp int

// Interaction operator kinds.
const (
	// OpCross is '*': main effects plus the interaction.
	OpCross InteractionOp = iota
	// OpInteract is ':': the interaction term only.
	OpInteract
)

func (op InteractionOp) String() string {
	if op == OpCross {
		return "*"
	}
	return ":"
}

// Interaction is a chain of interacting terms. Operands are kept in
// textual order with the operator joining each adjacent pair, so a mixed
// chain like a*b:c is one node with Ops = [*, :]. len(Ops) is always
// len(Operands)-1.
type Interaction struct {
	Operands []Term
	Ops      []InteractionOp
}

func (*Interaction) termNode() {}

// CorrelationKind mirrors the |, ||, and |ID| separators of a
// random-effect term.
type CorrelationKind int

// Correlation kinds.
const (
	Correlated CorrelationKind = iota
	Uncorrelated
	CrossParameter
)

// RandomEffect is a parenthesized group term, e.g. (1 | subject) or
// (0 + time || patient).
type RandomEffect struct {
	Terms        []Term // effect terms left of the bar; empty for intercept-only
	HasIntercept bool   // false when 0 or -1 appeared left of the bar
	Corr         CorrelationKind
	CorrID       string // populated for CrossParameter, the literal between the bars
	Group        GroupExpr
	Pos          token.Position
}

func (*RandomEffect) termNode() {}

// ---------- Group expressions ----------

// SimpleGroup is a single grouping variable: (1 | g).
type SimpleGroup struct {
	Name string
}

func (*SimpleGroup) groupNode() {}

// InteractionGroup crosses two grouping variables: (1 | g1:g2).
type InteractionGroup struct {
	Left  string
	Right string
}

func (*InteractionGroup) groupNode() {}

// NestedGroup nests one grouping variable inside another: (1 | g1/g2).
type NestedGroup struct {
	Outer string
	Inner string
}

func (*NestedGroup) groupNode() {}

// GrGroup is an explicit gr() call with options: (1 | gr(g, by = trt)).
type GrGroup struct {
	Name    string
	Options []Arg
}

func (*GrGroup) groupNode() {}

// MmGroup is a multi-membership grouping: (1 | mm(g1, g2)).
type MmGroup struct {
	Groups []string
}

func (*MmGroup) groupNode() {}

// ---------- Function arguments ----------

// Arg is one function-call argument, positional when Key is empty and
// keyword-style for key = value pairs.
type Arg struct {
	Key   string
	Value ArgValue
}

// IdentArg references a variable by name.
type IdentArg struct {
	Name string
}

func (*IdentArg) argValueNode() {}

// NumberArg is a numeric literal argument.
type NumberArg struct {
	Raw   string
	Value float64
}

func (*NumberArg) argValueNode() {}

// StringArg is a quoted string argument.
type StringArg struct {
	Value string
}

func (*StringArg) argValueNode() {}

// BoolArg is a TRUE/FALSE argument.
type BoolArg struct {
	Value bool
}

func (*BoolArg) argValueNode() {}

// NullArg is a NULL argument.
type NullArg struct{}

func (*NullArg) argValueNode() {}

// CallArg is a nested function call argument.
type CallArg struct {
	Call *FunctionCall
}

func (*CallArg) argValueNode() {}

// ---------- Formula structure ----------

// Response holds the left-hand side of a formula. Names has a single
// entry for an ordinary response and one entry per variable for
// mvbind(y1, y2).
type Response struct {
	Names []string
	Pos   token.Position
}

// Formula is one lhs ~ rhs clause.
type Formula struct {
	Response     *Response
	Terms        []Term
	HasIntercept bool
}

// AuxFormula is an auxiliary parameter sub-formula such as sigma ~ x.
type AuxFormula struct {
	Name         string
	Terms        []Term
	HasIntercept bool
}

// Program is a fully parsed formula: the main clause plus any
// comma-separated trailing entries.
type Program struct {
	Formula *Formula
	Family  string // empty when the formula does not specify one
	Aux     []*AuxFormula
	Options map[string]string // trailing name = value entries, e.g. link = logit
}
