package formula

import (
	"strconv"
	"strings"

	"github.com/statforge/wilk/pkg/parser"
)

// builder accumulates variable records during a single walk over the
// AST. All state is call-scoped; nothing is shared between builds.
type builder struct {
	input string
	vars  []*Variable
	index map[string]int

	// order records column emissions in left-to-right textual order.
	// It is its own view, never re-derived from id order.
	order []string

	randomEffects bool
	uncorrelated  bool
}

// Build walks a parsed program and produces the formula metadata.
func Build(input string, prog *parser.Program) (*MetaData, error) {
	b := &builder{
		input: input,
		index: make(map[string]int),
	}

	for _, name := range prog.Formula.Response.Names {
		if _, ok := b.index[name]; ok {
			return nil, &BuildError{Variable: name, Message: "duplicate response variable"}
		}
		b.create(name, RoleResponse)
		b.emit(name)
	}

	for _, term := range prog.Formula.Terms {
		if err := b.walkTerm(term); err != nil {
			return nil, err
		}
	}

	// Auxiliary parameter formulas register their variables too, so
	// downstream materializers see every referenced column.
	for _, aux := range prog.Aux {
		for _, term := range aux.Terms {
			if err := b.walkTerm(term); err != nil {
				return nil, err
			}
		}
	}

	family := prog.Family
	if family == "" {
		family = DefaultFamily
	}

	hasIntercept := prog.Formula.HasIntercept

	md := &MetaData{
		Formula:            input,
		HasIntercept:       hasIntercept,
		Family:             family,
		RandomEffectsModel: b.randomEffects,
		UncorrelatedSlopes: b.uncorrelated,
		Variables:          b.vars,
		FormulaOrder:       make(map[string]string),
	}

	md.ColumnNames = make([]string, len(b.vars))
	for i, v := range b.vars {
		md.ColumnNames[i] = v.Name
	}

	for _, v := range b.vars {
		md.AllGenerated = append(md.AllGenerated, v.GeneratedColumns...)
	}
	if hasIntercept {
		md.AllGenerated = insertAt(md.AllGenerated, 1, "intercept")
		b.order = insertAt(b.order, 1, "intercept")
	}

	for i, col := range b.order {
		md.FormulaOrder[strconv.Itoa(i+1)] = col
	}

	return md, nil
}

// ---------- Registry ----------

// create registers a new variable with the next sequential id.
func (b *builder) create(name string, role Role) *Variable {
	v := &Variable{
		ID:               uint(len(b.vars) + 1),
		Name:             name,
		Role:             role,
		GeneratedColumns: []string{name},
		Transformations:  []Transformation{},
		Interactions:     []string{},
		RandomEffects:    []RandomEffectRecord{},
	}
	b.index[name] = len(b.vars)
	b.vars = append(b.vars, v)
	return v
}

// ensure returns the variable for name, creating it with the given role
// on first appearance. The role of an existing record is never changed:
// first registration wins.
func (b *builder) ensure(name string, role Role) (*Variable, bool) {
	if i, ok := b.index[name]; ok {
		return b.vars[i], false
	}
	return b.create(name, role), true
}

// emit records column names in formula (textual) order.
func (b *builder) emit(cols ...string) {
	b.order = append(b.order, cols...)
}

// ---------- Walk ----------

func (b *builder) walkTerm(term parser.Term) error {
	switch t := term.(type) {
	case *parser.ColumnName:
		if v, created := b.ensure(t.Name, RoleIdentity); created {
			b.emit(v.Name)
		}
		return nil
	case *parser.FunctionCall:
		_, err := b.applyTransformation(t, RoleFixedEffect)
		return err
	case *parser.Interaction:
		_, err := b.walkInteraction(t, false)
		return err
	case *parser.RandomEffect:
		return b.walkRandomEffect(t)
	default:
		return &BuildError{Message: "unsupported term"}
	}
}

// applyTransformation attaches a function call to the variable named by
// its first identifier argument and generates that variable's columns.
// The role applies to every variable the call introduces, so effect
// terms inside random-effect nodes register as random effects.
// Returns the base variable name, empty when the call references none.
func (b *builder) applyTransformation(call *parser.FunctionCall, role Role) (string, error) {
	base := firstIdent(call)
	if base == "" {
		return "", &BuildError{Message: "function " + call.Name + "() references no variable"}
	}

	v, created := b.ensure(base, role)

	cols := transformColumns(base, call)
	v.Transformations = append(v.Transformations, Transformation{
		Function:         call.Name,
		Parameters:       transformParams(call),
		GeneratesColumns: cols,
	})

	if created {
		// The variable exists only through this transformation: the
		// generated columns replace the bare name.
		v.GeneratedColumns = cols
	} else {
		v.GeneratedColumns = append(v.GeneratedColumns, cols...)
	}
	b.emit(cols...)

	// Remaining identifier arguments are real columns as well.
	seenBase := false
	for _, arg := range call.Args {
		ident, ok := arg.Value.(*parser.IdentArg)
		if !ok || arg.Key != "" {
			continue
		}
		if ident.Name == base && !seenBase {
			seenBase = true
			continue
		}
		if extra, c := b.ensure(ident.Name, role); c {
			b.emit(extra.Name)
		}
	}

	return base, nil
}

// walkInteraction folds an interaction chain into one combined column
// joined from the operand names, attached to the first operand and
// recorded on every participant. Inside random effects no combined
// column is generated; the participation is recorded on the effect
// records instead.
func (b *builder) walkInteraction(inter *parser.Interaction, inRandomEffect bool) ([]string, error) {
	names := make([]string, 0, len(inter.Operands))

	role := RoleFixedEffect
	if inRandomEffect {
		role = RoleRandomEffect
	}

	for _, operand := range inter.Operands {
		switch o := operand.(type) {
		case *parser.ColumnName:
			if v, created := b.ensure(o.Name, role); created {
				b.emit(v.Name)
			}
			names = append(names, o.Name)
		case *parser.FunctionCall:
			base, err := b.applyTransformation(o, role)
			if err != nil {
				return nil, err
			}
			names = append(names, base)
		default:
			return nil, &BuildError{Message: "unsupported interaction operand"}
		}
	}

	if inRandomEffect {
		return names, nil
	}

	combined := strings.Join(names, "_")
	first := b.vars[b.index[names[0]]]
	first.GeneratedColumns = append(first.GeneratedColumns, combined)
	b.emit(combined)

	for _, name := range names {
		v := b.vars[b.index[name]]
		v.Interactions = append(v.Interactions, combined)
	}

	return names, nil
}

func (b *builder) walkRandomEffect(re *parser.RandomEffect) error {
	b.randomEffects = true

	corr := CorrCorrelated
	switch re.Corr {
	case parser.Uncorrelated:
		corr = CorrUncorrelated
		b.uncorrelated = true
	case parser.CrossParameter:
		corr = re.CorrID
	}

	label := groupLabel(re.Group)

	var effectNames []string
	addEffectRecord := func(name string, interactsWith []string) {
		v := b.vars[b.index[name]]
		v.RandomEffects = append(v.RandomEffects, RandomEffectRecord{
			Kind:         "effect",
			Group:        label,
			Correlation:  corr,
			HasIntercept: re.HasIntercept,
			Interactions: interactsWith,
		})
	}

	for _, term := range re.Terms {
		switch t := term.(type) {
		case *parser.ColumnName:
			if v, created := b.ensure(t.Name, RoleRandomEffect); created {
				b.emit(v.Name)
			}
			effectNames = append(effectNames, t.Name)
			addEffectRecord(t.Name, nil)
		case *parser.FunctionCall:
			base, err := b.applyTransformation(t, RoleRandomEffect)
			if err != nil {
				return err
			}
			effectNames = append(effectNames, base)
			addEffectRecord(base, nil)
		case *parser.Interaction:
			names, err := b.walkInteraction(t, true)
			if err != nil {
				return err
			}
			effectNames = append(effectNames, names...)
			for _, name := range names {
				addEffectRecord(name, others(names, name))
			}
		default:
			return &BuildError{Message: "unsupported random-effect term"}
		}
	}
	if effectNames == nil {
		effectNames = []string{}
	}

	for _, gname := range groupVars(re.Group) {
		if i, ok := b.index[gname]; ok && b.vars[i].Role == RoleResponse {
			return &BuildError{
				Variable: gname,
				Message:  "response variable cannot also be a grouping factor",
			}
		}
		v, created := b.ensure(gname, RoleGrouping)
		if created {
			b.emit(v.Name)
		}
		v.RandomEffects = append(v.RandomEffects, RandomEffectRecord{
			Kind:         "grouping",
			Group:        gname,
			Correlation:  corr,
			HasIntercept: re.HasIntercept,
			Variables:    effectNames,
		})
	}

	// gr() options such as by = treatment reference real columns
	if gr, ok := re.Group.(*parser.GrGroup); ok {
		for _, opt := range gr.Options {
			if ident, ok := opt.Value.(*parser.IdentArg); ok && opt.Key != "" && opt.Key != "cor" {
				if v, created := b.ensure(ident.Name, RoleFixedEffect); created {
					b.emit(v.Name)
				}
			}
		}
	}

	return nil
}

// ---------- Naming ----------

// transformColumns derives the generated column names for a function
// call applied to base: poly is degree indexed, everything else is a
// single suffixed column.
func transformColumns(base string, call *parser.FunctionCall) []string {
	switch call.Name {
	case "poly":
		degree := polyDegree(call)
		cols := make([]string, degree)
		for i := range cols {
			cols[i] = base + "_poly_" + strconv.Itoa(i+1)
		}
		return cols
	default:
		return []string{base + "_" + call.Name}
	}
}

// polyDegree extracts the degree from poly's second positional
// argument, defaulting to 1 when absent or malformed.
func polyDegree(call *parser.FunctionCall) int {
	positional := 0
	for _, arg := range call.Args {
		if arg.Key != "" {
			continue
		}
		positional++
		if positional == 2 {
			if num, ok := arg.Value.(*parser.NumberArg); ok && num.Value >= 1 {
				return int(num.Value)
			}
		}
	}
	return 1
}

// transformParams collects the call's parameters: keyword arguments
// plus the derived degree for poly.
func transformParams(call *parser.FunctionCall) map[string]any {
	params := make(map[string]any)
	if call.Name == "poly" {
		params["degree"] = polyDegree(call)
		params["orthogonal"] = true
	}
	for _, arg := range call.Args {
		if arg.Key == "" {
			continue
		}
		params[arg.Key] = argValue(arg.Value)
	}
	return params
}

func argValue(v parser.ArgValue) any {
	switch a := v.(type) {
	case *parser.NumberArg:
		return a.Value
	case *parser.StringArg:
		return a.Value
	case *parser.BoolArg:
		return a.Value
	case *parser.IdentArg:
		return a.Name
	case *parser.CallArg:
		return a.Call.Name
	default:
		return nil
	}
}

// firstIdent returns the first positional identifier argument of a
// call, descending into nested calls.
func firstIdent(call *parser.FunctionCall) string {
	for _, arg := range call.Args {
		if arg.Key != "" {
			continue
		}
		switch a := arg.Value.(type) {
		case *parser.IdentArg:
			return a.Name
		case *parser.CallArg:
			if name := firstIdent(a.Call); name != "" {
				return name
			}
		}
	}
	return ""
}

// groupVars lists the grouping variables referenced by a group
// expression.
func groupVars(g parser.GroupExpr) []string {
	switch gr := g.(type) {
	case *parser.SimpleGroup:
		return []string{gr.Name}
	case *parser.InteractionGroup:
		return []string{gr.Left, gr.Right}
	case *parser.NestedGroup:
		return []string{gr.Outer, gr.Inner}
	case *parser.GrGroup:
		return []string{gr.Name}
	case *parser.MmGroup:
		return gr.Groups
	default:
		return nil
	}
}

// groupLabel renders a group expression the way it was written, used as
// the Group field on effect records.
func groupLabel(g parser.GroupExpr) string {
	switch gr := g.(type) {
	case *parser.SimpleGroup:
		return gr.Name
	case *parser.InteractionGroup:
		return gr.Left + ":" + gr.Right
	case *parser.NestedGroup:
		return gr.Outer + "/" + gr.Inner
	case *parser.GrGroup:
		return gr.Name
	case *parser.MmGroup:
		return "mm(" + strings.Join(gr.Groups, ", ") + ")"
	default:
		return ""
	}
}

func others(names []string, self string) []string {
	var rest []string
	for _, n := range names {
		if n != self {
			rest = append(rest, n)
		}
	}
	return rest
}

func insertAt(s []string, i int, v string) []string {
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
