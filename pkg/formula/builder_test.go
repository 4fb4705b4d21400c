package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/wilk/pkg/formula"
	"github.com/statforge/wilk/pkg/parser"
)

func mustParse(t *testing.T, input string) *formula.MetaData {
	t.Helper()
	md, err := formula.Parse(input)
	require.NoError(t, err)
	require.NotNil(t, md)
	return md
}

func variable(t *testing.T, md *formula.MetaData, name string) *formula.Variable {
	t.Helper()
	for _, v := range md.Variables {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("variable %q not found", name)
	return nil
}

func TestSimpleAdditiveFormula(t *testing.T) {
	md := mustParse(t, "y ~ x + z")

	assert.True(t, md.HasIntercept)
	assert.Equal(t, "gaussian", md.Family)
	assert.False(t, md.RandomEffectsModel)
	assert.Equal(t, []string{"y", "x", "z"}, md.ColumnNames)
	assert.Equal(t, []string{"y", "intercept", "x", "z"}, md.AllGenerated)

	y := variable(t, md, "y")
	assert.Equal(t, uint(1), y.ID)
	assert.Equal(t, formula.RoleResponse, y.Role)
	assert.Equal(t, []string{"y"}, y.GeneratedColumns)

	x := variable(t, md, "x")
	assert.Equal(t, formula.RoleIdentity, x.Role)
	z := variable(t, md, "z")
	assert.Equal(t, formula.RoleIdentity, z.Role)
	assert.Equal(t, uint(3), z.ID)
}

func TestInterceptSuppression(t *testing.T) {
	for _, input := range []string{"y ~ 0 + x", "y ~ x - 1", "y ~ -1 + x"} {
		md := mustParse(t, input)
		assert.False(t, md.HasIntercept, input)
		assert.Equal(t, []string{"y", "x"}, md.AllGenerated, input)
	}
}

func TestExplicitIntercept(t *testing.T) {
	md := mustParse(t, "y ~ 1 + x")
	assert.True(t, md.HasIntercept)
	assert.Equal(t, []string{"y", "intercept", "x"}, md.AllGenerated)
}

func TestPolyTransformation(t *testing.T) {
	md := mustParse(t, "mpg ~ poly(disp, 4)")

	disp := variable(t, md, "disp")
	assert.Equal(t, formula.RoleFixedEffect, disp.Role)
	require.Len(t, disp.Transformations, 1)

	tr := disp.Transformations[0]
	assert.Equal(t, "poly", tr.Function)
	assert.Equal(t, 4, tr.Parameters["degree"])
	assert.Equal(t, true, tr.Parameters["orthogonal"])
	assert.Equal(t,
		[]string{"disp_poly_1", "disp_poly_2", "disp_poly_3", "disp_poly_4"},
		tr.GeneratesColumns)

	// The bare name is replaced, not kept alongside.
	assert.Equal(t, tr.GeneratesColumns, disp.GeneratedColumns)
	assert.Equal(t,
		[]string{"mpg", "intercept", "disp_poly_1", "disp_poly_2", "disp_poly_3", "disp_poly_4"},
		md.AllGenerated)
}

func TestTransformationAfterBareUse(t *testing.T) {
	md := mustParse(t, "y ~ x + poly(x, 2) + log(z)")

	x := variable(t, md, "x")
	assert.Equal(t, formula.RoleIdentity, x.Role)
	assert.Equal(t, []string{"x", "x_poly_1", "x_poly_2"}, x.GeneratedColumns)

	z := variable(t, md, "z")
	assert.Equal(t, formula.RoleFixedEffect, z.Role)
	assert.Equal(t, []string{"z_log"}, z.GeneratedColumns)
	require.Len(t, z.Transformations, 1)
	assert.Equal(t, "log", z.Transformations[0].Function)

	assert.Equal(t,
		[]string{"y", "intercept", "x", "x_poly_1", "x_poly_2", "z_log"},
		md.AllGenerated)
}

func TestFullCrossOrdering(t *testing.T) {
	md := mustParse(t, "y ~ wt*hp")

	wt := variable(t, md, "wt")
	assert.Equal(t, formula.RoleFixedEffect, wt.Role)
	assert.Equal(t, []string{"wt", "wt_hp"}, wt.GeneratedColumns)
	assert.Equal(t, []string{"wt_hp"}, wt.Interactions)

	hp := variable(t, md, "hp")
	assert.Equal(t, []string{"hp"}, hp.GeneratedColumns)
	assert.Equal(t, []string{"wt_hp"}, hp.Interactions)

	// Id order places the combined column with its owner; textual
	// order places it after both operands.
	assert.Equal(t, []string{"y", "intercept", "wt", "wt_hp", "hp"}, md.AllGenerated)
	assert.Equal(t, map[string]string{
		"1": "y", "2": "intercept", "3": "wt", "4": "hp", "5": "wt_hp",
	}, md.FormulaOrder)
}

func TestThreeWayInteraction(t *testing.T) {
	md := mustParse(t, "y ~ a:b:c")

	a := variable(t, md, "a")
	assert.Equal(t, []string{"a", "a_b_c"}, a.GeneratedColumns)
	for _, name := range []string{"a", "b", "c"} {
		assert.Equal(t, []string{"a_b_c"}, variable(t, md, name).Interactions)
	}
}

func TestRandomInterceptModel(t *testing.T) {
	md := mustParse(t, "y ~ x + (1 | subject)")

	assert.True(t, md.RandomEffectsModel)
	assert.False(t, md.UncorrelatedSlopes)

	subject := variable(t, md, "subject")
	assert.Equal(t, formula.RoleGrouping, subject.Role)
	require.Len(t, subject.RandomEffects, 1)

	rec := subject.RandomEffects[0]
	assert.Equal(t, "grouping", rec.Kind)
	assert.Equal(t, "subject", rec.Group)
	assert.Equal(t, "correlated", rec.Correlation)
	assert.True(t, rec.HasIntercept)
	assert.Empty(t, rec.Variables)
}

func TestRandomSlopeModel(t *testing.T) {
	md := mustParse(t, "y ~ x + (x | group)")

	x := variable(t, md, "x")
	assert.Equal(t, formula.RoleIdentity, x.Role)
	require.Len(t, x.RandomEffects, 1)
	assert.Equal(t, "effect", x.RandomEffects[0].Kind)
	assert.Equal(t, "group", x.RandomEffects[0].Group)
	assert.True(t, x.RandomEffects[0].HasIntercept)

	group := variable(t, md, "group")
	require.Len(t, group.RandomEffects, 1)
	assert.Equal(t, []string{"x"}, group.RandomEffects[0].Variables)
}

func TestTransformedRandomSlopeRole(t *testing.T) {
	md := mustParse(t, "y ~ (log(x) | g)")

	x := variable(t, md, "x")
	assert.Equal(t, formula.RoleRandomEffect, x.Role)
	assert.Equal(t, []string{"x_log"}, x.GeneratedColumns)
	require.Len(t, x.RandomEffects, 1)
	assert.Equal(t, "effect", x.RandomEffects[0].Kind)

	g := variable(t, md, "g")
	require.Len(t, g.RandomEffects, 1)
	assert.Equal(t, []string{"x"}, g.RandomEffects[0].Variables)
}

func TestUncorrelatedSlopes(t *testing.T) {
	md := mustParse(t, "y ~ x + (x || group)")

	assert.True(t, md.UncorrelatedSlopes)
	x := variable(t, md, "x")
	require.Len(t, x.RandomEffects, 1)
	assert.Equal(t, "uncorrelated", x.RandomEffects[0].Correlation)
}

func TestCrossParameterCorrelation(t *testing.T) {
	md := mustParse(t, "y ~ x + (x |2| group)")

	x := variable(t, md, "x")
	require.Len(t, x.RandomEffects, 1)
	assert.Equal(t, "2", x.RandomEffects[0].Correlation)
}

func TestNestedGrouping(t *testing.T) {
	md := mustParse(t, "y ~ x + (1 | school/class)")

	for _, name := range []string{"school", "class"} {
		v := variable(t, md, name)
		assert.Equal(t, formula.RoleGrouping, v.Role, name)
		require.Len(t, v.RandomEffects, 1, name)
		assert.Equal(t, "grouping", v.RandomEffects[0].Kind, name)
		assert.Equal(t, name, v.RandomEffects[0].Group, name)
	}
}

func TestInteractionGroupLabel(t *testing.T) {
	md := mustParse(t, "y ~ x + (x | a:b)")

	x := variable(t, md, "x")
	require.Len(t, x.RandomEffects, 1)
	assert.Equal(t, "a:b", x.RandomEffects[0].Group)
	assert.Equal(t, formula.RoleGrouping, variable(t, md, "a").Role)
	assert.Equal(t, formula.RoleGrouping, variable(t, md, "b").Role)
}

func TestInteractionInsideRandomEffect(t *testing.T) {
	md := mustParse(t, "y ~ (a:b | g)")

	a := variable(t, md, "a")
	assert.Equal(t, formula.RoleRandomEffect, a.Role)
	require.Len(t, a.RandomEffects, 1)
	assert.Equal(t, []string{"b"}, a.RandomEffects[0].Interactions)

	// No combined column inside random effects.
	assert.Equal(t, []string{"a"}, a.GeneratedColumns)
	assert.NotContains(t, md.AllGenerated, "a_b")

	g := variable(t, md, "g")
	require.Len(t, g.RandomEffects, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, g.RandomEffects[0].Variables)
}

func TestMultimembershipGrouping(t *testing.T) {
	md := mustParse(t, "y ~ x + (1 | mm(g1, g2))")

	x := variable(t, md, "x")
	assert.Equal(t, formula.RoleIdentity, x.Role)
	for _, name := range []string{"g1", "g2"} {
		v := variable(t, md, name)
		require.Len(t, v.RandomEffects, 1, name)
		assert.Equal(t, "grouping", v.RandomEffects[0].Kind)
	}
}

func TestMultivariateResponse(t *testing.T) {
	md := mustParse(t, "mvbind(y1, y2) ~ x")

	y1 := variable(t, md, "y1")
	y2 := variable(t, md, "y2")
	assert.Equal(t, formula.RoleResponse, y1.Role)
	assert.Equal(t, formula.RoleResponse, y2.Role)
	assert.Equal(t, uint(1), y1.ID)
	assert.Equal(t, uint(2), y2.ID)

	// The intercept still follows the first response.
	assert.Equal(t, []string{"y1", "intercept", "y2", "x"}, md.AllGenerated)
}

func TestFamilyDeclaration(t *testing.T) {
	md := mustParse(t, "y ~ x, family = binomial")
	assert.Equal(t, "binomial", md.Family)
}

func TestAuxiliaryFormulaRegistersVariables(t *testing.T) {
	md := mustParse(t, "y ~ x, sigma ~ z")

	z := variable(t, md, "z")
	assert.Equal(t, formula.RoleIdentity, z.Role)
	assert.Contains(t, md.AllGenerated, "z")
}

func TestResponseAsGroupingFactorFails(t *testing.T) {
	_, err := formula.Parse("y ~ x + (1 | y)")
	require.Error(t, err)

	var berr *formula.BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "y", berr.Variable)
}

func TestSyntaxErrorSurfacesParseError(t *testing.T) {
	_, err := formula.Parse("y ~ +")
	require.Error(t, err)

	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestFormulaOrderBijection(t *testing.T) {
	inputs := []string{
		"y ~ x + z",
		"y ~ wt*hp + poly(disp, 3)",
		"y ~ x + (x || g) + log(z)",
		"mvbind(y1, y2) ~ a:b + c",
	}
	for _, input := range inputs {
		md := mustParse(t, input)

		require.Len(t, md.FormulaOrder, len(md.AllGenerated), input)
		ordered := make([]string, 0, len(md.FormulaOrder))
		for _, col := range md.FormulaOrder {
			ordered = append(ordered, col)
		}
		assert.ElementsMatch(t, md.AllGenerated, ordered, input)
	}
}

func TestMetadataRecordsInput(t *testing.T) {
	md := mustParse(t, "y ~ x")
	assert.Equal(t, "y ~ x", md.Formula)
}
