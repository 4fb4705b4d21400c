package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() http.Handler {
	return New(Config{Addr: ":0"}).Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestParseEndpoint(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/parse",
		`{"formula": "y ~ x + (1 | g)"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "y ~ x + (1 | g)", doc["formula"])
	assert.Equal(t, "gaussian", doc["family"])
	assert.Equal(t, true, doc["is_random_effects_model"])

	cols, ok := doc["all_generated_columns"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"y", "intercept", "x", "g"}, cols)
}

func TestParseEndpointFamilyOverride(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/parse",
		`{"formula": "y ~ x", "family": "poisson"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "poisson", doc["family"])
}

func TestParseEndpointFormulaFamilyWins(t *testing.T) {
	handler := New(Config{Addr: ":0", DefaultFamily: "poisson"}).Routes()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/parse",
		`{"formula": "y ~ x, family = binomial"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "binomial", doc["family"])
}

func TestParseEndpointSyntaxError(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/parse",
		`{"formula": "y ~ +"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var doc errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc.Error, "unexpected token")
	assert.NotEmpty(t, doc.Expected)
	assert.NotZero(t, doc.Column)
}

func TestParseEndpointSemanticError(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/parse",
		`{"formula": "y ~ x + (1 | y)"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var doc errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "y", doc.Variable)
}

func TestParseEndpointMissingFormula(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/parse", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, testServer(), http.MethodPost, "/api/v1/parse", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLexEndpoint(t *testing.T) {
	rec := doJSON(t, testServer(), http.MethodPost, "/api/v1/lex",
		`{"formula": "y ~ x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Tokens []struct {
			Token  string `json:"token"`
			Lexeme string `json:"lexeme"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Tokens, 3)
	assert.Equal(t, "IDENT", doc.Tokens[0].Token)
	assert.Equal(t, "~", doc.Tokens[1].Lexeme)
}
