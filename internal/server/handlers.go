package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/statforge/wilk/pkg/formula"
	"github.com/statforge/wilk/pkg/parser"
	"github.com/statforge/wilk/pkg/token"
)

type formulaRequest struct {
	Formula string `json:"formula"`
	Family  string `json:"family,omitempty"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Expected []string `json:"expected,omitempty"`
	Variable string   `json:"variable,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	prog, err := parser.Parse(req.Formula)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	// Request family wins over the server default; the formula's own
	// declaration wins over both.
	if prog.Family == "" {
		if req.Family != "" {
			prog.Family = strings.ToLower(req.Family)
		} else if s.defaultFamily != "" {
			prog.Family = strings.ToLower(s.defaultFamily)
		}
	}

	md, err := formula.Build(req.Formula, prog)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	s.logger.Debug("parsed formula", "formula", req.Formula, "variables", len(md.Variables))
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleLex(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	type lexedToken struct {
		Token  string `json:"token"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}

	tokens := []lexedToken{}
	for _, tok := range parser.Tokenize(req.Formula) {
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, lexedToken{
			Token:  tok.Type.String(),
			Lexeme: tok.Literal,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (formulaRequest, bool) {
	var req formulaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return req, false
	}
	if strings.TrimSpace(req.Formula) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "formula is required"})
		return req, false
	}
	return req, true
}

// writeParseError maps parse and build failures to 422 with structured
// detail.
func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var perr *parser.ParseError
	var berr *formula.BuildError
	switch {
	case errors.As(err, &perr):
		resp.Line = perr.Pos.Line
		resp.Column = perr.Pos.Column
		for _, t := range perr.Expected {
			resp.Expected = append(resp.Expected, t.String())
		}
	case errors.As(err, &berr):
		resp.Variable = berr.Variable
	}

	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
