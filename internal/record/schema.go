package record

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

// Schema decodes JSON payloads into Records, rejecting payloads with missing
// fields, wrong types, an empty or dot-segment id or a year outside 0-65535.
//
// A cue.Context is not safe for concurrent use, so Decode serializes on an
// internal mutex. That mutex is unrelated to any store lock.
type Schema struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewSchema compiles the embedded #Record definition.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath("#Record"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile record schema: #Record not defined")
	}

	return &Schema{ctx: ctx, def: def}, nil
}

// Decode validates data against #Record and unmarshals it.
// Returns a *ValidationError; Syntax is set when data is not JSON at all.
func (s *Schema) Decode(data []byte) (Record, error) {
	if !json.Valid(data) {
		return Record{}, &ValidationError{Message: "malformed JSON", Syntax: true}
	}

	expr, err := cuejson.Extract("payload.json", data)
	if err != nil {
		return Record{}, &ValidationError{Message: "malformed JSON", Syntax: true}
	}

	if err := s.validate(expr); err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, &ValidationError{Message: err.Error()}
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Schema) validate(expr ast.Expr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return &ValidationError{Message: "malformed JSON", Syntax: true}
	}

	if err := s.def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fromCUE(err)
	}
	return nil
}

// fromCUE converts the first CUE validation error into a ValidationError.
func fromCUE(err error) *ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := errs[0]
	path := first.Path()
	if len(path) > 0 && path[0] == "#Record" {
		path = path[1:]
	}
	format, args := first.Msg()
	return &ValidationError{
		Field:   strings.Join(path, "."),
		Message: fmt.Sprintf(format, args...),
	}
}
