// Package sqlbuild generates the dynamic fragments of otherwise literal SQL
// statements: the SET list of a partial UPDATE and the WHERE clause of a
// filtered SELECT. All placeholders use PostgreSQL's positional $N syntax.
//
// Every function in this package is pure. Nothing here touches a database.
package sqlbuild

import (
	"errors"
	"strconv"
)

// ErrInvalidArgument is returned when a builder is handed input it cannot
// turn into a well-formed clause.
var ErrInvalidArgument = errors.New("sharebnb/sqlbuild: invalid argument")

// ─────────────────────────────────────────────────────────────────────────────
// Params: positional argument bookkeeping
// ─────────────────────────────────────────────────────────────────────────────

// Params collects positional query arguments. Each call to Add binds the next
// free position, so placeholder numbers always match argument order.
//
// The zero value is ready to use.
type Params struct {
	args []any
}

// Add appends v and returns the placeholder bound to it ("$1", "$2", ...).
func (p *Params) Add(v any) string {
	p.args = append(p.args, v)
	return placeholder(len(p.args))
}

// Args returns the bound arguments in placeholder order. The returned slice
// is a copy; appending to it does not affect p.
func (p *Params) Args() []any {
	out := make([]any, len(p.args))
	copy(out, p.args)
	return out
}

// Len reports how many positions are bound.
func (p *Params) Len() int { return len(p.args) }

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Clause: builder output
// ─────────────────────────────────────────────────────────────────────────────

// Clause is a generated SQL fragment together with the arguments its
// placeholders refer to. Callers splice SQL into a statement template and may
// bind further arguments (a row id, LIMIT, OFFSET) through the embedded
// Params, which continues numbering where the builder stopped.
type Clause struct {
	SQL string
	Params
}
