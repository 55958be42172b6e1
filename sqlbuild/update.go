package sqlbuild

import (
	"fmt"
	"strings"
)

// Field is one entry of a sparse update: a logical field name and the value
// it should be set to.
type Field struct {
	Name  string
	Value any
}

// PartialUpdate builds the assignment list of an UPDATE statement.
//
// Each field becomes "<column> = $n" where column is aliases[field.Name] when
// present and field.Name otherwise. Fragments keep the order of fields and are
// joined with ", ".
//
//	set, err := sqlbuild.PartialUpdate(
//	    []sqlbuild.Field{{"firstName", "Ana"}, {"email", "a@x.com"}},
//	    map[string]string{"firstName": "first_name"},
//	)
//	// set.SQL    == "first_name = $1, email = $2"
//	// set.Args() == []any{"Ana", "a@x.com"}
//
// Column names are written into the SQL verbatim. Field names must come from
// a fixed set declared in code, never from request input.
//
// An empty fields slice yields ErrInvalidArgument: an UPDATE with nothing to
// set is a caller bug.
func PartialUpdate(fields []Field, aliases map[string]string) (Clause, error) {
	if len(fields) == 0 {
		return Clause{}, fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}

	var c Clause
	sets := make([]string, 0, len(fields))
	for _, f := range fields {
		column := f.Name
		if alias, ok := aliases[f.Name]; ok {
			column = alias
		}
		sets = append(sets, column+" = "+c.Add(f.Value))
	}
	c.SQL = strings.Join(sets, ", ")
	return c, nil
}
