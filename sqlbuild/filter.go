package sqlbuild

import "strings"

// Filters is an optional set of search conditions over one range column and
// one text column. A nil pointer means the filter was not requested; a
// pointer to a zero value is a real bound and is applied.
type Filters[T any] struct {
	RangeColumn string
	Min         *T
	Max         *T

	MatchColumn string
	// Match is compared case-insensitively as a substring of MatchColumn.
	Match *string
}

// Where renders the filters as a WHERE clause.
//
// Conditions are always emitted in the order lower bound, upper bound,
// substring, so placeholder numbering depends only on which filters are set.
// With no filter set the clause is empty and binds nothing.
//
//	min := 50
//	genre := "jazz"
//	w := sqlbuild.Filters[int]{RangeColumn: "price", Min: &min, MatchColumn: "genre", Match: &genre}.Where()
//	// w.SQL    == "WHERE price >= $1 AND genre ILIKE $2"
//	// w.Args() == []any{50, "%jazz%"}
//
// Where does not check that Min <= Max.
func (f Filters[T]) Where() Clause {
	var c Clause
	conds := make([]string, 0, 3)

	if f.Min != nil {
		conds = append(conds, f.RangeColumn+" >= "+c.Add(*f.Min))
	}
	if f.Max != nil {
		conds = append(conds, f.RangeColumn+" <= "+c.Add(*f.Max))
	}
	if f.Match != nil {
		conds = append(conds, f.MatchColumn+" ILIKE "+c.Add("%"+*f.Match+"%"))
	}

	if len(conds) > 0 {
		c.SQL = "WHERE " + strings.Join(conds, " AND ")
	}
	return c
}
