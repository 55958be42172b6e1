package models_test

import (
	"testing"

	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/sqlbuild"
	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateUserParams_FieldsThroughPartialUpdate(t *testing.T) {
	p := models.UpdateUserParams{
		FirstName:    ptr("Aliya"),
		PasswordHash: ptr("$2a$hash"),
	}

	c, err := sqlbuild.PartialUpdate(p.Fields(), models.UserColumnAliases)
	if err != nil {
		t.Fatalf("PartialUpdate: %v", err)
	}
	if want := "first_name = $1, password_hash = $2"; c.SQL != want {
		t.Fatalf("SQL = %q, want %q", c.SQL, want)
	}
	if diff := cmp.Diff([]any{"Aliya", "$2a$hash"}, c.Args()); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateUserParams_EmptyStringIsSet(t *testing.T) {
	fields := models.UpdateUserParams{LastName: ptr("")}.Fields()
	want := []sqlbuild.Field{{Name: "lastName", Value: ""}}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateListingParams_Fields(t *testing.T) {
	fields := models.UpdateListingParams{
		Genre: ptr("jazz"),
		Price: ptr(0),
		Name:  ptr("Loft"),
	}.Fields()

	want := []sqlbuild.Field{
		{Name: "name", Value: "Loft"},
		{Name: "price", Value: 0},
		{Name: "genre", Value: "jazz"},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := (models.UpdateListingParams{}).Fields(); len(got) != 0 {
		t.Fatalf("expected no fields, got %v", got)
	}
}

func TestListingFilter_Filters(t *testing.T) {
	w := models.ListingFilter{MaxPrice: ptr(100), Genre: ptr("rock")}.Filters().Where()
	if want := "WHERE price <= $1 AND genre ILIKE $2"; w.SQL != want {
		t.Fatalf("SQL = %q, want %q", w.SQL, want)
	}
	if diff := cmp.Diff([]any{100, "%rock%"}, w.Args()); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		in, want models.Page
	}{
		{models.Page{}, models.Page{Limit: models.DefaultPageLimit}},
		{models.Page{Limit: 10, Offset: 20}, models.Page{Limit: 10, Offset: 20}},
		{models.Page{Limit: 10000, Offset: -4}, models.Page{Limit: models.MaxPageLimit}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
