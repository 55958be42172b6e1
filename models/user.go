package models

import (
	"time"

	"github.com/Skryldev/sharebnb/sqlbuild"
)

// User represents a row in the "users" table.
// Fields map 1-to-1 with columns; no automatic relation loading.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUserParams holds the fields required to create a new user.
// PasswordHash must already be hashed; repositories never see plaintext.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	IsAdmin      bool
}

// UpdateUserParams holds fields that can be updated. All fields are pointers
// so callers only set what needs changing. Username and IsAdmin are not
// updatable.
type UpdateUserParams struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
}

// UserColumnAliases maps the logical field names used by the API to their
// column names. Names absent from the table are already column names.
var UserColumnAliases = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"password":  "password_hash",
}

// Fields returns the set fields in declaration order under their logical
// names, ready for sqlbuild.PartialUpdate with UserColumnAliases.
func (p UpdateUserParams) Fields() []sqlbuild.Field {
	fields := make([]sqlbuild.Field, 0, 4)
	if p.FirstName != nil {
		fields = append(fields, sqlbuild.Field{Name: "firstName", Value: *p.FirstName})
	}
	if p.LastName != nil {
		fields = append(fields, sqlbuild.Field{Name: "lastName", Value: *p.LastName})
	}
	if p.Email != nil {
		fields = append(fields, sqlbuild.Field{Name: "email", Value: *p.Email})
	}
	if p.PasswordHash != nil {
		fields = append(fields, sqlbuild.Field{Name: "password", Value: *p.PasswordHash})
	}
	return fields
}
