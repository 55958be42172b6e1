package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines the contract for user persistence operations.
// Users are addressed by their unique username everywhere outside the repo.
type UserRepository interface {
	Insert(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, page models.Page) ([]*models.User, error)
	Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error)
	Delete(ctx context.Context, username string) error
	BatchInsert(ctx context.Context, params []models.CreateUserParams) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// userRepo: concrete implementation
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q.
// q can be a *db.DB or *db.Tx; both satisfy db.Querier.
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

const userColumns = `id, username, password_hash, first_name, last_name, email, is_admin, created_at`

const (
	sqlInsertUser = `
		INSERT INTO users (username, password_hash, first_name, last_name, email, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	sqlGetUserByID = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  id = $1`

	sqlGetUserByUsername = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  username = $1`

	sqlListUsers = `
		SELECT ` + userColumns + `
		FROM   users
		ORDER  BY username
		LIMIT  $1 OFFSET $2`

	// %s is the SET list, %s the placeholder bound to the username.
	sqlUpdateUser = `
		UPDATE users
		SET    %s
		WHERE  username = %s
		RETURNING ` + userColumns

	sqlDeleteUser = `
		DELETE FROM users WHERE username = $1`

	sqlCountUsers = `
		SELECT COUNT(*) FROM users`
)

// ─────────────────────────────────────────────────────────────────────────────
// Reads and writes
// ─────────────────────────────────────────────────────────────────────────────

// Insert creates a user. A taken username yields db.ErrDuplicateKey.
func (r *userRepo) Insert(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	row := r.q.QueryRow(ctx, sqlInsertUser,
		p.Username, p.PasswordHash, p.FirstName, p.LastName, p.Email, p.IsAdmin, time.Now().UTC())
	return scanUser(row)
}

// GetByID returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByID, id))
}

// GetByUsername returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByUsername, username))
}

// List returns a page of users ordered by username.
func (r *userRepo) List(ctx context.Context, page models.Page) ([]*models.User, error) {
	page = page.Normalize()
	rows, err := r.q.Query(ctx, sqlListUsers, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies a partial update to the user called username. Only fields
// with non-nil pointers in params are written; an update that sets nothing
// fails with sqlbuild.ErrInvalidArgument.
func (r *userRepo) Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error) {
	set, err := sqlbuild.PartialUpdate(params.Fields(), models.UserColumnAliases)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	query := fmt.Sprintf(sqlUpdateUser, set.SQL, set.Add(username))
	return scanUser(r.q.QueryRow(ctx, query, set.Args()...))
}

// Delete removes the user called username.
// Returns db.ErrNotFound if no row was deleted.
func (r *userRepo) Delete(ctx context.Context, username string) error {
	res, err := r.q.Exec(ctx, sqlDeleteUser, username)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// BatchInsert inserts every user through one prepared statement. Run it
// inside a transaction for all-or-nothing behaviour.
func (r *userRepo) BatchInsert(ctx context.Context, params []models.CreateUserParams) ([]*models.User, error) {
	if len(params) == 0 {
		return nil, nil
	}
	stmt, err := r.q.Prepare(ctx, sqlInsertUser)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	users := make([]*models.User, 0, len(params))
	for _, p := range params {
		u, err := scanUser(stmt.QueryRow(ctx,
			p.Username, p.PasswordHash, p.FirstName, p.LastName, p.Email, p.IsAdmin, now))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Count returns the total number of users.
func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountUsers).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// scanUser is the single place that knows the column order of userColumns.
func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Email, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
