package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/sqlbuild"
)

// ListingRepository defines listing persistence. Searches go through
// sqlbuild filters; updates through sqlbuild.PartialUpdate.
type ListingRepository interface {
	Create(ctx context.Context, params models.CreateListingParams) (*models.Listing, error)
	Get(ctx context.Context, id int64) (*models.Listing, error)
	FindAll(ctx context.Context, filter models.ListingFilter, page models.Page) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Listing, error)
	Update(ctx context.Context, id int64, params models.UpdateListingParams) (*models.Listing, error)
	Remove(ctx context.Context, id int64) error
}

type listingRepo struct {
	q db.Querier
}

// NewListingRepo returns a ListingRepository backed by q.
func NewListingRepo(q db.Querier) ListingRepository {
	return &listingRepo{q: q}
}

const listingColumns = `id, name, description, price, street, city, state, zip, genre, owner_id`

const (
	sqlInsertListing = `
		INSERT INTO listings (name, description, price, street, city, state, zip, genre, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + listingColumns

	sqlGetListing = `
		SELECT ` + listingColumns + `
		FROM   listings
		WHERE  id = $1`

	// %s is the optional WHERE clause, then the LIMIT and OFFSET placeholders.
	sqlFindListings = `
		SELECT ` + listingColumns + `
		FROM   listings
		%s
		ORDER  BY id
		LIMIT  %s OFFSET %s`

	sqlListingsByOwner = `
		SELECT ` + listingColumns + `
		FROM   listings
		WHERE  owner_id = $1
		ORDER  BY id`

	sqlUpdateListing = `
		UPDATE listings
		SET    %s
		WHERE  id = %s
		RETURNING ` + listingColumns

	sqlDeleteListing = `
		DELETE FROM listings WHERE id = $1`
)

// Create inserts a listing. An unknown owner yields db.ErrForeignKeyViolation.
func (r *listingRepo) Create(ctx context.Context, p models.CreateListingParams) (*models.Listing, error) {
	row := r.q.QueryRow(ctx, sqlInsertListing,
		p.Name, p.Description, p.Price, p.Street, p.City, p.State, p.Zip, p.Genre, p.OwnerID)
	return scanListing(row)
}

// Get returns the listing with its photos, or db.ErrNotFound.
func (r *listingRepo) Get(ctx context.Context, id int64) (*models.Listing, error) {
	l, err := scanListing(r.q.QueryRow(ctx, sqlGetListing, id))
	if err != nil {
		return nil, err
	}
	if l.Photos, err = listPhotos(ctx, r.q, id); err != nil {
		return nil, err
	}
	return l, nil
}

// FindAll returns a page of listings matching filter, ordered by id.
// Photos are not loaded.
func (r *listingRepo) FindAll(ctx context.Context, filter models.ListingFilter, page models.Page) ([]*models.Listing, error) {
	page = page.Normalize()
	where := filter.Filters().Where()
	limit := where.Add(page.Limit)
	offset := where.Add(page.Offset)

	query := fmt.Sprintf(sqlFindListings, where.SQL, limit, offset)
	return r.queryListings(ctx, query, where.Args()...)
}

// ListByOwner returns every listing owned by ownerID.
func (r *listingRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Listing, error) {
	return r.queryListings(ctx, sqlListingsByOwner, ownerID)
}

// Update applies a partial update. Setting nothing fails with
// sqlbuild.ErrInvalidArgument; an unknown id with db.ErrNotFound.
func (r *listingRepo) Update(ctx context.Context, id int64, params models.UpdateListingParams) (*models.Listing, error) {
	set, err := sqlbuild.PartialUpdate(params.Fields(), nil)
	if err != nil {
		return nil, fmt.Errorf("repo/listing: %w", err)
	}
	query := fmt.Sprintf(sqlUpdateListing, set.SQL, set.Add(id))
	return scanListing(r.q.QueryRow(ctx, query, set.Args()...))
}

// Remove deletes the listing; its photos go with it.
// Returns db.ErrNotFound if no row was deleted.
func (r *listingRepo) Remove(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlDeleteListing, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *listingRepo) queryListings(ctx context.Context, query string, args ...any) ([]*models.Listing, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func scanListing(row scanner) (*models.Listing, error) {
	l := &models.Listing{}
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Price, &l.Street, &l.City,
		&l.State, &l.Zip, &l.Genre, &l.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("repo/listing: %w", err)
	}
	return l, nil
}

var _ ListingRepository = (*listingRepo)(nil)
