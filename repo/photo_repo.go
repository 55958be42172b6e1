package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
)

// PhotoRepository stores the image URLs attached to listings.
type PhotoRepository interface {
	Add(ctx context.Context, listingID int64, url string) (*models.Photo, error)
	ListForListing(ctx context.Context, listingID int64) ([]models.Photo, error)
	Delete(ctx context.Context, id int64) error
}

type photoRepo struct {
	q db.Querier
}

// NewPhotoRepo returns a PhotoRepository backed by q.
func NewPhotoRepo(q db.Querier) PhotoRepository {
	return &photoRepo{q: q}
}

const (
	sqlInsertPhoto = `
		INSERT INTO photos (listing_id, photo_url, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, listing_id, photo_url, created_at`

	sqlListPhotos = `
		SELECT id, listing_id, photo_url, created_at
		FROM   photos
		WHERE  listing_id = $1
		ORDER  BY id`

	sqlDeletePhoto = `
		DELETE FROM photos WHERE id = $1`
)

// Add attaches url to the listing. An unknown listing yields
// db.ErrForeignKeyViolation.
func (r *photoRepo) Add(ctx context.Context, listingID int64, url string) (*models.Photo, error) {
	row := r.q.QueryRow(ctx, sqlInsertPhoto, listingID, url, time.Now().UTC())
	p, err := scanPhoto(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForListing returns the listing's photos in upload order.
func (r *photoRepo) ListForListing(ctx context.Context, listingID int64) ([]models.Photo, error) {
	return listPhotos(ctx, r.q, listingID)
}

// Delete returns db.ErrNotFound if no row was deleted.
func (r *photoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlDeletePhoto, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func listPhotos(ctx context.Context, q db.Querier, listingID int64) ([]models.Photo, error) {
	rows, err := q.Query(ctx, sqlListPhotos, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func scanPhoto(row scanner) (models.Photo, error) {
	var p models.Photo
	if err := row.Scan(&p.ID, &p.ListingID, &p.URL, &p.CreatedAt); err != nil {
		return models.Photo{}, fmt.Errorf("repo/photo: %w", err)
	}
	return p, nil
}

var _ PhotoRepository = (*photoRepo)(nil)
