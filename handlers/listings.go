package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/middleware"
	"github.com/Skryldev/sharebnb/models"
)

type listingQuery struct {
	MinPrice *int    `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice *int    `form:"maxPrice" validate:"omitempty,min=0"`
	Genre    *string `form:"genre" validate:"omitempty,max=100"`
	Limit    int     `form:"limit" validate:"min=0,max=500"`
	Offset   int     `form:"offset" validate:"min=0"`
}

type createListingRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Price       *int   `json:"price" validate:"required,min=0"`
	Street      string `json:"street" validate:"max=100"`
	City        string `json:"city" validate:"max=100"`
	State       string `json:"state" validate:"max=50"`
	Zip         string `json:"zip" validate:"max=10"`
	Genre       string `json:"genre" validate:"max=100"`
}

type updateListingRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int    `json:"price" validate:"omitempty,min=0"`
	Street      *string `json:"street" validate:"omitempty,max=100"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=50"`
	Zip         *string `json:"zip" validate:"omitempty,max=10"`
	Genre       *string `json:"genre" validate:"omitempty,max=100"`
}

// ListListings handles GET /listings?minPrice=&maxPrice=&genre=&limit=&offset=.
func (h *Handler) ListListings(c *gin.Context) {
	var q listingQuery
	if err := h.bindQuery(c, &q); err != nil {
		apierr.Abort(c, err)
		return
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		apierr.Abort(c, apierr.BadRequest("minPrice cannot be greater than maxPrice"))
		return
	}

	filter := models.ListingFilter{MinPrice: q.MinPrice, MaxPrice: q.MaxPrice, Genre: q.Genre}
	page := models.Page{Limit: q.Limit, Offset: q.Offset}
	listings, err := h.Listings.FindAll(c.Request.Context(), filter, page)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetListing handles GET /listings/:id.
func (h *Handler) GetListing(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	l, err := h.Listings.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Abort(c, notFoundAs(err, "No listing: "+strconv.FormatInt(id, 10)))
		return
	}
	h.resolvePhotoURLs(c.Request.Context(), l.Photos)
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

// CreateListing handles POST /listings. The caller becomes the owner.
func (h *Handler) CreateListing(c *gin.Context) {
	claims, _ := middleware.CurrentUser(c)
	var req createListingRequest
	if err := h.bind(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	l, err := h.Listings.Create(c.Request.Context(), models.CreateListingParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Genre:       req.Genre,
		OwnerID:     claims.UserID,
	})
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": l})
}

// UpdateListing handles PATCH /listings/:id for the owner or an admin.
func (h *Handler) UpdateListing(c *gin.Context) {
	l, err := h.authorizeListing(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req updateListingRequest
	if err := h.bind(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	updated, err := h.Listings.Update(c.Request.Context(), l.ID, models.UpdateListingParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Genre:       req.Genre,
	})
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": updated})
}

// DeleteListing handles DELETE /listings/:id for the owner or an admin.
func (h *Handler) DeleteListing(c *gin.Context) {
	l, err := h.authorizeListing(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	if err := h.Listings.Remove(c.Request.Context(), l.ID); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": l.ID})
}

// AddListingPhoto handles POST /listings/:id/photos with a multipart
// "image" field. The photo row stores the object key.
func (h *Handler) AddListingPhoto(c *gin.Context) {
	l, err := h.authorizeListing(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	obj, err := h.receiveImage(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	p, err := h.Photos.Add(c.Request.Context(), l.ID, obj.Key)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	p.URL = obj.URL
	c.JSON(http.StatusCreated, gin.H{"photo": p})
}

// authorizeListing loads the :id listing and checks that the caller owns it
// or is an admin.
func (h *Handler) authorizeListing(c *gin.Context) (*models.Listing, error) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	id, err := idParam(c)
	if err != nil {
		return nil, err
	}
	l, err := h.Listings.Get(c.Request.Context(), id)
	if err != nil {
		return nil, notFoundAs(err, "No listing: "+strconv.FormatInt(id, 10))
	}
	if !claims.IsAdmin && claims.UserID != l.OwnerID {
		return nil, apierr.Forbidden("Only the listing owner may change it")
	}
	return l, nil
}

// resolvePhotoURLs replaces stored object keys with presigned URLs. Absolute
// URLs are left alone, as are keys that cannot be signed.
func (h *Handler) resolvePhotoURLs(ctx context.Context, photos []models.Photo) {
	if h.Images == nil || !h.Images.Enabled() {
		return
	}
	for i := range photos {
		if strings.HasPrefix(photos[i].URL, "http://") || strings.HasPrefix(photos[i].URL, "https://") {
			continue
		}
		if u, err := h.Images.PresignedURL(ctx, photos[i].URL); err == nil {
			photos[i].URL = u
		}
	}
}
