// Package handlers implements the REST API on gin.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/repo"
	"github.com/Skryldev/sharebnb/storage"
)

// ImageStore is satisfied by *storage.Client.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (storage.Object, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Enabled() bool
}

// Deps are the collaborators of every handler.
type Deps struct {
	DB       *db.DB
	Users    repo.UserRepository
	Listings repo.ListingRepository
	Photos   repo.PhotoRepository
	Tokens   *auth.TokenManager
	Hasher   auth.PasswordHasher
	Images   ImageStore
	// MaxUploadBytes caps multipart image bodies. Zero means 10 MiB.
	MaxUploadBytes int64
}

// Handler groups the route handlers.
type Handler struct {
	Deps
	validate *validator.Validate
}

// New returns a Handler over deps.
func New(deps Deps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	return &Handler{Deps: deps, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their JSON or query names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bind decodes the JSON body into dst and validates it.
func (h *Handler) bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.New(http.StatusBadRequest, "Invalid request body", err)
	}
	return h.check(dst)
}

// bindQuery decodes query parameters into dst and validates it.
func (h *Handler) bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apierr.New(http.StatusBadRequest, "Invalid query parameters", err)
	}
	return h.check(dst)
}

func (h *Handler) check(dst any) error {
	err := h.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.New(http.StatusBadRequest, "Invalid request", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apierr.New(http.StatusBadRequest, strings.Join(msgs, "; "), err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest("Invalid id: " + c.Param("id"))
	}
	return id, nil
}

// pageQuery is the shared limit/offset query.
type pageQuery struct {
	Limit  int `form:"limit" validate:"min=0,max=500"`
	Offset int `form:"offset" validate:"min=0"`
}

func (q pageQuery) page() models.Page {
	return models.Page{Limit: q.Limit, Offset: q.Offset}
}
