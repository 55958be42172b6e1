package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
)

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Password  *string `json:"password" validate:"omitempty,min=5,max=72"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	var q pageQuery
	if err := h.bindQuery(c, &q); err != nil {
		apierr.Abort(c, err)
		return
	}
	users, err := h.Users.List(c.Request.Context(), q.page())
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser handles GET /users/:username. The response includes the user's
// listings.
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		apierr.Abort(c, notFoundAs(err, "No user: "+username))
		return
	}
	listings, err := h.Listings.ListByOwner(ctx, u.ID)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "listings": listings})
}

// UpdateUser handles PATCH /users/:username. Only the fields present in the
// body change; a new password is hashed before it is stored.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := h.bind(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	params := models.UpdateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Password != nil {
		hash, err := h.Hasher.Hash(*req.Password)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		params.PasswordHash = &hash
	}

	username := c.Param("username")
	u, err := h.Users.Update(c.Request.Context(), username, params)
	if err != nil {
		apierr.Abort(c, notFoundAs(err, "No user: "+username))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// DeleteUser handles DELETE /users/:username.
func (h *Handler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.Users.Delete(c.Request.Context(), username); err != nil {
		apierr.Abort(c, notFoundAs(err, "No user: "+username))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": username})
}

// notFoundAs gives db.ErrNotFound a specific message and passes other
// errors through.
func notFoundAs(err error, message string) error {
	if db.IsNotFound(err) {
		return apierr.New(http.StatusNotFound, message, err)
	}
	return err
}
