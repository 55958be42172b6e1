package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
)

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=72"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /auth/register and returns a token for the new user.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := h.bind(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	u, err := h.Users.Insert(c.Request.Context(), models.CreateUserParams{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
	})
	if db.IsDuplicateKey(err) {
		apierr.Abort(c, apierr.New(http.StatusConflict, "Duplicate username: "+req.Username, err))
		return
	}
	if err != nil {
		apierr.Abort(c, err)
		return
	}

	h.respondToken(c, http.StatusCreated, u)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		apierr.Abort(c, err)
		return
	}

	u, err := h.Users.GetByUsername(c.Request.Context(), req.Username)
	if db.IsNotFound(err) {
		apierr.Abort(c, auth.ErrInvalidCredentials)
		return
	}
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	if err := h.Hasher.Check(u.PasswordHash, req.Password); err != nil {
		apierr.Abort(c, err)
		return
	}

	h.respondToken(c, http.StatusOK, u)
}

func (h *Handler) respondToken(c *gin.Context, status int, u *models.User) {
	token, err := h.Tokens.Issue(u)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(status, gin.H{"token": token})
}
