package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/storage"
)

// UploadImage handles POST /upload/image with a multipart "image" field.
func (h *Handler) UploadImage(c *gin.Context) {
	obj, err := h.receiveImage(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Image uploaded successfully",
		"imageUrl": obj.URL,
		"key":      obj.Key,
	})
}

// receiveImage stores the request's "image" file.
func (h *Handler) receiveImage(c *gin.Context) (storage.Object, error) {
	if h.Images == nil || !h.Images.Enabled() {
		return storage.Object{}, storage.ErrDisabled
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return storage.Object{}, apierr.New(http.StatusRequestEntityTooLarge, "Image is too large", err)
		}
		return storage.Object{}, apierr.New(http.StatusBadRequest, "No image uploaded", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return storage.Object{}, apierr.BadRequest("Only image uploads are accepted")
	}

	f, err := fh.Open()
	if err != nil {
		return storage.Object{}, err
	}
	defer f.Close()

	return h.Images.Upload(c.Request.Context(), fh.Filename, f, fh.Size, contentType)
}
