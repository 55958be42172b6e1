package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/sqlbuild"
	"github.com/Skryldev/sharebnb/storage"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&db.DBError{Sentinel: db.ErrNotFound, Cause: errors.New("no rows")}, http.StatusNotFound},
		{fmt.Errorf("repo/user: %w", &db.DBError{Sentinel: db.ErrDuplicateKey}), http.StatusConflict},
		{db.ErrForeignKeyViolation, http.StatusConflict},
		{db.ErrCheckViolation, http.StatusBadRequest},
		{fmt.Errorf("repo/listing: %w", sqlbuild.ErrInvalidArgument), http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: expired", auth.ErrInvalidToken), http.StatusUnauthorized},
		{storage.ErrDisabled, http.StatusServiceUnavailable},
		{db.ErrConnectionFailed, http.StatusServiceUnavailable},
		{apierr.Forbidden("nope"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := apierr.From(tt.err).Status; got != tt.want {
			t.Errorf("From(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestAbort_ResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/listings/9", nil)

	apierr.Abort(c, apierr.NotFound("No listing: 9"))

	if w.Code != http.StatusNotFound || !c.IsAborted() {
		t.Fatalf("status %d aborted %v", w.Code, c.IsAborted())
	}
	var body map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]map[string]any{"error": {"message": "No listing: 9", "status": float64(404)}}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}
