package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("recording withdrawal: %w", New(InsufficientStock, "insufficient stock for %s", "Drill"))

	assert.Equal(t, InsufficientStock, KindOf(err))
	assert.True(t, Is(err, InsufficientStock))
	assert.Equal(t, "insufficient stock for Drill", PublicMessage(err))
	assert.Equal(t, http.StatusBadRequest, Status(KindOf(err)))
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("disk I/O error: database is locked")

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "internal error", PublicMessage(err))
	assert.Equal(t, http.StatusInternalServerError, Status(KindOf(err)))
	assert.False(t, Is(nil, Internal))
}

func TestWrapHidesCauseFromClient(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(DuplicateUser, cause, "user already exists")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "user already exists", PublicMessage(err))
	assert.Contains(t, err.Error(), "constraint failed")
}

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{InvalidSite, http.StatusBadRequest},
		{InvalidRequest, http.StatusBadRequest},
		{EquipmentNotFound, http.StatusNotFound},
		{NotFound, http.StatusNotFound},
		{DuplicateUser, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.kind), tt.kind.String())
	}
}
