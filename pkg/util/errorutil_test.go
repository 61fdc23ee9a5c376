package util

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	err := NewConflict("ALREADY_OPEN", "open attempt exists", nil)
	domainErr := ToDomainError(err)
	assert.Equal(t, "ALREADY_OPEN", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestToDomainErrorWrapsDeadline(t *testing.T) {
	domainErr := ToDomainError(context.DeadlineExceeded)
	assert.Equal(t, "UNAVAILABLE", domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "FORBIDDEN", CodeOf(NewForbidden("no")))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}
