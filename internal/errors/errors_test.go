package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_Error(t *testing.T) {
	err := NewUpstreamError("vercel", 503, "service unavailable")
	assert.Contains(t, err.Error(), "vercel")
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestUpstreamError_WithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := &UpstreamError{Service: "github", Message: "request failed", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSentinelWrapping(t *testing.T) {
	assert.ErrorIs(t, NotConfigured("vercel"), ErrNotConfigured)
	assert.ErrorIs(t, Invalid("bad name %q", "X"), ErrInvalidInput)
	assert.ErrorIs(t, NotFoundf("project %s", "prj_1"), ErrNotFound)
	assert.ErrorIs(t, Conflictf("name taken"), ErrConflict)

	// Messages carry the formatted detail
	assert.Contains(t, Invalid("bad name %q", "X").Error(), `bad name "X"`)
	assert.Contains(t, NotConfigured("vercel").Error(), "vercel")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Invalid("nope")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("gone")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("taken")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NotConfigured("vercel")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewUpstreamError("vercel", 503, "down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestHTTPStatus_WrappedUpstream(t *testing.T) {
	inner := &UpstreamError{Service: "github", StatusCode: 500, Message: "oops"}
	wrapped := errors.Join(errors.New("context"), inner)
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(wrapped))
}
