package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad", nil), http.StatusBadRequest},
		{Duplicate("dup"), http.StatusBadRequest},
		{Authentication("no"), http.StatusUnauthorized},
		{JWT("bad token"), http.StatusUnauthorized},
		{JWTExpired("expired"), http.StatusUnauthorized},
		{Email("send failed"), http.StatusInternalServerError},
		{Database(errors.New("boom")), http.StatusInternalServerError},
		{Server(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Status(), "type %s", c.err.Type)
	}
}

func TestFrom(t *testing.T) {
	ae := Duplicate("taken")
	wrapped := fmt.Errorf("create user: %w", ae)

	got := From(wrapped)
	assert.Equal(t, TypeDuplicate, got.Type)
	assert.Equal(t, "taken", got.Message)

	plain := From(errors.New("unexpected"))
	assert.Equal(t, TypeServer, plain.Type)
	assert.EqualError(t, plain.Err, "unexpected")
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", Authentication("nope"))
	assert.True(t, Is(err, TypeAuthentication))
	assert.False(t, Is(err, TypeValidation))
	assert.False(t, Is(errors.New("plain"), TypeAuthentication))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("pg down")
	err := Database(cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DatabaseError")
	assert.Contains(t, err.Error(), "pg down")
}
