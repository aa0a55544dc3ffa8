package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})

	t.Run("domain error passes through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("load case: %w", NewForbidden("nope"))
		de := ToDomainError(wrapped)
		require.NotNil(t, de)
		assert.Equal(t, CodeForbidden, de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		cause := errors.New("boom")
		de := ToDomainError(cause)
		assert.Equal(t, CodeInternal, de.Code)
		assert.ErrorIs(t, de, cause)
	})
}

func TestHasCode(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("case", map[string]any{"case_id": "x"})))
	assert.True(t, HasCode(NewBadRequest("bad", nil), CodeBadRequest))
	assert.True(t, HasCode(NewInvariantViolation("seed missing", nil), CodeInvariantViolation))
	assert.False(t, IsForbidden(errors.New("plain")))
}
