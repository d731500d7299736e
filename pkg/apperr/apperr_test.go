package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("course not found")))
	assert.Equal(t, KindConflict, KindOf(Conflict("already enrolled")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("no access")))
	assert.Equal(t, KindValidation, KindOf(Validation("bad rating %d", 9)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("enroll: %w", Conflict("already enrolled"))
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load user", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to load user")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationFormatting(t *testing.T) {
	err := Validation("rating must be between %d and %d", 1, 5)
	assert.Equal(t, "rating must be between 1 and 5", err.Error())
}
