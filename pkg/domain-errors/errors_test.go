package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("wrapped domain error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeInvalidCredential, "Invalid or expired token"))
		assert.Equal(t, CodeInvalidCredential, CodeOf(err))
		assert.Equal(t, "Invalid or expired token", MessageOf(err))
		assert.True(t, Is(err, CodeInvalidCredential))
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		inner := New(CodeTimeout, "store timed out")
		outer := Wrap(inner, CodeInternal, "failed to load credential")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeTimeout))
		assert.False(t, HasCode(outer, CodeValidation))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(err, CodeInternal))
	})
}
