package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("checkout: %w", WrapError(KindTransactionFailed, "checkout failed", cause))

	assert.Equal(t, KindTransactionFailed, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, KindNotFound, KindOf(NewError(KindNotFound, "x")))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "invalid_state: cart is empty", NewError(KindInvalidState, "cart is empty").Error())
	assert.Equal(t, "internal: db error: boom", WrapError(KindInternal, "db error", errors.New("boom")).Error())
}
