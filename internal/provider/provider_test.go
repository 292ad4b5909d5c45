package provider_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asad272002/TaskWiser-V2/internal/chain/eth/rpc"
	"github.com/Asad272002/TaskWiser-V2/internal/provider"
)

var errPlain = errors.New("connection refused")

func TestErrorCode(t *testing.T) {
	t.Parallel()

	code, ok := provider.ErrorCode(&provider.Error{Code: 4001, Message: "denied"})
	assert.True(t, ok)
	assert.Equal(t, 4001, code)

	wrapped := fmt.Errorf("sending: %w", &rpc.Error{Code: 4902, Message: "Unrecognized chain"})
	code, ok = provider.ErrorCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 4902, code)
	assert.True(t, provider.IsUnrecognizedChain(wrapped))
	assert.False(t, provider.IsUserRejected(wrapped))

	_, ok = provider.ErrorCode(errPlain)
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Unrecognized chain", provider.ErrorMessage(&rpc.Error{Code: 4902, Message: "Unrecognized chain"}))
	assert.Equal(t, "denied", provider.ErrorMessage(fmt.Errorf("x: %w", &provider.Error{Code: 4001, Message: "denied"})))
	assert.Equal(t, "connection refused", provider.ErrorMessage(errPlain))
	assert.Empty(t, provider.ErrorMessage(nil))
}
