package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := New(ErrNetwork, "eth_accounts", cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrUserRejected))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "eth_accounts: Network error: dial tcp: connection refused", err.Error())
}

func TestErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("send: %w", New(ErrContractRevert, "wait", nil))
	assert.True(t, errors.Is(err, ErrContractRevert))
	assert.Equal(t, ErrContractRevert, CodeOf(err))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"nil", nil, OK.Code, OK.Message},
		{"plain errno", ErrNotConnected, ErrNotConnected.Code, ErrNotConnected.Message},
		{"wrapped", New(ErrMissingProvider, "connect", nil), ErrMissingProvider.Code, "connect: No wallet provider detected"},
		{"unknown", errors.New("boom"), InternalServerError.Code, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Decode(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
