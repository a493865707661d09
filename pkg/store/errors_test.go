package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"canceled", fmt.Errorf("listing: %w", context.Canceled), KindCanceled},
		{"deadline", context.DeadlineExceeded, KindCanceled},
		{"not found sentinel", fmt.Errorf("x: %w", types.ErrNotFound), KindNotFound},
		{"remote 404", &types.RemoteError{Status: 404}, KindNotFound},
		{"invalid data", types.ErrInvalidData, KindInvalid},
		{"invalid id", types.ErrInvalidID, KindInvalid},
		{"remote 422", &types.RemoteError{Status: 422}, KindInvalid},
		{"conflict", &types.RemoteError{Status: 409}, KindConflict},
		{"remote 503", &types.RemoteError{Status: 503}, KindUnavailable},
		{"detached", types.ErrBackendDetached, KindUnavailable},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestNewErrorMessage(t *testing.T) {
	name := types.PackagesCollection

	e := newError(name, OpFetch, &types.RemoteError{Status: 502, Message: " Upstream down "})
	assert.Equal(t, "Upstream down", e.Message)
	assert.Equal(t, KindUnavailable, e.Kind)

	e = newError(name, OpFetch, errors.New(""))
	assert.Equal(t, "Failed to fetch packages", e.Message)

	e = newError(name, OpUpdate, errors.New(""))
	assert.Equal(t, "Failed to update package", e.Message)

	wrapped := fmt.Errorf("patching package: %w", &types.RemoteError{Status: 404, Message: "Not found"})
	e = newError(name, OpUpdate, wrapped)
	assert.Equal(t, "Not found", e.Message, "the remote message wins over the wrapping text")
	assert.ErrorIs(t, e, types.ErrNotFound)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "canceled", KindCanceled.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
