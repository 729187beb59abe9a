package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(KindCredentialNotFound, "op", "user %s not found", "u1"),
			want: "user u1 not found",
		},
		{
			name: "message and cause",
			err:  &Error{Kind: KindNetworkError, Message: "token endpoint unreachable", Err: errors.New("connection refused")},
			want: "token endpoint unreachable: connection refused",
		},
		{
			name: "cause only",
			err:  Wrap(KindBackendRequestFailed, "op", errors.New("boom")),
			want: "boom",
		},
		{
			name: "empty falls back to kind",
			err:  E(KindInvalidFilter),
			want: "invalid_filter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsKind(t *testing.T) {
	base := New(KindNoAccessToken, "google.Refresh", "no access token received")
	wrapped := fmt.Errorf("refresh: %w", base)

	assert.True(t, IsKind(wrapped, KindNoAccessToken))
	assert.False(t, IsKind(wrapped, KindTokenExchangeFailed))
	assert.False(t, IsKind(errors.New("plain"), KindNoAccessToken))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidRequest, KindOf(fmt.Errorf("x: %w", New(KindInvalidRequest, "", "bad"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(KindInternal, "op", nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindClientConstructionFailed, "op", cause)
	assert.ErrorIs(t, err, cause)
}
