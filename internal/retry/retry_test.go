package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"scriptorium/internal/filestore"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientFailure(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_StopsAfterMaxRetries(t *testing.T) {
	calls := 0
	wantErr := errors.New("still down")
	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1+maxRetries, calls)
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	calls := 0
	wantErr := &googleapi.Error{Code: http.StatusForbidden, Message: "insufficient permissions"}
	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_EmptyFolderNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return filestore.ErrNoTexts
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, filestore.ErrNoTexts)
	assert.Equal(t, 1, calls, "an empty source folder is a definitive answer, not a transient failure")
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "plain network error",
			err:  errors.New("dial tcp: i/o timeout"),
			want: true,
		},
		{
			name: "server error",
			err:  &googleapi.Error{Code: http.StatusBadGateway},
			want: true,
		},
		{
			name: "rate limited",
			err:  &googleapi.Error{Code: http.StatusTooManyRequests},
			want: true,
		},
		{
			name: "auth failure",
			err:  &googleapi.Error{Code: http.StatusUnauthorized},
			want: false,
		},
		{
			name: "bad request",
			err:  &googleapi.Error{Code: http.StatusBadRequest},
			want: false,
		},
		{
			name: "cancelled context",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "empty source folder",
			err:  filestore.ErrNoTexts,
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Retryable(tc.err))
		})
	}
}
