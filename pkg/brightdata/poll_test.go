package brightdata

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements Client for testing WaitReady.
type mockClient struct {
	progressFunc func(ctx context.Context, id string) (string, error)
}

func (m *mockClient) Trigger(context.Context, []CompanyInput) (string, error) {
	return "", nil
}

func (m *mockClient) Progress(ctx context.Context, id string) (string, error) {
	return m.progressFunc(ctx, id)
}

func (m *mockClient) Snapshot(context.Context, string) ([]Company, error) {
	return nil, nil
}

func TestWaitReady_ReadyAfterRunning(t *testing.T) {
	statuses := []string{StatusRunning, StatusRunning, StatusReady}
	var calls atomic.Int32
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			n := calls.Add(1)
			return statuses[n-1], nil
		},
	}

	err := WaitReady(context.Background(), mock, "snap-1",
		WithPollInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitReady_FailedImmediately(t *testing.T) {
	var calls atomic.Int32
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			calls.Add(1)
			return StatusFailed, nil
		},
	}

	err := WaitReady(context.Background(), mock, "snap-2",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWaitReady_UnknownStatus(t *testing.T) {
	var calls atomic.Int32
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			calls.Add(1)
			return "collecting", nil
		},
	}

	err := WaitReady(context.Background(), mock, "snap-3",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWaitReady_Timeout(t *testing.T) {
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			return StatusRunning, nil
		},
	}

	start := time.Now()
	err := WaitReady(context.Background(), mock, "snap-4",
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(50*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "must not hang past timeout")
}

func TestWaitReady_ParentDeadlineWins(t *testing.T) {
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			return StatusRunning, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, mock, "snap-5",
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(time.Hour),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitReady_ErrorPropagation(t *testing.T) {
	mock := &mockClient{
		progressFunc: func(ctx context.Context, id string) (string, error) {
			return "", &APIError{StatusCode: 500, Body: "server error"}
		},
	}

	err := WaitReady(context.Background(), mock, "snap-6",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}
