package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesSpec(t *testing.T) {
	job := func(context.Context) error { return nil }

	_, err := New("", job)
	assert.Error(t, err)
	_, err = New("not a cron", job)
	assert.Error(t, err)
	_, err = New("*/5 * * * *", nil)
	assert.Error(t, err)

	r, err := New("@every 1h", job)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Runs())
}

func TestRunOnceCountsFailures(t *testing.T) {
	calls := 0
	r, err := New("@hourly", func(context.Context) error {
		calls++
		return errors.New("input missing")
	})
	require.NoError(t, err)

	r.RunOnce(context.Background())
	r.RunOnce(context.Background())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, r.Runs())
}

func TestRunStartsImmediatelyAndStopsOnCancel(t *testing.T) {
	ran := make(chan struct{}, 1)
	r, err := New("@every 1h", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run on start")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 1, r.Runs())
}
