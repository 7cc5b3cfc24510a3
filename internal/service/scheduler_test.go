package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) Outcome {
	c.calls.Add(1)
	return Outcome{Success: true}
}

func TestScheduler_RefreshesAtStartAndOnTick(t *testing.T) {
	// Arrange
	r := &countingRefresher{}
	s := NewScheduler(r, 20*time.Millisecond, quietLogger())

	// Act
	s.Start()
	defer s.Stop()

	// Assert
	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_NextRunAt(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r, time.Hour, quietLogger())
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.True(t, s.NextRunAt().IsZero())

	s.Start()
	assert.Equal(t, fixed.Add(time.Hour), s.NextRunAt())

	s.Stop()
	assert.True(t, s.NextRunAt().IsZero())
}

func TestScheduler_StartTwiceAndStopTwice(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r, time.Hour, quietLogger())

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestScheduler_Defaults(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, 0, nil)

	assert.Equal(t, DefaultUpdateInterval, s.Interval())
	assert.NoError(t, s.Wait(context.Background()))
}

// blockingRefresher holds every refresh until release is closed.
type blockingRefresher struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func (b *blockingRefresher) Refresh(context.Context) Outcome {
	close(b.started)
	<-b.release
	b.finished.Store(true)
	return Outcome{Success: true}
}

func TestScheduler_WaitCoversInFlightRefresh(t *testing.T) {
	// Arrange
	r := &blockingRefresher{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(r, time.Hour, quietLogger())
	s.Start()
	<-r.started

	// Act: stopping does not interrupt the running refresh.
	s.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Wait(ctx)

	// Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, r.finished.Load())

	close(r.release)
	assert.NoError(t, s.Wait(context.Background()))
	assert.True(t, r.finished.Load())
}
