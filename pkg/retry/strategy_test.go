package retry

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/hooklabs/hook-server/pkg/retry/backoff"
)

type mockSleeper struct {
	sleeps []time.Duration
}

func (m *mockSleeper) Sleep(d time.Duration) {
	m.sleeps = append(m.sleeps, d)
}

func TestLimit(t *testing.T) {
	s := Limit(3)

	err := errors.New("some error")
	assert.True(t, s(1, err))
	assert.True(t, s(2, err))
	assert.False(t, s(3, err))
}

func TestRetriableErrors(t *testing.T) {
	retriable := errors.New("retriable")
	other := errors.New("other")

	s := RetriableErrors(retriable)
	assert.True(t, s(1, retriable))
	assert.True(t, s(1, errors.Wrap(retriable, "wrapped")))
	assert.False(t, s(1, other))
}

func TestNonRetriableErrors(t *testing.T) {
	fatal := errors.New("fatal")
	other := errors.New("other")

	s := NonRetriableErrors(fatal)
	assert.False(t, s(1, fatal))
	assert.True(t, s(1, other))
}

func TestBackoff_Capped(t *testing.T) {
	m := &mockSleeper{}
	sleeperImpl = m
	defer func() {
		sleeperImpl = &realSleeper{}
	}()

	s := Backoff(backoff.BinaryExponential(time.Second), 4*time.Second)

	err := errors.New("some error")
	for i := uint(1); i <= 4; i++ {
		assert.True(t, s(i, err))
	}

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second,
	}
	assert.Equal(t, expected, m.sleeps)
}

func TestBackoffWithJitter(t *testing.T) {
	m := &mockSleeper{}
	sleeperImpl = m
	defer func() {
		sleeperImpl = &realSleeper{}
	}()

	s := BackoffWithJitter(backoff.Constant(time.Second), 10*time.Second, 0.1)

	err := errors.New("some error")
	for i := uint(1); i <= 100; i++ {
		assert.True(t, s(i, err))
	}

	for _, d := range m.sleeps {
		assert.True(t, d >= 900*time.Millisecond)
		assert.True(t, d <= 1100*time.Millisecond)
	}
}
