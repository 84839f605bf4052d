package retry

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRetry_NoStrategies(t *testing.T) {
	var calls int
	attempts, err := Retry(func() error {
		calls++
		if calls < 5 {
			return errors.New("try again")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.EqualValues(t, 5, attempts)
	assert.Equal(t, 5, calls)
}

func TestRetry_Limit(t *testing.T) {
	errTest := errors.New("some error")

	var calls int
	attempts, err := Retry(func() error {
		calls++
		return errTest
	}, Limit(3))

	assert.Equal(t, errTest, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetrier(t *testing.T) {
	errTest := errors.New("some error")

	r := NewRetrier(Limit(2))

	var calls int
	attempts, err := r.Retry(func() error {
		calls++
		return errTest
	})

	assert.Equal(t, errTest, err)
	assert.EqualValues(t, 2, attempts)
	assert.Equal(t, 2, calls)
}
