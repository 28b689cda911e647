package reliability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterFailureThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := b.Call(func() error { return boom })
		assert.Equal(t, boom, err)
	}

	assert.Equal(t, Open, b.State())

	err := b.Call(func() error { return nil })
	var openErr ErrOpen
	require.ErrorAs(t, err, &openErr)
}

func TestBreaker_HalfOpenRecoversToClosedOnSuccess(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)
	_ = b.Call(func() error { return errors.New("fail") })
	require.Equal(t, Open, b.State())

	time.Sleep(20 * time.Millisecond)

	err := b.Call(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_SuccessDecaysFailureCountWithoutOpening(t *testing.T) {
	b := NewBreaker(5, time.Minute)
	_ = b.Call(func() error { return errors.New("fail") })
	_ = b.Call(func() error { return nil })
	_ = b.Call(func() error { return errors.New("fail") })
	_ = b.Call(func() error { return errors.New("fail") })
	_ = b.Call(func() error { return errors.New("fail") })

	assert.Equal(t, Closed, b.State())
}

func TestRetryPolicy_SucceedsWithoutExhaustingRetries(t *testing.T) {
	p := NewRetryPolicy(3, time.Millisecond, 10*time.Millisecond)
	attempts := 0
	err := p.Execute(nil, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryPolicy_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	p := NewRetryPolicy(2, time.Millisecond, 5*time.Millisecond)
	attempts := 0
	err := p.Execute(nil, func() error {
		attempts++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

func TestRetryPolicy_StopsOnCancellation(t *testing.T) {
	p := NewRetryPolicy(5, 50*time.Millisecond, time.Second)
	stop := make(chan struct{})
	close(stop)

	attempts := 0
	err := p.Execute(stop, func() error {
		attempts++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
