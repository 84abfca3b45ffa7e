package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-nft/pkg/retry/backoff"
)

type testSleeper struct {
	sleepTimes []time.Duration
}

func (s *testSleeper) Sleep(d time.Duration) {
	s.sleepTimes = append(s.sleepTimes, d)
}

func useTestSleeper(t *testing.T) *testSleeper {
	ts := &testSleeper{}
	sleeperImpl = ts
	t.Cleanup(func() { sleeperImpl = realSleeper{} })
	return ts
}

func TestRetry_SucceedsEventually(t *testing.T) {
	var calls int
	attempts, err := Retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
}

func TestRealSleeper(t *testing.T) {
	start := time.Now()
	n, err := Retry(func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(100*time.Millisecond), 100*time.Millisecond),
	)

	assert.Error(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 100*time.Millisecond <= time.Since(start))
}

func TestRetrier(t *testing.T) {
	retriableErr := errors.New("retriable")
	r := NewRetrier(Limit(5), RetriableErrors(retriableErr))

	attempts, err := r.Retry(func() error { return nil })
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)

	// Either strategy can stop the retries
	attempts, err = r.Retry(func() error { return errors.New("unknown") })
	assert.Error(t, err)
	assert.EqualValues(t, 1, attempts)

	attempts, err = r.Retry(func() error { return errors.Wrap(retriableErr, "wrapped") })
	assert.True(t, errors.Is(err, retriableErr))
	assert.EqualValues(t, 5, attempts)
}

func TestLimit(t *testing.T) {
	strategy := Limit(2)
	assert.True(t, strategy(1, errors.New("test")))
	assert.False(t, strategy(2, errors.New("test")))

	counter, err := Retry(func() error {
		return errors.New("test")
	}, Limit(2))
	assert.EqualError(t, err, "test")
	assert.EqualValues(t, 2, counter)
}

func TestRetriableIf(t *testing.T) {
	strategy := RetriableIf(func(err error) bool {
		return err.Error() == "expired"
	})
	assert.True(t, strategy(1, errors.New("expired")))
	assert.False(t, strategy(1, errors.New("rejected")))
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	strategy := Context(ctx)
	assert.True(t, strategy(1, errors.New("test")))

	cancel()
	assert.False(t, strategy(2, errors.New("test")))
}

func TestBackoff(t *testing.T) {
	ts := useTestSleeper(t)

	_, err := Retry(func() error { return errors.New("test") },
		Limit(5),
		Backoff(backoff.Linear(time.Second), 3*time.Second),
	)
	assert.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, ts.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	ts := useTestSleeper(t)

	strategy := BackoffWithJitter(backoff.Constant(time.Second), 500*time.Millisecond, 0.1)
	for i := uint(1); i <= 100; i++ {
		assert.True(t, strategy(i, errors.New("test")))
	}

	assert.Len(t, ts.sleepTimes, 100)
	for _, d := range ts.sleepTimes {
		assert.True(t, d >= 450*time.Millisecond && d <= 550*time.Millisecond, "unexpected delay %v", d)
	}
}
