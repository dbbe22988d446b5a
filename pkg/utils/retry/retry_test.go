package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opst/dmcatalog/pkg/utils/retry"
)

func TestBlocking(t *testing.T) {
	errLost := errors.New("lost")
	errFatal := errors.New("fatal")

	for name, testcase := range map[string]struct {
		maxRetries int
		results    []error
		wantCalls  int
		wantErr    []error
	}{
		"success at first": {
			maxRetries: 3,
			results:    []error{nil},
			wantCalls:  1,
		},
		"success after retries": {
			maxRetries: 3,
			results:    []error{retry.Again(errLost), retry.Again(errLost), nil},
			wantCalls:  3,
		},
		"not retryable": {
			maxRetries: 3,
			results:    []error{retry.Again(errLost), errFatal},
			wantCalls:  2,
			wantErr:    []error{errFatal},
		},
		"exhausted": {
			maxRetries: 2,
			results:    []error{retry.Again(errLost), retry.Again(errLost), retry.Again(errLost), nil},
			wantCalls:  3,
			wantErr:    []error{retry.ErrExhausted, errLost},
		},
		"no retries allowed": {
			maxRetries: 0,
			results:    []error{retry.Again(errLost), nil},
			wantCalls:  1,
			wantErr:    []error{retry.ErrExhausted, errLost},
		},
	} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			attempts := []int{}
			b := retry.Limited(testcase.maxRetries, func(ctx context.Context, attempt int) error {
				attempts = append(attempts, attempt)
				return retry.Static(0)(ctx, attempt)
			})
			got, err := retry.Blocking(context.Background(), b, func() (int, error) {
				err := testcase.results[calls]
				calls += 1
				return calls, err
			})

			if calls != testcase.wantCalls {
				t.Errorf("called %d times, want %d", calls, testcase.wantCalls)
			}
			if got != calls {
				t.Errorf("last value is not returned: %d", got)
			}
			for nth, a := range attempts {
				if a != nth+1 {
					t.Errorf("attempts: %v", attempts)
					break
				}
			}
			if testcase.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			for _, want := range testcase.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("expected %v, but got %v", want, err)
				}
			}
		})
	}
}

func TestStatic(t *testing.T) {
	t.Run("it waits for the interval", func(t *testing.T) {
		before := time.Now()
		if err := retry.Static(20*time.Millisecond)(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
		if elapsed := time.Since(before); elapsed < 20*time.Millisecond {
			t.Errorf("it returns too early: %s", elapsed)
		}
	})

	t.Run("it stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := retry.Static(time.Hour)(ctx, 1); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, but got %v", err)
		}
	})
}
