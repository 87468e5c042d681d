package utils

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"
	gutils "go.viam.com/utils"
)

func TestMapInParallel(t *testing.T) {
	square := func(ctx context.Context, n float64) (float64, error) {
		if !gutils.SelectContextOrWait(ctx, 100*time.Millisecond) {
			return 0, ctx.Err()
		}
		return Square(n), nil
	}

	start := time.Now()
	results, err := MapInParallel(context.Background(), []float64{1, 2, 3}, square)
	elapsed := time.Since(start)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results, test.ShouldResemble, []float64{1, 4, 9})
	test.That(t, elapsed, test.ShouldBeLessThan, 190*time.Millisecond)
	test.That(t, elapsed, test.ShouldBeGreaterThan, 90*time.Millisecond)

	t.Run("first error cancels the rest", func(t *testing.T) {
		fn := func(ctx context.Context, n float64) (float64, error) {
			if n < 0 {
				return 0, errors.New("bad")
			}
			return square(ctx, n)
		}
		start := time.Now()
		_, err := MapInParallel(context.Background(), []float64{1, -1, 2}, fn)
		elapsed := time.Since(start)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "bad")
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeFalse)
		test.That(t, elapsed, test.ShouldBeLessThan, 90*time.Millisecond)
	})

	t.Run("wrapped cancellation is dropped after a failure", func(t *testing.T) {
		fn := func(ctx context.Context, n float64) (float64, error) {
			if n < 0 {
				return 0, errors.New("bad")
			}
			<-ctx.Done()
			return 0, errors.Wrap(ctx.Err(), "square")
		}
		_, err := MapInParallel(context.Background(), []float64{1, -1}, fn)
		test.That(t, err, test.ShouldBeError, "bad")
	})

	t.Run("panic", func(t *testing.T) {
		fn := func(ctx context.Context, n float64) (float64, error) {
			panic(1)
		}
		_, err := MapInParallel(context.Background(), []float64{1}, fn)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "panic in parallel item 0")
	})

	t.Run("empty", func(t *testing.T) {
		results, err := MapInParallel(context.Background(), []string(nil),
			func(context.Context, string) (int, error) { return 0, nil })
		test.That(t, err, test.ShouldBeNil)
		test.That(t, results, test.ShouldBeEmpty)
	})
}
