package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-storefront-cache/store"
	"github.com/rs/zerolog"
)

// delay advances clock by the duration configured for each action type
func delay(clock *fakeClock, costs map[string]time.Duration) store.Middleware {
	return func(api store.API) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(a store.Action) bool {
				clock.Advance(costs[a.Type])
				return next(a)
			}
		}
	}
}

func TestPerformance_RecordsDispatchDuration(t *testing.T) {
	clock := newFakeClock()
	perf := NewPerformance(zerolog.Nop(), PerformanceConfig{Enabled: true}, WithPerformanceClock(clock.Now))

	s := store.New(stubService{}, store.WithMiddleware(
		perf.Middleware(),
		delay(clock, map[string]time.Duration{
			store.ActionAddToCart:  2 * time.Millisecond,
			store.ActionToggleCart: 30 * time.Millisecond,
		}),
	))

	s.AddToCart(store.CartItem{ID: 1})
	s.AddToCart(store.CartItem{ID: 2})
	s.ToggleCart()

	metrics := perf.Metrics()
	if len(metrics) != 3 {
		t.Fatalf("expected 3 metrics, got %d", len(metrics))
	}
	if metrics[0].ActionType != store.ActionAddToCart || metrics[0].Duration != 2*time.Millisecond {
		t.Errorf("unexpected first metric %+v", metrics[0])
	}

	if got := perf.AverageTime(store.ActionAddToCart); got != 2*time.Millisecond {
		t.Errorf("AverageTime() = %v, want 2ms", got)
	}
	if got := perf.AverageTime("never/dispatched"); got != 0 {
		t.Errorf("AverageTime() of an unknown action = %v, want 0", got)
	}

	slow := perf.SlowActions(0)
	if len(slow) != 1 || slow[0].ActionType != store.ActionToggleCart {
		t.Errorf("expected only the toggle to be slow, got %+v", slow)
	}
	if got := perf.SlowActions(time.Millisecond); len(got) != 3 {
		t.Errorf("expected 3 actions above 1ms, got %d", len(got))
	}
}

func TestPerformance_CapacityEvictsOldest(t *testing.T) {
	perf := NewPerformance(zerolog.Nop(), PerformanceConfig{Enabled: true, Capacity: 3})

	for i, action := range []string{"a", "b", "c", "d", "e"} {
		perf.Record(action, time.Duration(i)*time.Millisecond)
	}

	metrics := perf.Metrics()
	if len(metrics) != 3 {
		t.Fatalf("expected 3 metrics, got %d", len(metrics))
	}
	for i, want := range []string{"c", "d", "e"} {
		if metrics[i].ActionType != want {
			t.Errorf("metric %d: expected %q, got %q", i, want, metrics[i].ActionType)
		}
	}
}

func TestPerformance_WarnsOnSlowAction(t *testing.T) {
	buf := &syncBuffer{}
	perf := NewPerformance(zerolog.New(buf), PerformanceConfig{Enabled: true, SlowThreshold: 5 * time.Millisecond})

	perf.Record("fast", time.Millisecond)
	perf.Record("slow", 20*time.Millisecond)

	lines := buf.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], `"action":"slow"`) {
		t.Errorf("expected one slow action warning, got %v", lines)
	}

	perf.Report()
	if !strings.Contains(buf.String(), "slow actions report") {
		t.Errorf("expected a report, got:\n%s", buf.String())
	}
}

func TestPerformance_Disabled(t *testing.T) {
	perf := NewPerformance(zerolog.Nop(), PerformanceConfig{Enabled: false})
	s := store.New(stubService{}, store.WithMiddleware(perf.Middleware()))

	s.AddToCart(store.CartItem{ID: 1})

	if got := len(perf.Metrics()); got != 0 {
		t.Errorf("disabled monitor recorded %d metrics", got)
	}
}
