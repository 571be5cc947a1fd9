package attempts_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/quaydesk/quay/internal/attempts"
)

var hexKey = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestThreadKey(t *testing.T) {
	t.Run("output shape", func(t *testing.T) {
		key := attempts.ThreadKey("Quote for brass fittings")
		if !hexKey.MatchString(key) {
			t.Errorf("key = %q, want 32 hex chars", key)
		}
	})

	t.Run("stable across calls", func(t *testing.T) {
		a := attempts.ThreadKey("Quote for brass fittings")
		b := attempts.ThreadKey("Quote for brass fittings")
		if a != b {
			t.Errorf("same subject produced %q and %q", a, b)
		}
	})

	t.Run("distinct subjects differ", func(t *testing.T) {
		a := attempts.ThreadKey("Quote for brass fittings")
		b := attempts.ThreadKey("Quote for steel pipes")
		if a == b {
			t.Error("distinct subjects collided")
		}
	})

	equivalent := []struct {
		name string
		a, b string
	}{
		{"reply prefix", "Re: Quote for brass fittings", "Quote for brass fittings"},
		{"forward prefix", "Fwd: Quote for brass fittings", "Quote for brass fittings"},
		{"stacked prefixes", "Re: FW: Re: Quote for brass fittings", "Quote for brass fittings"},
		{"localized prefix", "AW: Quote for brass fittings", "Quote for brass fittings"},
		{"tracking token brackets", "Quote for brass fittings [#4821]", "Quote for brass fittings"},
		{"tracking token braces", "Quote for brass fittings {#ZD-99}", "Quote for brass fittings"},
		{"case folding", "QUOTE FOR BRASS FITTINGS", "quote for brass fittings"},
		{"whitespace collapse", "Quote  for   brass\tfittings", "Quote for brass fittings"},
		{"surrounding whitespace", "  Quote for brass fittings  ", "Quote for brass fittings"},
	}

	for _, tc := range equivalent {
		t.Run(tc.name, func(t *testing.T) {
			if ka, kb := attempts.ThreadKey(tc.a), attempts.ThreadKey(tc.b); ka != kb {
				t.Errorf("ThreadKey(%q) = %q, ThreadKey(%q) = %q, want equal", tc.a, ka, tc.b, kb)
			}
		})
	}

	t.Run("prefix only stripped at start", func(t *testing.T) {
		a := attempts.ThreadKey("Parts re: order 12")
		b := attempts.ThreadKey("Parts order 12")
		if a == b {
			t.Error("mid-subject re: was stripped")
		}
	})
}

func TestMemoryGet(t *testing.T) {
	store := attempts.NewMemory()
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, attempts.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("after increment", func(t *testing.T) {
		if _, _, err := store.Increment(ctx, "thread-1", 3); err != nil {
			t.Fatalf("increment: %v", err)
		}

		record, err := store.Get(ctx, "thread-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if record.Attempts != 1 {
			t.Errorf("attempts = %d, want 1", record.Attempts)
		}
		if record.Key != "thread-1" {
			t.Errorf("key = %q, want thread-1", record.Key)
		}
		if record.FirstSeen.IsZero() || record.LastSeen.IsZero() {
			t.Error("timestamps not set")
		}
	})
}

func TestMemoryIncrement(t *testing.T) {
	store := attempts.NewMemory()
	ctx := context.Background()

	t.Run("counts up to the ceiling", func(t *testing.T) {
		for i := 1; i <= 2; i++ {
			record, allowed, err := store.Increment(ctx, "thread-2", 2)
			if err != nil {
				t.Fatalf("increment %d: %v", i, err)
			}
			if !allowed {
				t.Errorf("increment %d not allowed", i)
			}
			if record.Attempts != i {
				t.Errorf("increment %d: attempts = %d", i, record.Attempts)
			}
		}
	})

	t.Run("refuses past the ceiling", func(t *testing.T) {
		record, allowed, err := store.Increment(ctx, "thread-2", 2)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if allowed {
			t.Error("increment past ceiling allowed")
		}
		if record.Attempts != 2 {
			t.Errorf("attempts = %d, refused increment must not bump the counter", record.Attempts)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		record, allowed, err := store.Increment(ctx, "thread-3", 2)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if !allowed || record.Attempts != 1 {
			t.Errorf("fresh key: allowed = %v, attempts = %d", allowed, record.Attempts)
		}
	})
}

func TestMemoryIncrementConcurrent(t *testing.T) {
	store := attempts.NewMemory()
	ctx := context.Background()
	const workers = 32
	const max = 3

	var wg sync.WaitGroup
	var allowedCount atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, allowed, err := store.Increment(ctx, "thread-race", max)
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			if allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowedCount.Load(); got != max {
		t.Errorf("allowed increments = %d, want exactly %d", got, max)
	}

	record, err := store.Get(ctx, "thread-race")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Attempts != max {
		t.Errorf("attempts = %d, racing submissions must not pass %d", record.Attempts, max)
	}
}

func TestMemoryRecordCodes(t *testing.T) {
	store := attempts.NewMemory()
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		err := store.RecordCodes(ctx, "missing", []string{"84713000"})
		if !errors.Is(err, attempts.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty codes is a no-op", func(t *testing.T) {
		if err := store.RecordCodes(ctx, "missing", nil); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("appends across attempts", func(t *testing.T) {
		if _, _, err := store.Increment(ctx, "thread-4", 3); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if err := store.RecordCodes(ctx, "thread-4", []string{"84713000"}); err != nil {
			t.Fatalf("record codes: %v", err)
		}
		if err := store.RecordCodes(ctx, "thread-4", []string{"84714100", "61091000"}); err != nil {
			t.Fatalf("record codes: %v", err)
		}

		record, err := store.Get(ctx, "thread-4")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		want := []string{"84713000", "84714100", "61091000"}
		if len(record.PriorCodes) != len(want) {
			t.Fatalf("prior codes = %v, want %v", record.PriorCodes, want)
		}
		for i, code := range want {
			if record.PriorCodes[i] != code {
				t.Errorf("prior codes[%d] = %q, want %q", i, record.PriorCodes[i], code)
			}
		}
	})
}

func TestMemorySnapshotIsolation(t *testing.T) {
	store := attempts.NewMemory()
	ctx := context.Background()

	if _, _, err := store.Increment(ctx, "thread-5", 3); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.RecordCodes(ctx, "thread-5", []string{"84713000"}); err != nil {
		t.Fatalf("record codes: %v", err)
	}

	record, err := store.Get(ctx, "thread-5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	record.Attempts = 99
	record.PriorCodes[0] = "mutated"

	fresh, err := store.Get(ctx, "thread-5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Attempts != 1 {
		t.Errorf("attempts = %d, caller mutation leaked into store", fresh.Attempts)
	}
	if fresh.PriorCodes[0] != "84713000" {
		t.Errorf("prior codes = %v, caller mutation leaked into store", fresh.PriorCodes)
	}
}
