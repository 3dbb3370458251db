package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type fakeRow struct {
	val int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

// fakeSequence mimics the sys_sequences upsert: strict calls bump by one,
// cached calls bump by the requested range size, SetNextNumber overwrites.
type fakeSequence struct {
	mu  sync.Mutex
	val int64
}

func (f *fakeSequence) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(args) == 2 {
		n, _ := args[1].(int64)
		// SetNextNumber is the only query assigning current_val = $2 directly.
		if strings.Contains(sql, "SET current_val = $2") {
			f.val = n
		} else {
			f.val += n
		}
	} else {
		f.val++
	}
	return &fakeRow{val: f.val}
}

func feb18() time.Time {
	return time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
}

func TestStrictNumbersAreSequential(t *testing.T) {
	svc := New(&fakeSequence{})
	cfg := DefaultConfig("PO")

	for i, want := range []string{"PO202602180001", "PO202602180002", "PO202602180003"} {
		got, err := svc.GetNextNumber(context.Background(), cfg, nil, feb18())
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestCachedReservesRanges(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	cfg := DefaultConfig("TRF")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	next := func() string {
		t.Helper()
		got, err := svc.GetNextNumber(context.Background(), cfg, opts, feb18())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}

	// First call reserves 1..10 in one round trip.
	if got := next(); got != "TRF202602180001" {
		t.Errorf("expected TRF202602180001, got %s", got)
	}
	if seq.val != 10 {
		t.Errorf("expected reservation to advance sequence to 10, got %d", seq.val)
	}

	// Second call is served from memory.
	if got := next(); got != "TRF202602180002" {
		t.Errorf("expected TRF202602180002, got %s", got)
	}
	if seq.val != 10 {
		t.Errorf("expected sequence to stay at 10, got %d", seq.val)
	}

	// Exhaust the range; the 11th call reserves 11..20.
	for i := 0; i < 8; i++ {
		next()
	}
	if got := next(); got != "TRF202602180011" {
		t.Errorf("expected TRF202602180011, got %s", got)
	}
	if seq.val != 20 {
		t.Errorf("expected second reservation to reach 20, got %d", seq.val)
	}
}

func TestPeriodScopesTheKey(t *testing.T) {
	svc := New(&fakeSequence{})
	cfg := DefaultConfig("SO")

	// A new day formats a fresh date segment. The fake keeps one global
	// counter, so only the date portion changes here.
	got, err := svc.GetNextNumber(context.Background(), cfg, nil, feb18().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SO202602190001" {
		t.Errorf("expected SO202602190001, got %s", got)
	}
}

func TestNeverResetOmitsPeriod(t *testing.T) {
	svc := New(&fakeSequence{})
	cfg := Config{Prefix: "ADJ", PadWidth: 6, ResetPeriod: "never"}

	got, err := svc.GetNextNumber(context.Background(), cfg, nil, feb18())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ADJ000001" {
		t.Errorf("expected ADJ000001, got %s", got)
	}
}

func TestSetNextNumberOverridesCounter(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	cfg := DefaultConfig("PO")

	if err := svc.SetNextNumber(context.Background(), cfg, feb18(), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetNextNumber(context.Background(), cfg, nil, feb18())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "PO202602180501" {
		t.Errorf("expected PO202602180501, got %s", got)
	}
}
