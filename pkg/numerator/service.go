// Package numerator provides document auto-numbering.
// Numbers follow the pattern PREFIX + period + counter, e.g. PO202602180001.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict takes one UPSERT ... RETURNING round trip per number.
	// Sequential and gap-free, the right choice for accounting documents.
	StrategyStrict Strategy = iota

	// StrategyCached reserves whole ranges in memory. Much faster, but a
	// restart abandons the unused tail of the range, leaving gaps.
	StrategyCached
)

// Options configure number generation.
type Options struct {
	Strategy Strategy

	// RangeSize is how many numbers a cached reservation claims at once.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "PO", "TRF")
	Prefix string

	// PadWidth is the minimum counter width (default 4)
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never"
	ResetPeriod string
}

// DefaultConfig returns the standard day-scoped configuration, producing
// numbers like PO202602180001.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, PadWidth: 4, ResetPeriod: "day"}
}

// periodLayouts maps a reset period to the time layouts used in the
// sequence key and in the rendered number.
var periodLayouts = map[string]struct{ key, number string }{
	"day":   {"2006_01_02", "20060102"},
	"month": {"2006_01", "200601"},
	"year":  {"2006", "2006"},
}

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service provides document numbering.
type Service struct {
	querier Querier

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next document number for the period.
func (s *Service) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := sequenceKey(cfg, period)

	var (
		num int64
		err error
	)
	if opts.Strategy == StrategyCached {
		num, err = s.nextCached(ctx, key, opts)
	} else {
		num, err = s.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return renderNumber(cfg, period, num), nil
}

// nextStrict fetches the next number directly from DB using UPSERT + RETURNING.
func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// nextCached serves numbers from the in-memory range, reserving a fresh
// range from the database when the current one runs dry.
func (s *Service) nextCached(ctx context.Context, key string, opts *Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		// current_val tracks the last allocated number, so bumping it by
		// size reserves the range (old_val+1 .. old_val+size).
		var newMax int64
		err := s.querier.QueryRow(ctx, `
            INSERT INTO sys_sequences (key, current_val)
            VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
            RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber overwrites the counter value, for migrations and manual
// corrections. Any cached range for the key is discarded.
func (s *Service) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := sequenceKey(cfg, period)

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	return err
}

func sequenceKey(cfg Config, period time.Time) string {
	layout, ok := periodLayouts[cfg.ResetPeriod]
	if !ok {
		return cfg.Prefix
	}
	return cfg.Prefix + "_" + period.Format(layout.key)
}

func renderNumber(cfg Config, period time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad == 0 {
		pad = 4
	}

	layout, ok := periodLayouts[cfg.ResetPeriod]
	if !ok {
		return fmt.Sprintf("%s%0*d", cfg.Prefix, pad, num)
	}
	return fmt.Sprintf("%s%s%0*d", cfg.Prefix, period.Format(layout.number), pad, num)
}
