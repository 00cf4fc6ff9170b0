// Package simdate holds the storefront-wide simulated date used to preview
// date-dependent promotions and prices.
package simdate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

const Layout = "2006-01-02"

// Parse validates a YYYY-MM-DD date.
func Parse(s string) (string, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(Layout), nil
}

type State struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	date *string
}

type Option func(*State)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// New restores the simulated date from store, defaulting to today when none
// is stored. The default is not written back.
func New(ctx context.Context, store storage.Store, logger *slog.Logger, opts ...Option) *State {
	s := &State{store: store, logger: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if v, ok, err := store.Get(ctx, storage.KeySimulatedDate); err != nil {
		s.logger.Warn("Failed to read simulated date", "error", err)
	} else if ok && v != "" {
		s.date = &v
	}
	if s.date == nil {
		today := s.Today()
		s.date = &today
	}
	return s
}

func (s *State) Today() string {
	return s.now().Format(Layout)
}

// Date returns the simulated date, or nil when there is no override.
func (s *State) Date() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.date == nil {
		return nil
	}
	d := *s.date
	return &d
}

// Value returns the simulated date or "".
func (s *State) Value() string {
	if d := s.Date(); d != nil {
		return *d
	}
	return ""
}

// Set updates the date and mirrors it to storage. nil or "" removes it.
func (s *State) Set(ctx context.Context, date *string) error {
	if date != nil && *date == "" {
		date = nil
	}

	s.mu.Lock()
	if date == nil {
		s.date = nil
	} else {
		d := *date
		s.date = &d
	}
	s.mu.Unlock()

	if date == nil {
		if err := s.store.Remove(ctx, storage.KeySimulatedDate); err != nil {
			return fmt.Errorf("remove simulated date: %w", err)
		}
		return nil
	}
	if err := s.store.Set(ctx, storage.KeySimulatedDate, *date); err != nil {
		return fmt.Errorf("store simulated date: %w", err)
	}
	return nil
}

func (s *State) ResetToToday(ctx context.Context) error {
	today := s.Today()
	return s.Set(ctx, &today)
}

// IsSimulated reports whether a date is set and differs from today.
func (s *State) IsSimulated() bool {
	d := s.Date()
	return d != nil && *d != s.Today()
}

// Apply takes a change observed from another instance. Only the simulated
// date key is honoured, and nothing is written back.
func (s *State) Apply(c storage.Change) bool {
	if c.Key != storage.KeySimulatedDate {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.NewValue == nil || *c.NewValue == "" {
		s.date = nil
	} else {
		v := *c.NewValue
		s.date = &v
	}
	s.logger.Info("Simulated date changed elsewhere", "date", c.NewValue)
	return true
}

// Sync applies changes from other instances until ctx is done. onChange, if
// set, runs after each applied change.
func (s *State) Sync(ctx context.Context, onChange func(date *string)) error {
	ch, err := s.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch storage: %w", err)
	}
	go func() {
		for c := range ch {
			if s.Apply(c) && onChange != nil {
				onChange(s.Date())
			}
		}
	}()
	return nil
}

// View is the JSON form of the state.
type View struct {
	SimulatedDate *string `json:"simulatedDate"`
	Today         string  `json:"today"`
	IsSimulated   bool    `json:"isSimulated"`
}

func (s *State) View() View {
	return View{SimulatedDate: s.Date(), Today: s.Today(), IsSimulated: s.IsSimulated()}
}
