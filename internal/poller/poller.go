// Package poller keeps a display session in sync with its screen's per-pin key.
package poller

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/bus"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/model"
)

const DefaultInterval = time.Second

// GeneratePIN returns a random six digit pin. Collisions with bound pins are
// not checked.
func GeneratePIN() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// Snapshot is what a display shows at one moment.
type Snapshot struct {
	PIN       string                `json:"pin"`
	Connected bool                  `json:"connected"`
	Modules   []model.ContentModule `json:"modules"`
}

type Session struct {
	store    kv.Store
	pin      string
	interval time.Duration
	sub      bus.Subscriber
	logger   *zerolog.Logger

	mu        sync.RWMutex
	connected bool
	modules   []model.ContentModule

	updates chan Snapshot
}

type Option func(*Session)

func WithPIN(pin string) Option {
	return func(s *Session) { s.pin = pin }
}

func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSubscriber wakes the session on change announcements in addition to the
// interval timer.
func WithSubscriber(sub bus.Subscriber) Option {
	return func(s *Session) { s.sub = sub }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = &l }
}

func NewSession(store kv.Store, opts ...Option) *Session {
	s := &Session{
		store:    store,
		interval: DefaultInterval,
		modules:  []model.ContentModule{},
		updates:  make(chan Snapshot, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pin == "" {
		s.pin = GeneratePIN()
	}
	if s.logger == nil {
		l := log.With().Str("component", "poller").Str("pin", s.pin).Logger()
		s.logger = &l
	}
	return s
}

func (s *Session) PIN() string {
	return s.pin
}

// Connected reports whether a read has ever succeeded. It never reverts.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Session) Modules() []model.ContentModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneModules(s.modules)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{PIN: s.pin, Connected: s.connected, Modules: model.CloneModules(s.modules)}
}

// Updates delivers the latest snapshot after every applied read.
// Only the newest pending snapshot is kept.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Run reads immediately, then on every tick and every change announcement,
// until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var signals <-chan struct{}
	if s.sub != nil {
		ch, cancel := s.sub.Subscribe(s.pin)
		defer cancel()
		signals = ch
	}

	s.logger.Info().Dur("interval", s.interval).Msg("display session started")
	s.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("display session stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		case _, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			s.Poll(ctx)
		}
	}
}

// Poll performs one read of the per-pin key. It reports whether the session
// state was replaced.
func (s *Session) Poll(ctx context.Context) bool {
	raw, ok, err := s.store.Get(ctx, kv.ScreenKey(s.pin))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read screen")
		return false
	}
	if !ok {
		return s.clear()
	}

	var snap model.ScreenSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode screen")
		return false
	}
	if snap.Modules == nil {
		snap.Modules = []model.ContentModule{}
	}

	s.mu.Lock()
	if !s.connected {
		s.logger.Info().Msg("display connected")
	}
	s.connected = true
	s.modules = snap.Modules
	out := Snapshot{PIN: s.pin, Connected: true, Modules: model.CloneModules(s.modules)}
	s.mu.Unlock()

	s.publish(out)
	return true
}

// clear handles an absent key. Before the first read nothing changes; after
// it, the screen was deleted and the display shows no modules but stays
// connected.
func (s *Session) clear() bool {
	s.mu.Lock()
	if !s.connected || len(s.modules) == 0 {
		s.mu.Unlock()
		s.logger.Debug().Msg("screen not bound")
		return false
	}
	s.modules = []model.ContentModule{}
	out := Snapshot{PIN: s.pin, Connected: true, Modules: []model.ContentModule{}}
	s.mu.Unlock()

	s.logger.Info().Msg("screen unbound, clearing modules")
	s.publish(out)
	return true
}

func (s *Session) publish(snap Snapshot) {
	for {
		select {
		case s.updates <- snap:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}
