// Package registry owns the table of screens known to the admin surface.
//
// The in-memory table is authoritative for the running process. Every
// mutation rewrites the full registry key and every per-pin key in the
// shared store while holding the table lock, then announces the touched pins
// on the change bus once the lock is released.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/bus"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/model"
)

var (
	ErrInvalidPin   = errors.New("pin must be exactly 6 digits")
	ErrDuplicatePin = errors.New("pin is already bound to a screen")
	ErrStorage      = errors.New("failed to persist screens")
)

const PinLength = 6

// ValidPIN reports whether pin is exactly six ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

type Registry struct {
	mu      sync.Mutex
	screens []model.Screen
	store   kv.Store
	notify  bus.Notifier
	newID   func() string
	logger  zerolog.Logger
}

type Option func(*Registry)

func WithNotifier(n bus.Notifier) Option {
	return func(r *Registry) { r.notify = n }
}

func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func New(store kv.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		notify: bus.Nop{},
		newID:  uuid.NewString,
		logger: log.With().Str("component", "registry").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the table with the screens saved under kv.RegistryKey.
// A missing key leaves the registry empty.
func (r *Registry) Load(ctx context.Context) error {
	raw, ok, err := r.store.Get(ctx, kv.RegistryKey)
	if err != nil {
		return fmt.Errorf("failed to read screens: %w", err)
	}
	if !ok {
		return nil
	}

	var screens []model.Screen
	if err := json.Unmarshal([]byte(raw), &screens); err != nil {
		return fmt.Errorf("failed to decode screens: %w", err)
	}
	for i := range screens {
		if screens[i].Modules == nil {
			screens[i].Modules = []model.ContentModule{}
		}
	}

	r.mu.Lock()
	r.screens = screens
	r.mu.Unlock()

	r.logger.Info().Int("screens", len(screens)).Msg("registry loaded")
	return nil
}

// Connect binds a new online screen to pin.
func (r *Registry) Connect(ctx context.Context, pin string) (*model.Screen, error) {
	if !ValidPIN(pin) {
		return nil, ErrInvalidPin
	}

	var touched []string
	defer func() { r.announce(ctx, touched) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByPIN(pin) >= 0 {
		return nil, ErrDuplicatePin
	}

	s := model.Screen{
		ID:      r.newID(),
		PIN:     pin,
		Name:    fmt.Sprintf("Screen %d", len(r.screens)+1),
		Status:  model.StatusOnline,
		Modules: []model.ContentModule{},
	}
	r.screens = append(r.screens, s)

	r.logger.Info().Str("screenID", s.ID).Str("pin", pin).Msg("screen connected")

	touched = []string{pin}
	out := s.Clone()
	return &out, r.commit(ctx, nil)
}

// Rename sets the display name of a screen. A stale id returns nil, nil.
func (r *Registry) Rename(ctx context.Context, id, name string) (*model.Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		r.logger.Debug().Str("screenID", id).Msg("rename of unknown screen ignored")
		return nil, nil
	}
	r.screens[i].Name = name

	out := r.screens[i].Clone()
	return &out, r.commit(ctx, nil)
}

// Delete removes a screen and its per-pin key. A stale id is a no-op.
func (r *Registry) Delete(ctx context.Context, id string) error {
	var touched []string
	defer func() { r.announce(ctx, touched) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		r.logger.Debug().Str("screenID", id).Msg("delete of unknown screen ignored")
		return nil
	}
	pin := r.screens[i].PIN
	r.screens = append(r.screens[:i], r.screens[i+1:]...)

	r.logger.Info().Str("screenID", id).Str("pin", pin).Msg("screen deleted")
	touched = []string{pin}
	return r.commit(ctx, []string{pin})
}

// UpdateModules hands fn a copy of the screen's module list. When fn reports
// a change, the returned list replaces the screen's modules and is persisted.
// found is false for a stale id.
func (r *Registry) UpdateModules(ctx context.Context, id string, fn func([]model.ContentModule) ([]model.ContentModule, bool)) (found bool, err error) {
	var touched []string
	defer func() { r.announce(ctx, touched) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		r.logger.Debug().Str("screenID", id).Msg("module change on unknown screen ignored")
		return false, nil
	}

	next, changed := fn(model.CloneModules(r.screens[i].Modules))
	if !changed {
		return true, nil
	}
	if next == nil {
		next = []model.ContentModule{}
	}
	r.screens[i].Modules = next
	touched = []string{r.screens[i].PIN}
	return true, r.commit(ctx, nil)
}

// List returns copies of every screen in insertion order.
func (r *Registry) List() []model.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Screen, len(r.screens))
	for i, s := range r.screens {
		out[i] = s.Clone()
	}
	return out
}

func (r *Registry) Get(id string) (model.Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return model.Screen{}, false
	}
	return r.screens[i].Clone(), true
}

func (r *Registry) ByPIN(pin string) (model.Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByPIN(pin)
	if i < 0 {
		return model.Screen{}, false
	}
	return r.screens[i].Clone(), true
}

func (r *Registry) indexByID(id string) int {
	for i := range r.screens {
		if r.screens[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) indexByPIN(pin string) int {
	for i := range r.screens {
		if r.screens[i].PIN == pin {
			return i
		}
	}
	return -1
}

// commit persists the table. Must hold r.mu.
func (r *Registry) commit(ctx context.Context, removed []string) error {
	err := r.persist(ctx, removed)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to persist screens")
	}
	return err
}

// announce publishes change hints for pins. Must not hold r.mu.
func (r *Registry) announce(ctx context.Context, pins []string) {
	for _, pin := range pins {
		if err := r.notify.Notify(ctx, pin); err != nil {
			r.logger.Warn().Err(err).Str("pin", pin).Msg("failed to announce screen change")
		}
	}
}

func (r *Registry) persist(ctx context.Context, removed []string) error {
	all, err := json.Marshal(r.screens)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if r.screens == nil {
		all = []byte("[]")
	}
	if err := r.store.Set(ctx, kv.RegistryKey, string(all)); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	for _, s := range r.screens {
		snap, err := json.Marshal(model.ScreenSnapshot{Modules: s.Modules})
		if err != nil {
			return fmt.Errorf("%w: screen %s: %w", ErrStorage, s.PIN, err)
		}
		if err := r.store.Set(ctx, kv.ScreenKey(s.PIN), string(snap)); err != nil {
			return fmt.Errorf("%w: screen %s: %w", ErrStorage, s.PIN, err)
		}
	}

	for _, pin := range removed {
		if err := r.store.Remove(ctx, kv.ScreenKey(pin)); err != nil {
			return fmt.Errorf("%w: screen %s: %w", ErrStorage, pin, err)
		}
	}
	return nil
}
