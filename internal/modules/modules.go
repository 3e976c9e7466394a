// Package modules edits the content modules assigned to a screen.
package modules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/model"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
)

var ErrUnknownModuleType = errors.New("unknown module type")

// Screens is the part of the registry the module store writes through.
type Screens interface {
	Get(id string) (model.Screen, bool)
	UpdateModules(ctx context.Context, id string, fn func([]model.ContentModule) ([]model.ContentModule, bool)) (bool, error)
}

var _ Screens = (*registry.Registry)(nil)

type Store struct {
	screens Screens
	newID   func() string
	logger  zerolog.Logger
}

type Option func(*Store)

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(screens Screens, opts ...Option) *Store {
	s := &Store{
		screens: screens,
		newID:   uuid.NewString,
		logger:  log.With().Str("component", "modules").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddModule appends a module of type t filled from its template.
// A stale screen id returns nil, nil.
func (s *Store) AddModule(ctx context.Context, screenID string, t model.ModuleType) (*model.ContentModule, error) {
	data, ok := render.Template(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleType, t)
	}

	m := model.ContentModule{ID: s.newID(), Type: t, Data: data}
	found, err := s.screens.UpdateModules(ctx, screenID, func(mods []model.ContentModule) ([]model.ContentModule, bool) {
		return append(mods, m.Clone()), true
	})
	if !found {
		return nil, err
	}

	s.logger.Info().Str("screenID", screenID).Str("moduleID", m.ID).Str("type", string(t)).Msg("module added")
	return &m, err
}

// UpdateModule replaces the payload of a module wholesale.
func (s *Store) UpdateModule(ctx context.Context, screenID, moduleID string, data model.ModuleData) error {
	var mismatch error
	_, err := s.screens.UpdateModules(ctx, screenID, func(mods []model.ContentModule) ([]model.ContentModule, bool) {
		i := indexOf(mods, moduleID)
		if i < 0 {
			s.logger.Debug().Str("screenID", screenID).Str("moduleID", moduleID).Msg("update of unknown module ignored")
			return mods, false
		}
		if mismatch = model.CheckData(mods[i].Type, data); mismatch != nil {
			return mods, false
		}
		mods[i].Data = data.Clone()
		return mods, true
	})
	if mismatch != nil {
		return mismatch
	}
	return err
}

func (s *Store) RemoveModule(ctx context.Context, screenID, moduleID string) error {
	_, err := s.screens.UpdateModules(ctx, screenID, func(mods []model.ContentModule) ([]model.ContentModule, bool) {
		i := indexOf(mods, moduleID)
		if i < 0 {
			s.logger.Debug().Str("screenID", screenID).Str("moduleID", moduleID).Msg("removal of unknown module ignored")
			return mods, false
		}
		return append(mods[:i], mods[i+1:]...), true
	})
	return err
}

// Reorder moves dragged to the index target held before the move.
// Equal ids or a missing id leave the list unchanged.
func (s *Store) Reorder(ctx context.Context, screenID, draggedID, targetID string) error {
	if draggedID == targetID {
		return nil
	}
	_, err := s.screens.UpdateModules(ctx, screenID, func(mods []model.ContentModule) ([]model.ContentModule, bool) {
		return Move(mods, draggedID, targetID)
	})
	return err
}

// Move removes dragged and reinserts it at target's original index.
func Move(mods []model.ContentModule, draggedID, targetID string) ([]model.ContentModule, bool) {
	from, to := indexOf(mods, draggedID), indexOf(mods, targetID)
	if from < 0 || to < 0 || from == to {
		return mods, false
	}

	dragged := mods[from]
	out := make([]model.ContentModule, 0, len(mods))
	out = append(out, mods[:from]...)
	out = append(out, mods[from+1:]...)

	out = append(out, model.ContentModule{})
	copy(out[to+1:], out[to:])
	out[to] = dragged
	return out, true
}

// Modules returns a copy of the screen's module list, nil for a stale id.
func (s *Store) Modules(screenID string) []model.ContentModule {
	screen, ok := s.screens.Get(screenID)
	if !ok {
		return nil
	}
	return screen.Modules
}

func (s *Store) Module(screenID, moduleID string) (model.ContentModule, bool) {
	mods := s.Modules(screenID)
	i := indexOf(mods, moduleID)
	if i < 0 {
		return model.ContentModule{}, false
	}
	return mods[i], true
}

func indexOf(mods []model.ContentModule, id string) int {
	for i := range mods {
		if mods[i].ID == id {
			return i
		}
	}
	return -1
}
