package modules

import (
	"context"

	"github.com/Nixie-Tech-LLC/informator/internal/model"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
)

type ScheduleField string

const (
	FieldTime    ScheduleField = "time"
	FieldSubject ScheduleField = "subject"
	FieldRoom    ScheduleField = "room"
)

func (f ScheduleField) Valid() bool {
	switch f {
	case FieldTime, FieldSubject, FieldRoom:
		return true
	}
	return false
}

// Draft is a private copy of a module being edited. Nothing reaches the
// screen until Save; Discard drops the copy. A closed draft ignores every call.
type Draft struct {
	store    *Store
	screenID string
	module   model.ContentModule
	closed   bool
}

// Edit opens a draft on a copy of the module.
func (s *Store) Edit(screenID, moduleID string) (*Draft, bool) {
	m, ok := s.Module(screenID, moduleID)
	if !ok {
		s.logger.Debug().Str("screenID", screenID).Str("moduleID", moduleID).Msg("edit of unknown module ignored")
		return nil, false
	}
	return &Draft{store: s, screenID: screenID, module: m.Clone()}, true
}

// Module returns a copy of the draft's current state.
func (d *Draft) Module() model.ContentModule {
	return d.module.Clone()
}

func (d *Draft) Closed() bool {
	return d.closed
}

// SetData replaces the draft payload. The type of the module never changes.
func (d *Draft) SetData(data model.ModuleData) error {
	if d.closed {
		return nil
	}
	if err := model.CheckData(d.module.Type, data); err != nil {
		return err
	}
	d.module.Data = data.Clone()
	return nil
}

func (d *Draft) schedule() (model.ScheduleData, bool) {
	if d.closed {
		return model.ScheduleData{}, false
	}
	sd, ok := d.module.Data.(model.ScheduleData)
	return sd, ok
}

// AddScheduleItem appends the placeholder lesson. Reports false for
// non-schedule drafts.
func (d *Draft) AddScheduleItem() bool {
	sd, ok := d.schedule()
	if !ok {
		return false
	}
	sd.Items = append(sd.Items, render.NewScheduleItem)
	d.module.Data = sd
	return true
}

func (d *Draft) UpdateScheduleItem(i int, field ScheduleField, value string) bool {
	sd, ok := d.schedule()
	if !ok || i < 0 || i >= len(sd.Items) {
		return false
	}
	switch field {
	case FieldTime:
		sd.Items[i].Time = value
	case FieldSubject:
		sd.Items[i].Subject = value
	case FieldRoom:
		sd.Items[i].Room = value
	default:
		return false
	}
	return true
}

// RemoveScheduleItem deletes item i, shifting later items down.
func (d *Draft) RemoveScheduleItem(i int) bool {
	sd, ok := d.schedule()
	if !ok || i < 0 || i >= len(sd.Items) {
		return false
	}
	sd.Items = append(sd.Items[:i], sd.Items[i+1:]...)
	d.module.Data = sd
	return true
}

// Save commits the draft over the stored module and closes it.
// A module removed since Edit is left removed.
func (d *Draft) Save(ctx context.Context) error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.store.UpdateModule(ctx, d.screenID, d.module.ID, d.module.Data)
}

func (d *Draft) Discard() {
	d.closed = true
}
