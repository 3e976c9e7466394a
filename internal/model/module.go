package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ModuleType string

const (
	TypeText     ModuleType = "text"
	TypeImage    ModuleType = "image"
	TypeWeather  ModuleType = "weather"
	TypeTime     ModuleType = "time"
	TypeSchedule ModuleType = "schedule"
)

// ErrTypeMismatch is returned when a payload does not belong to the module's type.
var ErrTypeMismatch = errors.New("payload does not match module type")

// ContentModule is one unit of content placed on a screen.
type ContentModule struct {
	ID   string     `json:"id"`
	Type ModuleType `json:"type"`
	Data ModuleData `json:"data"`
}

// ModuleData is the type-specific payload of a module.
type ModuleData interface {
	ModuleType() ModuleType
	Clone() ModuleData
}

type TextData struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ImageData struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type WeatherData struct {
	Location  string `json:"location"`
	Temp      string `json:"temp,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// TimeData has no fields, the clock is rendered from the wall clock.
type TimeData struct{}

type ScheduleData struct {
	Items []ScheduleItem `json:"items"`
}

type ScheduleItem struct {
	Time    string `json:"time"` // "HH:MM"
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

// UnknownData keeps the raw payload of a module with an unrecognised type tag.
type UnknownData struct {
	Kind ModuleType
	Raw  json.RawMessage
}

func (TextData) ModuleType() ModuleType { return TypeText }
func (ImageData) ModuleType() ModuleType { return TypeImage }
func (WeatherData) ModuleType() ModuleType { return TypeWeather }
func (TimeData) ModuleType() ModuleType { return TypeTime }
func (ScheduleData) ModuleType() ModuleType { return TypeSchedule }
func (u UnknownData) ModuleType() ModuleType { return u.Kind }

func (d TextData) Clone() ModuleData { return d }
func (d ImageData) Clone() ModuleData { return d }
func (d WeatherData) Clone() ModuleData { return d }
func (d TimeData) Clone() ModuleData { return d }

func (d ScheduleData) Clone() ModuleData {
	items := make([]ScheduleItem, len(d.Items))
	copy(items, d.Items)
	return ScheduleData{Items: items}
}

func (u UnknownData) Clone() ModuleData {
	raw := make(json.RawMessage, len(u.Raw))
	copy(raw, u.Raw)
	return UnknownData{Kind: u.Kind, Raw: raw}
}

func (u UnknownData) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("{}"), nil
	}
	return u.Raw, nil
}

func (d ScheduleData) MarshalJSON() ([]byte, error) {
	items := d.Items
	if items == nil {
		items = []ScheduleItem{}
	}
	return json.Marshal(struct {
		Items []ScheduleItem `json:"items"`
	}{items})
}

// IsKnown reports whether t is one of the module types the system can create.
func (t ModuleType) IsKnown() bool {
	switch t {
	case TypeText, TypeImage, TypeWeather, TypeTime, TypeSchedule:
		return true
	}
	return false
}

// Clone returns a deep copy of the module.
func (m ContentModule) Clone() ContentModule {
	out := m
	if m.Data != nil {
		out.Data = m.Data.Clone()
	}
	return out
}

// CloneModules deep-copies a module list. The result is never nil.
func CloneModules(mods []ContentModule) []ContentModule {
	out := make([]ContentModule, len(mods))
	for i, m := range mods {
		out[i] = m.Clone()
	}
	return out
}

// CheckData verifies that data may be stored in a module of type t.
func CheckData(t ModuleType, data ModuleData) error {
	if data == nil || data.ModuleType() != t {
		return fmt.Errorf("%w: module is %q", ErrTypeMismatch, t)
	}
	return nil
}

func (m ContentModule) MarshalJSON() ([]byte, error) {
	var data any = m.Data
	if m.Data == nil {
		data = struct{}{}
	}
	return json.Marshal(struct {
		ID   string     `json:"id"`
		Type ModuleType `json:"type"`
		Data any        `json:"data"`
	}{m.ID, m.Type, data})
}

func (m *ContentModule) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   string          `json:"id"`
		Type ModuleType      `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := DecodeData(raw.Type, raw.Data)
	if err != nil {
		return fmt.Errorf("module %s: %w", raw.ID, err)
	}
	m.ID = raw.ID
	m.Type = raw.Type
	m.Data = data
	return nil
}

// DecodeData parses a payload according to its type tag.
func DecodeData(t ModuleType, b json.RawMessage) (ModuleData, error) {
	if len(b) == 0 || string(b) == "null" {
		b = json.RawMessage("{}")
	}
	switch t {
	case TypeText:
		var d TextData
		err := json.Unmarshal(b, &d)
		return d, err
	case TypeImage:
		var d ImageData
		err := json.Unmarshal(b, &d)
		return d, err
	case TypeWeather:
		var d WeatherData
		err := json.Unmarshal(b, &d)
		return d, err
	case TypeTime:
		return TimeData{}, nil
	case TypeSchedule:
		var d ScheduleData
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, err
		}
		if d.Items == nil {
			d.Items = []ScheduleItem{}
		}
		return d, nil
	default:
		raw := make(json.RawMessage, len(b))
		copy(raw, b)
		return UnknownData{Kind: t, Raw: raw}, nil
	}
}
