package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentModule_DecodesPayloadByType(t *testing.T) {
	raw := `[
		{"id":"1","type":"text","data":{"title":"T","content":"C"}},
		{"id":"2","type":"weather","data":{"location":"Москва"}},
		{"id":"3","type":"time","data":{}},
		{"id":"4","type":"schedule","data":{"items":[{"time":"09:00","subject":"S","room":"R"}]}},
		{"id":"5","type":"marquee","data":{"speed":3}}
	]`

	var mods []ContentModule
	require.NoError(t, json.Unmarshal([]byte(raw), &mods))
	require.Len(t, mods, 5)

	assert.Equal(t, TextData{Title: "T", Content: "C"}, mods[0].Data)
	assert.Equal(t, WeatherData{Location: "Москва"}, mods[1].Data)
	assert.Equal(t, TimeData{}, mods[2].Data)
	assert.Equal(t, ScheduleData{Items: []ScheduleItem{{Time: "09:00", Subject: "S", Room: "R"}}}, mods[3].Data)

	unknown, ok := mods[4].Data.(UnknownData)
	require.True(t, ok)
	assert.Equal(t, ModuleType("marquee"), unknown.ModuleType())
	assert.JSONEq(t, `{"speed":3}`, string(unknown.Raw))
}

func TestContentModule_UnknownTypeSurvivesRoundTrip(t *testing.T) {
	in := `{"id":"x","type":"ticker","data":{"text":"hello","speed":2}}`

	var m ContentModule
	require.NoError(t, json.Unmarshal([]byte(in), &m))
	out, err := json.Marshal(m)
	require.NoError(t, err)

	assert.JSONEq(t, in, string(out))
}

func TestWeatherData_OmitsEmptyOptionalFields(t *testing.T) {
	out, err := json.Marshal(WeatherData{Location: "Москва"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Москва"}`, string(out))
}

func TestScheduleData_EmptyItemsEncodeAsArray(t *testing.T) {
	out, err := json.Marshal(ContentModule{ID: "s", Type: TypeSchedule, Data: ScheduleData{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s","type":"schedule","data":{"items":[]}}`, string(out))
}

func TestClone_SchedulesDoNotShareItems(t *testing.T) {
	orig := ContentModule{ID: "s", Type: TypeSchedule, Data: ScheduleData{Items: []ScheduleItem{{Time: "09:00"}}}}

	cp := orig.Clone()
	cp.Data.(ScheduleData).Items[0].Time = "23:59"

	assert.Equal(t, "09:00", orig.Data.(ScheduleData).Items[0].Time)
}

func TestScreen_CloneCopiesModules(t *testing.T) {
	s := Screen{ID: "a", PIN: "123456", Modules: []ContentModule{{ID: "m", Type: TypeText, Data: TextData{Title: "x"}}}}

	cp := s.Clone()
	cp.Modules[0].ID = "changed"

	assert.Equal(t, "m", s.Modules[0].ID)
}

func TestCheckData(t *testing.T) {
	assert.NoError(t, CheckData(TypeText, TextData{}))
	assert.ErrorIs(t, CheckData(TypeText, ImageData{}), ErrTypeMismatch)
	assert.ErrorIs(t, CheckData(TypeTime, nil), ErrTypeMismatch)
}
