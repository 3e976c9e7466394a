package render

import "github.com/Nixie-Tech-LLC/informator/internal/model"

// TypeInfo describes a module type offered to the admin.
type TypeInfo struct {
	Type  model.ModuleType `json:"type"`
	Label string           `json:"label"`
	Icon  string           `json:"icon"`
}

var types = []TypeInfo{
	{Type: model.TypeText, Label: "Текст", Icon: "Type"},
	{Type: model.TypeImage, Label: "Изображение", Icon: "Image"},
	{Type: model.TypeWeather, Label: "Погода", Icon: "CloudRain"},
	{Type: model.TypeTime, Label: "Часы", Icon: "Clock"},
	{Type: model.TypeSchedule, Label: "Расписание", Icon: "Calendar"},
}

var templates = map[model.ModuleType]model.ModuleData{
	model.TypeText: model.TextData{
		Title:   "Заголовок",
		Content: "Текст сообщения",
	},
	model.TypeImage: model.ImageData{
		URL: "https://cdn.poehali.dev/files/9c83f3d9-b448-4541-a381-2fe8e05356b1.jpg",
		Alt: "Изображение",
	},
	model.TypeWeather: model.WeatherData{
		Location: "Москва",
	},
	model.TypeTime: model.TimeData{},
	model.TypeSchedule: model.ScheduleData{
		Items: []model.ScheduleItem{
			{Time: "09:00", Subject: "Русский язык", Room: "каб. 207"},
			{Time: "10:00", Subject: "Математика", Room: "каб. 215"},
		},
	},
}

// NewScheduleItem is the placeholder appended when the admin adds a lesson.
var NewScheduleItem = model.ScheduleItem{Time: "12:00", Subject: "Новый предмет", Room: "каб. 101"}

// Types lists the creatable module types in picker order.
func Types() []TypeInfo {
	out := make([]TypeInfo, len(types))
	copy(out, types)
	return out
}

// Template returns a fresh copy of the default payload for t.
func Template(t model.ModuleType) (model.ModuleData, bool) {
	d, ok := templates[t]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}
