// Package render turns content modules into views a display can draw.
package render

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Nixie-Tech-LLC/informator/internal/model"
)

// View is the drawable form of one module.
type View struct {
	ModuleID string           `json:"module_id"`
	Type     model.ModuleType `json:"type"`
	Title    string           `json:"title,omitempty"`
	Lines    []string         `json:"lines,omitempty"`
	ImageURL string           `json:"image_url,omitempty"`
}

// Renderer draws one module type. now is the display's current clock tick.
type Renderer interface {
	Render(m model.ContentModule, now time.Time) View
}

type RendererFunc func(m model.ContentModule, now time.Time) View

func (f RendererFunc) Render(m model.ContentModule, now time.Time) View { return f(m, now) }

// Selector maps a module's type tag to its renderer.
type Selector struct {
	renderers map[model.ModuleType]Renderer
}

// NewSelector returns a selector with renderers for every built-in type.
func NewSelector() *Selector {
	s := &Selector{renderers: make(map[model.ModuleType]Renderer)}
	s.Register(model.TypeText, RendererFunc(renderText))
	s.Register(model.TypeImage, RendererFunc(renderImage))
	s.Register(model.TypeWeather, RendererFunc(renderWeather))
	s.Register(model.TypeTime, RendererFunc(renderTime))
	s.Register(model.TypeSchedule, RendererFunc(renderSchedule))
	return s
}

func (s *Selector) Register(t model.ModuleType, r Renderer) {
	s.renderers[t] = r
}

// Render reports false for type tags without a renderer.
func (s *Selector) Render(m model.ContentModule, now time.Time) (View, bool) {
	r, ok := s.renderers[m.Type]
	if !ok {
		return View{}, false
	}
	v := r.Render(m, now)
	v.ModuleID = m.ID
	v.Type = m.Type
	return v, true
}

// RenderAll renders mods in order, silently skipping unknown types.
func (s *Selector) RenderAll(mods []model.ContentModule, now time.Time) []View {
	out := make([]View, 0, len(mods))
	for _, m := range mods {
		if v, ok := s.Render(m, now); ok {
			out = append(out, v)
		}
	}
	return out
}

func renderText(m model.ContentModule, _ time.Time) View {
	d, _ := m.Data.(model.TextData)
	return View{Title: d.Title, Lines: []string{d.Content}}
}

func renderImage(m model.ContentModule, _ time.Time) View {
	d, _ := m.Data.(model.ImageData)
	return View{Title: d.Alt, ImageURL: d.URL}
}

func renderWeather(m model.ContentModule, _ time.Time) View {
	d, _ := m.Data.(model.WeatherData)
	var lines []string
	if d.Condition != "" {
		lines = append(lines, d.Condition)
	}
	if d.Temp != "" {
		lines = append(lines, d.Temp)
	}
	lines = append(lines, d.Location)
	return View{Title: "Погода", Lines: lines}
}

// stored payload is ignored, the clock always shows now
func renderTime(_ model.ContentModule, now time.Time) View {
	return View{Title: now.Format("15:04"), Lines: []string{LongDate(now)}}
}

func renderSchedule(m model.ContentModule, _ time.Time) View {
	d, _ := m.Data.(model.ScheduleData)
	lines := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		lines = append(lines, fmt.Sprintf("%s  %s  %s", it.Time, it.Subject, it.Room))
	}
	return View{Title: "Расписание", Lines: lines}
}

var weekdays = [...]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}

var months = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// LongDate formats t as "Пятница, 16 октября".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s", capitalize(weekdays[t.Weekday()]), t.Day(), months[t.Month()-1])
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
