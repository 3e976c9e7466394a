package packets

// RESPONSES FOR /api/admin/*

import "github.com/Nixie-Tech-LLC/informator/internal/model"

type ScreenResponse struct {
	ID          string                `json:"id"`
	PIN         string                `json:"pin"`
	Name        string                `json:"name"`
	Status      model.ScreenStatus    `json:"status"`
	ModuleCount int                   `json:"module_count"`
	Modules     []model.ContentModule `json:"modules"`
}

func NewScreenResponse(s model.Screen) ScreenResponse {
	mods := s.Modules
	if mods == nil {
		mods = []model.ContentModule{}
	}
	return ScreenResponse{
		ID:          s.ID,
		PIN:         s.PIN,
		Name:        s.Name,
		Status:      s.Status,
		ModuleCount: len(mods),
		Modules:     mods,
	}
}

func NewScreenListResponse(screens []model.Screen) []ScreenResponse {
	out := make([]ScreenResponse, 0, len(screens))
	for _, s := range screens {
		out = append(out, NewScreenResponse(s))
	}
	return out
}

// ModulesResponse is returned by every module mutation. Added is set only by
// the create endpoint.
type ModulesResponse struct {
	ScreenID string                `json:"screen_id"`
	Modules  []model.ContentModule `json:"modules"`
	Added    *model.ContentModule  `json:"added,omitempty"`
}

type TemplateResponse struct {
	Type  model.ModuleType `json:"type"`
	Label string           `json:"label"`
	Icon  string           `json:"icon"`
	Data  model.ModuleData `json:"data"`
}
