package packets

import "encoding/json"

// REQUESTS FOR /api/admin/*

type ConnectScreenRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type RenameScreenRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddModuleRequest struct {
	Type string `json:"type" binding:"required"`
}

// UpdateModuleRequest replaces a module's payload. Type is optional; when
// present it must match the module.
type UpdateModuleRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data" binding:"required"`
}

type ReorderModulesRequest struct {
	DraggedID string `json:"dragged_id" binding:"required"`
	TargetID  string `json:"target_id" binding:"required"`
}

type UpdateScheduleItemRequest struct {
	Field string `json:"field" binding:"required,oneof=time subject room"`
	Value string `json:"value"`
}
