package packets

// RESPONSES FOR /api/tv/*

import (
	"github.com/Nixie-Tech-LLC/informator/internal/model"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
)

type PinResponse struct {
	PIN string `json:"pin"`
}

type ModulesResponse struct {
	PIN       string                `json:"pin"`
	Connected bool                  `json:"connected"`
	Modules   []model.ContentModule `json:"modules"`
}

// ViewResponse is a screen rendered at one clock tick.
type ViewResponse struct {
	PIN       string        `json:"pin"`
	Connected bool          `json:"connected"`
	Time      string        `json:"time"`
	Date      string        `json:"date"`
	Views     []render.View `json:"views"`
}
