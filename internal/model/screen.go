package model

type ScreenStatus string

const (
	StatusOnline  ScreenStatus = "online"
	StatusOffline ScreenStatus = "offline"
)

// Screen represents a display device bound to a PIN.
type Screen struct {
	ID      string          `json:"id"`
	PIN     string          `json:"pin"`
	Name    string          `json:"name"`
	Status  ScreenStatus    `json:"status"`
	Modules []ContentModule `json:"modules"`
}

// Clone returns a copy of the screen that shares no memory with s.
func (s Screen) Clone() Screen {
	out := s
	out.Modules = CloneModules(s.Modules)
	return out
}

// ScreenSnapshot is the per-pin document a display reads.
type ScreenSnapshot struct {
	Modules []ContentModule `json:"modules"`
}
