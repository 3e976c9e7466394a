package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/http/api"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api/admin/packets"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
)

type ScreenController struct {
	registry *registry.Registry
}

func newScreenController(reg *registry.Registry) *ScreenController {
	return &ScreenController{registry: reg}
}

// ScreenModule mounts the /screens endpoints.
func ScreenModule(reg *registry.Registry) api.Module {
	ctl := newScreenController(reg)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/screens", ctl.listScreens)
		c.POST("/screens", ctl.connectScreen)
		c.PUT("/screens/:id", ctl.renameScreen)
		c.DELETE("/screens/:id", ctl.deleteScreen)
	})
}

// persistError keeps storage details out of responses; the in-memory change
// has already been applied.
func persistError(err error) *api.APIError {
	log.Error().Err(err).Msg("admin change was not persisted")
	return api.Internal("changes could not be saved")
}

// GET /api/admin/screens
func (t *ScreenController) listScreens(ctx *gin.Context) (any, *api.APIError) {
	return packets.NewScreenListResponse(t.registry.List()), nil
}

// POST /api/admin/screens
func (t *ScreenController) connectScreen(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ConnectScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screen, err := t.registry.Connect(ctx.Request.Context(), request.PIN)
	switch {
	case errors.Is(err, registry.ErrInvalidPin):
		return nil, api.BadRequest(err.Error())
	case errors.Is(err, registry.ErrDuplicatePin):
		return nil, &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	case err != nil:
		return nil, persistError(err)
	}

	log.Info().Str("screenID", screen.ID).Str("pin", screen.PIN).Msg("screen connected from admin")
	return packets.NewScreenResponse(*screen), nil
}

// PUT /api/admin/screens/:id
func (t *ScreenController) renameScreen(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RenameScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	if _, err := t.registry.Rename(ctx.Request.Context(), ctx.Param("id"), request.Name); err != nil {
		return nil, persistError(err)
	}
	return packets.NewScreenListResponse(t.registry.List()), nil
}

// DELETE /api/admin/screens/:id
func (t *ScreenController) deleteScreen(ctx *gin.Context) (any, *api.APIError) {
	if err := t.registry.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		return nil, persistError(err)
	}
	return packets.NewScreenListResponse(t.registry.List()), nil
}
