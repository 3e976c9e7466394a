package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/http/api"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api/admin/packets"
	"github.com/Nixie-Tech-LLC/informator/internal/model"
	"github.com/Nixie-Tech-LLC/informator/internal/modules"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
	"github.com/Nixie-Tech-LLC/informator/internal/storage"
)

type ModuleController struct {
	modules *modules.Store
	storage storage.Storage
}

func newModuleController(store *modules.Store, files storage.Storage) *ModuleController {
	return &ModuleController{modules: store, storage: files}
}

// ContentModule mounts module editing, schedule items, image uploads and the
// template catalogue.
func ContentModule(store *modules.Store, files storage.Storage) api.Module {
	ctl := newModuleController(store, files)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/templates", ctl.listTemplates)

		c.GET("/screens/:id/modules", ctl.listModules)
		c.POST("/screens/:id/modules", ctl.addModule)
		c.POST("/screens/:id/modules/reorder", ctl.reorderModules)
		c.PUT("/screens/:id/modules/:moduleId", ctl.updateModule)
		c.DELETE("/screens/:id/modules/:moduleId", ctl.removeModule)

		// schedule items
		c.POST("/screens/:id/modules/:moduleId/items", ctl.addScheduleItem)
		c.PATCH("/screens/:id/modules/:moduleId/items/:index", ctl.updateScheduleItem)
		c.DELETE("/screens/:id/modules/:moduleId/items/:index", ctl.removeScheduleItem)

		c.POST("/screens/:id/modules/:moduleId/image", ctl.uploadImage)
	})
}

func (m *ModuleController) current(screenID string) packets.ModulesResponse {
	mods := m.modules.Modules(screenID)
	if mods == nil {
		mods = []model.ContentModule{}
	}
	return packets.ModulesResponse{ScreenID: screenID, Modules: mods}
}

// GET /api/admin/templates
func (m *ModuleController) listTemplates(ctx *gin.Context) (any, *api.APIError) {
	types := render.Types()
	out := make([]packets.TemplateResponse, 0, len(types))
	for _, info := range types {
		data, _ := render.Template(info.Type)
		out = append(out, packets.TemplateResponse{Type: info.Type, Label: info.Label, Icon: info.Icon, Data: data})
	}
	return out, nil
}

// GET /api/admin/screens/:id/modules
func (m *ModuleController) listModules(ctx *gin.Context) (any, *api.APIError) {
	return m.current(ctx.Param("id")), nil
}

// POST /api/admin/screens/:id/modules
func (m *ModuleController) addModule(ctx *gin.Context) (any, *api.APIError) {
	var request packets.AddModuleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screenID := ctx.Param("id")
	added, err := m.modules.AddModule(ctx.Request.Context(), screenID, model.ModuleType(request.Type))
	if errors.Is(err, modules.ErrUnknownModuleType) {
		return nil, api.BadRequest(err.Error())
	}
	if err != nil {
		return nil, persistError(err)
	}

	resp := m.current(screenID)
	resp.Added = added
	return resp, nil
}

// POST /api/admin/screens/:id/modules/reorder
func (m *ModuleController) reorderModules(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ReorderModulesRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screenID := ctx.Param("id")
	if err := m.modules.Reorder(ctx.Request.Context(), screenID, request.DraggedID, request.TargetID); err != nil {
		return nil, persistError(err)
	}
	return m.current(screenID), nil
}

// PUT /api/admin/screens/:id/modules/:moduleId
func (m *ModuleController) updateModule(ctx *gin.Context) (any, *api.APIError) {
	var request packets.UpdateModuleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screenID, moduleID := ctx.Param("id"), ctx.Param("moduleId")
	existing, ok := m.modules.Module(screenID, moduleID)
	if !ok {
		return m.current(screenID), nil
	}

	t := existing.Type
	if request.Type != "" {
		t = model.ModuleType(request.Type)
	}
	data, err := model.DecodeData(t, request.Data)
	if err != nil {
		return nil, api.BadRequest("invalid module data: " + err.Error())
	}

	err = m.modules.UpdateModule(ctx.Request.Context(), screenID, moduleID, data)
	if errors.Is(err, model.ErrTypeMismatch) {
		return nil, api.BadRequest(err.Error())
	}
	if err != nil {
		return nil, persistError(err)
	}
	return m.current(screenID), nil
}

// DELETE /api/admin/screens/:id/modules/:moduleId
func (m *ModuleController) removeModule(ctx *gin.Context) (any, *api.APIError) {
	screenID := ctx.Param("id")
	if err := m.modules.RemoveModule(ctx.Request.Context(), screenID, ctx.Param("moduleId")); err != nil {
		return nil, persistError(err)
	}
	return m.current(screenID), nil
}

// editSchedule opens a draft on a schedule module, applies edit and saves it.
// A stale id answers with the current list.
func (m *ModuleController) editSchedule(ctx *gin.Context, edit func(d *modules.Draft) bool) (any, *api.APIError) {
	screenID, moduleID := ctx.Param("id"), ctx.Param("moduleId")
	draft, ok := m.modules.Edit(screenID, moduleID)
	if !ok {
		return m.current(screenID), nil
	}
	if draft.Module().Type != model.TypeSchedule {
		draft.Discard()
		return nil, api.BadRequest("module is not a schedule")
	}

	if !edit(draft) {
		draft.Discard()
		log.Debug().Str("moduleID", moduleID).Msg("schedule edit left module unchanged")
		return m.current(screenID), nil
	}
	if err := draft.Save(ctx.Request.Context()); err != nil {
		return nil, persistError(err)
	}
	return m.current(screenID), nil
}

func itemIndex(ctx *gin.Context) (int, *api.APIError) {
	i, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		log.Debug().Err(err).Str("index_raw", ctx.Param("index")).Msg("invalid schedule item index")
		return 0, api.BadRequest("invalid item index")
	}
	return i, nil
}

// POST /api/admin/screens/:id/modules/:moduleId/items
func (m *ModuleController) addScheduleItem(ctx *gin.Context) (any, *api.APIError) {
	return m.editSchedule(ctx, func(d *modules.Draft) bool { return d.AddScheduleItem() })
}

// PATCH /api/admin/screens/:id/modules/:moduleId/items/:index
func (m *ModuleController) updateScheduleItem(ctx *gin.Context) (any, *api.APIError) {
	i, apiErr := itemIndex(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.UpdateScheduleItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	return m.editSchedule(ctx, func(d *modules.Draft) bool {
		return d.UpdateScheduleItem(i, modules.ScheduleField(request.Field), request.Value)
	})
}

// DELETE /api/admin/screens/:id/modules/:moduleId/items/:index
func (m *ModuleController) removeScheduleItem(ctx *gin.Context) (any, *api.APIError) {
	i, apiErr := itemIndex(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return m.editSchedule(ctx, func(d *modules.Draft) bool { return d.RemoveScheduleItem(i) })
}

// POST /api/admin/screens/:id/modules/:moduleId/image
func (m *ModuleController) uploadImage(ctx *gin.Context) (any, *api.APIError) {
	screenID, moduleID := ctx.Param("id"), ctx.Param("moduleId")

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return nil, api.BadRequest("image file is required")
	}

	draft, ok := m.modules.Edit(screenID, moduleID)
	if !ok {
		return m.current(screenID), nil
	}
	image, isImage := draft.Module().Data.(model.ImageData)
	if !isImage {
		draft.Discard()
		return nil, api.BadRequest("module is not an image")
	}

	url, err := m.storage.SaveImage(fileHeader)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		draft.Discard()
		return nil, api.BadRequest(err.Error())
	}
	if err != nil {
		draft.Discard()
		log.Error().Err(err).Str("moduleID", moduleID).Msg("failed to store image")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "could not store image"}
	}

	image.URL = url
	if alt := ctx.PostForm("alt"); alt != "" {
		image.Alt = alt
	}
	if err := draft.SetData(image); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := draft.Save(ctx.Request.Context()); err != nil {
		return nil, persistError(err)
	}
	return m.current(screenID), nil
}
