package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/informator/internal/bus"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/poller"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
)

type TvController struct {
	store    kv.Store
	signals  bus.Subscriber
	interval time.Duration
	selector *render.Selector
	now      func() time.Time
}

func NewTvController(store kv.Store, signals bus.Subscriber, interval time.Duration) *TvController {
	return &TvController{
		store:    store,
		signals:  signals,
		interval: interval,
		selector: render.NewSelector(),
		now:      time.Now,
	}
}

// ScreenModule mounts the display facing endpoints. Displays only read the
// per-pin key; they never claim a pin.
func ScreenModule(ctl *TvController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/pin", ctl.newPin)
		c.GET("/screens/:pin/modules", ctl.getModules)
		c.GET("/screens/:pin/view", ctl.getView)
		c.Raw(http.MethodGet, "/screens/:pin/ws", ctl.screenSocket)
	})
}

func pinParam(ctx *gin.Context) (string, *api.APIError) {
	pin := ctx.Param("pin")
	if !registry.ValidPIN(pin) {
		return "", api.BadRequest(registry.ErrInvalidPin.Error())
	}
	return pin, nil
}

// GET /api/tv/pin
func (t *TvController) newPin(ctx *gin.Context) (any, *api.APIError) {
	return packets.PinResponse{PIN: poller.GeneratePIN()}, nil
}

// poll performs the single read a stateless display request gets.
func (t *TvController) poll(ctx *gin.Context, pin string) poller.Snapshot {
	session := poller.NewSession(t.store, poller.WithPIN(pin))
	session.Poll(ctx.Request.Context())
	return session.Snapshot()
}

// GET /api/tv/screens/:pin/modules
func (t *TvController) getModules(ctx *gin.Context) (any, *api.APIError) {
	pin, apiErr := pinParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	snap := t.poll(ctx, pin)
	return packets.ModulesResponse{PIN: snap.PIN, Connected: snap.Connected, Modules: snap.Modules}, nil
}

// GET /api/tv/screens/:pin/view
func (t *TvController) getView(ctx *gin.Context) (any, *api.APIError) {
	pin, apiErr := pinParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	snap := t.poll(ctx, pin)
	return t.view(snap, t.now()), nil
}

func (t *TvController) view(snap poller.Snapshot, now time.Time) packets.ViewResponse {
	return packets.ViewResponse{
		PIN:       snap.PIN,
		Connected: snap.Connected,
		Time:      now.Format("15:04"),
		Date:      render.LongDate(now),
		Views:     t.selector.RenderAll(snap.Modules, now),
	}
}
