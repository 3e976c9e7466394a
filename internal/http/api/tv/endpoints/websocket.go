package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/informator/internal/poller"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/tv/screens/:pin/ws
//
// Streams the screen's module list to the display: once on connect, then
// after every read that changed the session.
func (t *TvController) screenSocket(c *gin.Context) {
	pin := c.Param("pin")
	if !registry.ValidPIN(pin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": registry.ErrInvalidPin.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("pin", pin).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	opts := []poller.Option{poller.WithPIN(pin), poller.WithInterval(t.interval)}
	if t.signals != nil {
		opts = append(opts, poller.WithSubscriber(t.signals))
	}
	session := poller.NewSession(t.store, opts...)

	log.Info().Str("pin", pin).Msg("display websocket connected")
	defer log.Info().Str("pin", pin).Msg("display websocket disconnected")

	// the display never sends anything; a read error means it went away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() { _ = session.Run(ctx) }()

	if err := writeSnapshot(conn, session.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case snap := <-session.Updates():
			if err := writeSnapshot(conn, snap); err != nil {
				log.Debug().Err(err).Str("pin", pin).Msg("websocket write failed")
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap poller.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(packets.ModulesResponse{PIN: snap.PIN, Connected: snap.Connected, Modules: snap.Modules})
}
