package httpapp

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/calderonm/spinqueue/internal/constants"
	"github.com/calderonm/spinqueue/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already open on the HTTP API; the live channel matches.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// updateFrame is the wire shape of one dashboard push.
type updateFrame struct {
	Event        string              `json:"event"`
	Action       domain.Action       `json:"action"`
	Data         *domain.SongRequest `json:"data,omitempty"`
	Source       string              `json:"source,omitempty"`
	DeletedCount int                 `json:"deletedCount,omitempty"`
}

func newUpdateFrame(ev domain.Event) updateFrame {
	return updateFrame{
		Event:        "song_requests_update",
		Action:       ev.Action,
		Data:         ev.Data,
		Source:       ev.Source,
		DeletedCount: ev.DeletedCount,
	}
}

// Live handles GET /api/songs/live: upgrades to a WebSocket and streams
// song_requests_update frames until the client goes away. Clients send
// nothing; reads only detect disconnects.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := h.Hub.Subscribe()

	// Reader: drain control frames and client noise, unsubscribe on close.
	go func() {
		defer h.Hub.Unsubscribe(session)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(constants.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(constants.PongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Writer: pump hub events and keepalive pings.
	go func() {
		ping := time.NewTicker(constants.PingPeriod)
		defer func() {
			ping.Stop()
			conn.Close()
		}()

		for {
			select {
			case ev := <-session.C:
				conn.SetWriteDeadline(time.Now().Add(constants.WriteWait))
				if err := conn.WriteJSON(newUpdateFrame(ev)); err != nil {
					h.Hub.Unsubscribe(session)
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(constants.WriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					h.Hub.Unsubscribe(session)
					return
				}
			case <-session.Done():
				conn.SetWriteDeadline(time.Now().Add(constants.WriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}()
}
