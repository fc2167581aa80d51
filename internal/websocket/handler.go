package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"hearth/internal/auth"
)

// HandleWebSocket upgrades the connection and runs it as a hub client tied
// to the authenticated user.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // same-host deployments behind a reverse proxy
		})
		if err != nil {
			slog.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		client.Run(r.Context())
	}
}
