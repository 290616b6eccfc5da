package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dmayman/mealio/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and subscribes them to the caller's household feed. Callers
// without a household have nothing to sync and are rejected.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := auth.HouseholdID(r.Context())
		if householdID == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "household membership required"})
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, householdID)
		client.Run(r.Context())
	}
}
