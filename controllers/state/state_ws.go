package stateControllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/elvis-ci/Riviera/stores"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// combinedState is what every connected view receives: the reactive read of
// all three stores.
type combinedState struct {
	Session stores.SessionSnapshot `json:"session"`
	Catalog stores.CatalogSnapshot `json:"catalog"`
	Cart    stores.CartSnapshot    `json:"cart"`
}

// StreamState upgrades to a websocket and pushes the combined store snapshot
// immediately and then on every store change until the client disconnects.
func StreamState(session *stores.SessionStore, catalog *stores.CatalogStore, cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		clientID := uuid.NewString()
		log.Printf("✅ State stream client connected: %s", clientID)

		sessionCh, cancelSession := session.Subscribe()
		defer cancelSession()
		catalogCh, cancelCatalog := catalog.Subscribe()
		defer cancelCatalog()
		cartCh, cancelCart := cart.Subscribe()
		defer cancelCart()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		push := func() bool {
			state := combinedState{
				Session: session.Snapshot(),
				Catalog: catalog.Snapshot(),
				Cart:    cart.Snapshot(),
			}
			data, err := json.Marshal(state)
			if err != nil {
				return false
			}
			return conn.WriteMessage(websocket.TextMessage, data) == nil
		}

		if !push() {
			return
		}
		for {
			select {
			case <-closed:
				log.Printf("🔌 State stream client disconnected: %s", clientID)
				return
			case <-sessionCh:
			case <-catalogCh:
			case <-cartCh:
			}
			if !push() {
				return
			}
		}
	}
}
