package cmd

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kmorel/notecast/logger"
	"github.com/kmorel/notecast/model"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the REST surface is already open to any origin via CORS
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHub fans notifications out to every attached websocket consumer.
type wsHub struct {
	mu      sync.Mutex
	clients map[string]chan model.Notification
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[string]chan model.Notification)}
}

func (h *wsHub) broadcast(n model.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c <- n:
		default:
			logger.GetProjectLogger().WithFields(logrus.Fields{"conn_id": id}).
				Warn("slow websocket consumer, dropping notification")
		}
	}
}

func (h *wsHub) attach() (string, chan model.Notification) {
	id := uuid.New().String()
	c := make(chan model.Notification, 32)
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	return id, c
}

func (h *wsHub) detach(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// handleWS upgrades the connection, replays the current state to the new
// consumer via a re-announce, then streams every change. Inbound request
// envelopes are accepted on the same connection.
func handleWS(w http.ResponseWriter, r *http.Request) {
	log := logger.GetProjectLogger()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithFields(logrus.Fields{"err": err}).Warn("websocket upgrade failed")
		return
	}

	id, notifications := hub.attach()
	log.WithFields(logrus.Fields{"conn_id": id}).Info("websocket consumer attached")

	// catch the new consumer up on state that settled before it attached
	core.Submit(model.Request{Kind: model.UpdateStatuses})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req model.Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			core.Submit(req)
		}
	}()

	for {
		select {
		case <-done:
			hub.detach(id)
			conn.Close()
			log.WithFields(logrus.Fields{"conn_id": id}).Info("websocket consumer detached")
			return
		case n := <-notifications:
			if err := conn.WriteJSON(n); err != nil {
				hub.detach(id)
				conn.Close()
				return
			}
		}
	}
}
