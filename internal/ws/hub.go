package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the frontend host is fixed
	},
}

// Client is one WebSocket subscriber, scoped to an optimization job.
type Client struct {
	JobID string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

// Hub fans optimization progress out to subscribers by job id.
type Hub struct {
	clients    map[*Client]bool
	jobClients map[string][]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *logrus.Logger
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		jobClients: make(map[string][]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger.Get(),
	}
}

// Run handles registration and broadcast fan-out. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.jobClients[client.JobID] = append(h.jobClients[client.JobID], client)
			h.mutex.Unlock()

			h.log.WithFields(logrus.Fields{
				"job_id":        client.JobID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)

				jobClients := h.jobClients[client.JobID]
				for i, c := range jobClients {
					if c == client {
						h.jobClients[client.JobID] = append(jobClients[:i], jobClients[i+1:]...)
						break
					}
				}
				if len(h.jobClients[client.JobID]) == 0 {
					delete(h.jobClients, client.JobID)
				}
			}
			h.mutex.Unlock()

			h.log.WithFields(logrus.Fields{
				"job_id":        client.JobID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// HandleProgress upgrades a connection subscribed to one job's updates.
func (h *Hub) HandleProgress(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing job id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		JobID: jobID,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Hub:   h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// PublishProgress sends a progress update to a job's subscribers.
func (h *Hub) PublishProgress(jobID string, progress float64, step, message string) {
	update := types.ProgressUpdate{
		Type:        "progress",
		Progress:    progress,
		Message:     message,
		CurrentStep: step,
		Timestamp:   time.Now().UTC(),
	}
	h.mutex.RLock()
	clients := append([]*Client{}, h.jobClients[jobID]...)
	h.mutex.RUnlock()
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(update)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal progress update")
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// BroadcastToAll sends a message to every connected client.
func (h *Hub) BroadcastToAll(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}
	h.broadcast <- data
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.log.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
