package game

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"siegefield-server/config"
)

// HandleConnections handles WebSocket connections.
func (s *GameServer) HandleConnections(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	client := &Client{
		conn:       conn,
		clientID:   uuid.New().String(),
		send:       make(chan []byte, 256),
		lastAction: time.Now(),
	}

	s.mu.Lock()
	grid := s.arena.coordinator.Grid()
	initPayload := InitPayload{
		GridColumns:  grid.Columns(),
		GridRows:     grid.Rows(),
		CellSize:     grid.CellSize(),
		WorldWidth:   s.arena.worldW,
		WorldHeight:  s.arena.worldH,
		TickMs:       s.cfg.TickInterval.Milliseconds(),
		MaxAgents:    s.maxAgents,
		DiagonalMode: s.cfg.DiagonalMoves,
	}
	s.mu.Unlock()

	initMsg, _ := json.Marshal(map[string]interface{}{"type": "init_data", "payload": initPayload})
	select {
	case client.send <- initMsg:
	default:
		log.Printf("Client %s init channel full.", client.clientID)
	}

	s.register <- client
	go client.writePump()
	go client.readPump(s)
}

// wsPointPayload is the position part shared by client commands.
type wsPointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wsCommand struct {
	Type    string `json:"type"`
	Payload struct {
		X      float64          `json:"x"`
		Y      float64          `json:"y"`
		Width  float64          `json:"width"`
		Height float64          `json:"height"`
		ID     string           `json:"id"`
		Goals  []wsPointPayload `json:"goals"`
	} `json:"payload"`
}

// readPump handles incoming messages from the client. Terrain commands are
// queued, never applied inline; the game loop drains the queue each tick.
func (c *Client) readPump(server *GameServer) {
	defer func() {
		server.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		var cmd wsCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		c.lastAction = time.Now()

		switch cmd.Type {
		case "set_goal":
			goals := make([]Point, 0, len(cmd.Payload.Goals)+1)
			for _, g := range cmd.Payload.Goals {
				goals = append(goals, Point{X: g.X, Y: g.Y})
			}
			if len(goals) == 0 {
				goals = append(goals, Point{X: cmd.Payload.X, Y: cmd.Payload.Y})
			}
			server.QueueSetGoals(goals)
		case "place_obstacle":
			w, h := cmd.Payload.Width, cmd.Payload.Height
			if w <= 0 {
				w = config.FIELD_CELL_SIZE
			}
			if h <= 0 {
				h = config.FIELD_CELL_SIZE
			}
			server.QueuePlaceObstacle(Point{X: cmd.Payload.X, Y: cmd.Payload.Y}, Dimensions{Width: w, Height: h})
		case "clear_obstacle":
			if cmd.Payload.ID == "" {
				log.Printf("clear_obstacle from %s missing id.", c.clientID)
				continue
			}
			server.QueueClearObstacle(cmd.Payload.ID)
		default:
			log.Printf("Unknown message type %q from %s.", cmd.Type, c.clientID)
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
