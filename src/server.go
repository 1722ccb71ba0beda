package game

import (
	"encoding/json"
	"log"
	"time"

	"siegefield-server/config"
	"siegefield-server/pathfinding"
)

// NewGameServer creates a new game server.
func NewGameServer(cfg config.Config) *GameServer {
	ticksPerWave := uint64(cfg.WaveInterval / cfg.TickInterval)
	if ticksPerWave == 0 {
		ticksPerWave = 1
	}
	gs := &GameServer{
		cfg:        cfg,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		ticksPerWave:  ticksPerWave,
		agentsPerWave: cfg.AgentsPerWave,
		maxAgents:     cfg.MaxAgents,
		agentSpeed:    config.DefaultAgentSpeed,
		agentDamage:   config.DefaultAgentDamage,
	}
	gs.createArena()
	return gs
}

func (s *GameServer) Run() {
	go s.listenForClients()
	go s.gameLoop()
}

func (s *GameServer) listenForClients() {
	log.Println("Starting client listener...")
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.clientID] = client
			s.mu.Unlock()
		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.clientID]; ok {
				delete(s.clients, client.clientID)
				close(client.send)
			}
			s.mu.Unlock()
		}
	}
}

func (s *GameServer) gameLoop() {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		s.tick++

		// Phase 1: Terrain mutations. Queued edits land before the field
		// refresh so a recompute always sees a settled cost field.
		s.applyQueuedEdits()
		if _, err := s.arena.coordinator.RefreshIfDirty(); err != nil {
			log.Printf("Field refresh failed: %v", err)
		}

		// Phase 2: Spawning and movement against the published field.
		s.spawnWaves()
		s.updateAgents()

		// Phase 3: Broadcast new state to clients.
		s.broadcastState()
		s.mu.Unlock()
	}
}

// broadcastState pushes the full arena snapshot to every connected client.
func (s *GameServer) broadcastState() {
	payload := StateUpdatePayload{
		Tick:       s.tick,
		Agents:     s.arena.agents,
		Obstacles:  s.arena.obstacles,
		Objectives: s.arena.objectives,
		Cleared:    s.arena.cleared,
	}
	message, err := json.Marshal(map[string]interface{}{"type": "state_update", "payload": payload})
	if err != nil {
		log.Printf("Error marshaling state update: %v", err)
		return
	}
	for _, client := range s.clients {
		select {
		case client.send <- message:
		default:
			log.Printf("Client %s message channel is full.", client.clientID)
		}
	}
}

// ---------- Edit queue (WebSocket and REST both land here) ----------

// QueuePlaceObstacle schedules a new obstacle for the next tick.
func (s *GameServer) QueuePlaceObstacle(pos Point, dims Dimensions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editQueue = append(s.editQueue, terrainEdit{kind: editPlaceObstacle, pos: pos, dims: dims})
}

// QueueClearObstacle schedules removal of an obstacle for the next tick.
func (s *GameServer) QueueClearObstacle(obstacleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editQueue = append(s.editQueue, terrainEdit{kind: editClearObstacle, obstacleID: obstacleID})
}

// QueueSetGoals schedules a goal replacement for the next tick.
func (s *GameServer) QueueSetGoals(goals []Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editQueue = append(s.editQueue, terrainEdit{kind: editSetGoals, goals: goals})
}

// ---------- Field queries (used by the admin API) ----------

// FieldDirection returns the published flow vector at a world position.
func (s *GameServer) FieldDirection(x, y float64) pathfinding.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.coordinator.Direction(x, y)
}

// FieldValue returns the published integration value at a world position.
func (s *GameServer) FieldValue(x, y float64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.coordinator.ValueAt(x, y)
}

// ObstacleIDs returns the IDs of all live obstacles.
func (s *GameServer) ObstacleIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.arena.obstacles))
	for id := range s.arena.obstacles {
		ids = append(ids, id)
	}
	return ids
}

// ===== Metrics Methods =====

// GetEntityCounts returns counts of all entity types in the arena.
func (s *GameServer) GetEntityCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{
		"agents":     len(s.arena.agents),
		"obstacles":  len(s.arena.obstacles),
		"objectives": len(s.arena.objectives),
	}
	counts["total"] = counts["agents"] + counts["obstacles"] + counts["objectives"]
	return counts
}

// GetConnectedClientsCount returns the number of currently connected WebSocket clients.
func (s *GameServer) GetConnectedClientsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// GetNavStats returns the field coordinator's refresh statistics.
func (s *GameServer) GetNavStats() pathfinding.CoordinatorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.coordinator.Stats()
}

// GetCurrentTick returns the simulation tick counter.
func (s *GameServer) GetCurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// GetServerHealth returns basic server health information.
func (s *GameServer) GetServerHealth() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.arena.coordinator.Stats()
	return map[string]interface{}{
		"running":           true,
		"connected_clients": len(s.clients),
		"tick":              s.tick,
		"agents":            len(s.arena.agents),
		"obstacles":         len(s.arena.obstacles),
		"objectives":        len(s.arena.objectives),
		"cleared":           s.arena.cleared,
		"field_refreshes":   stats.RefreshCount,
		"reachable_cells":   stats.ReachableCells,
	}
}
