package api

import (
	"net/http"
	"time"

	game "siegefield-server/src"

	"github.com/go-chi/chi/v5"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// FieldMetrics reports the state of the navigation field.
type FieldMetrics struct {
	RefreshCount    uint64  `json:"refresh_count"`
	LastRefreshNs   int64   `json:"last_refresh_ns"`
	PendingEdits    int     `json:"pending_edits"`
	ReachableCells  int     `json:"reachable_cells"`
	TotalCells      int     `json:"total_cells"`
	ReachableRatio  float64 `json:"reachable_ratio"`
}

// SimulationMetrics reports tick progress and entity population.
type SimulationMetrics struct {
	Tick       uint64 `json:"tick"`
	Agents     int    `json:"agents"`
	Obstacles  int    `json:"obstacles"`
	Objectives int    `json:"objectives"`
}

// MetricsResponse is the complete metrics response structure
type MetricsResponse struct {
	Timestamp         time.Time         `json:"timestamp"`
	Health            HealthStatus      `json:"health"`
	HealthDescription string            `json:"health_description"`
	Simulation        SimulationMetrics `json:"simulation"`
	Field             FieldMetrics      `json:"field"`
	ActiveConnections int               `json:"active_connections"`
	ServerUptime      int64             `json:"server_uptime_sec"`
}

// MetricsHandler manages metrics collection and reporting
type MetricsHandler struct {
	cfg             Config
	gameServer      *game.GameServer
	serverStartTime time.Time

	// Thresholds for health status
	warningReachableRatio  float64
	criticalReachableRatio float64
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(cfg Config, gameServer *game.GameServer) *MetricsHandler {
	return &MetricsHandler{
		cfg:             cfg,
		gameServer:      gameServer,
		serverStartTime: time.Now(),
		// A shrinking reachable region usually means obstacles have walled
		// off the objectives.
		warningReachableRatio:  0.5,
		criticalReachableRatio: 0.1,
	}
}

func (h *MetricsHandler) Routes(r chi.Router) {
	r.Get("/metrics", h.GetMetrics)
	r.Get("/metrics/navigation", h.GetNavigationMetrics)
	r.Get("/metrics/entities", h.GetEntityMetrics)
	r.Get("/metrics/websocket", h.GetWebSocketMetrics)
}

// GetMetrics handles GET /metrics.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats := h.gameServer.GetNavStats()
	counts := h.gameServer.GetEntityCounts()

	ratio := 0.0
	if stats.TotalCells > 0 {
		ratio = float64(stats.ReachableCells) / float64(stats.TotalCells)
	}

	health := HealthHealthy
	description := "all systems operational"
	switch {
	case stats.RefreshCount > 0 && ratio < h.criticalReachableRatio:
		health = HealthCritical
		description = "navigation field almost entirely unreachable"
	case stats.RefreshCount > 0 && ratio < h.warningReachableRatio:
		health = HealthWarning
		description = "less than half of the arena can reach an objective"
	}

	resp := MetricsResponse{
		Timestamp:         time.Now(),
		Health:            health,
		HealthDescription: description,
		Simulation: SimulationMetrics{
			Tick:       h.gameServer.GetCurrentTick(),
			Agents:     counts["agents"],
			Obstacles:  counts["obstacles"],
			Objectives: counts["objectives"],
		},
		Field: FieldMetrics{
			RefreshCount:   stats.RefreshCount,
			LastRefreshNs:  stats.LastRefreshTime.Nanoseconds(),
			PendingEdits:   stats.PendingEdits,
			ReachableCells: stats.ReachableCells,
			TotalCells:     stats.TotalCells,
			ReachableRatio: ratio,
		},
		ActiveConnections: h.gameServer.GetConnectedClientsCount(),
		ServerUptime:      int64(time.Since(h.serverStartTime).Seconds()),
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNavigationMetrics handles GET /metrics/navigation.
func (h *MetricsHandler) GetNavigationMetrics(w http.ResponseWriter, r *http.Request) {
	stats := h.gameServer.GetNavStats()
	ratio := 0.0
	if stats.TotalCells > 0 {
		ratio = float64(stats.ReachableCells) / float64(stats.TotalCells)
	}
	writeJSON(w, http.StatusOK, FieldMetrics{
		RefreshCount:   stats.RefreshCount,
		LastRefreshNs:  stats.LastRefreshTime.Nanoseconds(),
		PendingEdits:   stats.PendingEdits,
		ReachableCells: stats.ReachableCells,
		TotalCells:     stats.TotalCells,
		ReachableRatio: ratio,
	})
}

// GetEntityMetrics handles GET /metrics/entities.
func (h *MetricsHandler) GetEntityMetrics(w http.ResponseWriter, r *http.Request) {
	counts := h.gameServer.GetEntityCounts()
	writeJSON(w, http.StatusOK, SimulationMetrics{
		Tick:       h.gameServer.GetCurrentTick(),
		Agents:     counts["agents"],
		Obstacles:  counts["obstacles"],
		Objectives: counts["objectives"],
	})
}

// GetWebSocketMetrics handles GET /metrics/websocket.
func (h *MetricsHandler) GetWebSocketMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "running",
		"active_connections": h.gameServer.GetConnectedClientsCount(),
		"uptime_sec":         int64(time.Since(h.serverStartTime).Seconds()),
	})
}
