package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"siegefield-server/pathfinding"
	game "siegefield-server/src"

	"github.com/go-chi/chi/v5"
)

// FieldHandler exposes read access to the navigation field and admin
// mutations of the terrain. Mutations are queued and take effect on the
// next simulation tick.
type FieldHandler struct {
	cfg        Config
	gameServer *game.GameServer
}

func NewFieldHandler(cfg Config, gameServer *game.GameServer) *FieldHandler {
	return &FieldHandler{cfg: cfg, gameServer: gameServer}
}

func (h *FieldHandler) Routes(r chi.Router) {
	r.Get("/field/direction", h.GetDirection)
	r.Get("/field/value", h.GetValue)
	r.Get("/obstacles", h.ListObstacles)
	r.Post("/goal", h.SetGoals)
	r.Post("/obstacle", h.PlaceObstacle)
	r.Delete("/obstacle/{id}", h.ClearObstacle)
}

type directionResponse struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type valueResponse struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Value       uint32  `json:"value"`
	Unreachable bool    `json:"unreachable"`
}

type goalRequest struct {
	Goals []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"goals"`
}

type obstacleRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GetDirection handles GET /field/direction?x=&y=.
func (h *FieldHandler) GetDirection(w http.ResponseWriter, r *http.Request) {
	x, y, ok := queryPoint(w, r)
	if !ok {
		return
	}
	v := h.gameServer.FieldDirection(x, y)
	writeJSON(w, http.StatusOK, directionResponse{X: x, Y: y, DX: v.X, DY: v.Y})
}

// GetValue handles GET /field/value?x=&y=.
func (h *FieldHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	x, y, ok := queryPoint(w, r)
	if !ok {
		return
	}
	value := h.gameServer.FieldValue(x, y)
	writeJSON(w, http.StatusOK, valueResponse{
		X: x, Y: y,
		Value:       value,
		Unreachable: value == pathfinding.Unreachable,
	})
}

// ListObstacles handles GET /obstacles.
func (h *FieldHandler) ListObstacles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"obstacles": h.gameServer.ObstacleIDs()})
}

// SetGoals handles POST /goal.
func (h *FieldHandler) SetGoals(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Goals) == 0 {
		writeError(w, http.StatusBadRequest, "goals must be non-empty")
		return
	}
	goals := make([]game.Point, 0, len(req.Goals))
	for _, g := range req.Goals {
		goals = append(goals, game.Point{X: g.X, Y: g.Y})
	}
	h.gameServer.QueueSetGoals(goals)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// PlaceObstacle handles POST /obstacle.
func (h *FieldHandler) PlaceObstacle(w http.ResponseWriter, r *http.Request) {
	var req obstacleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}
	h.gameServer.QueuePlaceObstacle(game.Point{X: req.X, Y: req.Y}, game.Dimensions{Width: req.Width, Height: req.Height})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ClearObstacle handles DELETE /obstacle/{id}.
func (h *FieldHandler) ClearObstacle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing obstacle id")
		return
	}
	h.gameServer.QueueClearObstacle(id)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// queryPoint parses the x and y query parameters.
func queryPoint(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required numbers")
		return 0, 0, false
	}
	return x, y, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
