package game

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"siegefield-server/config"
	"siegefield-server/pathfinding"
)

// 1. Data Structures & Interfaces

type Point struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

type Rectangle struct {
	MinX, MinY, MaxX, MaxY float64
}

type Dimensions struct {
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

type Direction int

const (
	UP Direction = iota
	UP_RIGHT
	RIGHT
	DOWN_RIGHT
	DOWN
	DOWN_LEFT
	LEFT
	UP_LEFT
	NONE
)

type AgentMode int

const (
	MARCHING AgentMode = iota // Following the flow field toward an objective
	HOLDING                   // Zero flow vector: unreachable or on a goal cell
	ATTACKING                 // In contact with an objective
)

// AgentState is one swarm unit. Agents carry no path of their own; every
// tick they read the shared flow field at their position and integrate the
// returned vector.
type AgentState struct {
	ID        string           `json:"id"`
	Pos       Point            `json:"Pos"`
	Dims      Dimensions       `json:"Dims"`
	Direction Direction        `json:"direction"`
	Mode      AgentMode        `json:"mode"`
	Speed     float64          `json:"-"`
	Heading   pathfinding.Vec2 `json:"heading"`
}

// ObjectState is a static terrain object occupying a rectangle of cells.
type ObjectState struct {
	ID   string     `json:"id"`
	Pos  Point      `json:"Pos"`
	Dims Dimensions `json:"Dims"`
	Type string     `json:"Type"`
}

// ObjectiveState is a defended structure agents converge on. Its cell is a
// goal of the flow field while it is alive.
type ObjectiveState struct {
	ID      string     `json:"id"`
	Pos     Point      `json:"Pos"`
	Dims    Dimensions `json:"Dims"`
	Life    float64    `json:"life"`
	MaxLife float64    `json:"maxLife"`
}

// terrainEditKind discriminates queued terrain mutations.
type terrainEditKind int

const (
	editPlaceObstacle terrainEditKind = iota
	editClearObstacle
	editSetGoals
)

// terrainEdit is one queued world mutation. Edits from clients and the REST
// API are queued and applied at the top of a tick, never while a field
// refresh may be running, so the cost field is only ever mutated between
// recomputations.
type terrainEdit struct {
	kind       terrainEditKind
	pos        Point
	dims       Dimensions
	obstacleID string
	goals      []Point
}

// ArenaState holds the world: the navigation coordinator plus every entity
// living on it.
type ArenaState struct {
	coordinator *pathfinding.FieldCoordinator
	obstacles   map[string]ObjectState
	objectives  map[string]*ObjectiveState
	agents      map[string]*AgentState
	worldW      float64
	worldH      float64
	cleared     bool // All objectives destroyed; agents stand down
}

type Client struct {
	conn       *websocket.Conn
	clientID   string
	send       chan []byte
	lastAction time.Time
}

type GameServer struct {
	mu         sync.Mutex
	cfg        config.Config
	arena      *ArenaState
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client

	editQueue []terrainEdit

	tick          uint64
	lastWaveTick  uint64
	ticksPerWave  uint64
	agentsPerWave int
	maxAgents     int
	agentSpeed    float64
	agentDamage   float64
}

// Broadcast payloads

type InitPayload struct {
	GridColumns  int     `json:"gridColumns"`
	GridRows     int     `json:"gridRows"`
	CellSize     float64 `json:"cellSize"`
	WorldWidth   float64 `json:"worldWidth"`
	WorldHeight  float64 `json:"worldHeight"`
	TickMs       int64   `json:"tickMs"`
	MaxAgents    int     `json:"maxAgents"`
	DiagonalMode bool    `json:"diagonalMode"`
}

type StateUpdatePayload struct {
	Tick       uint64                     `json:"tick"`
	Agents     map[string]*AgentState     `json:"agents"`
	Obstacles  map[string]ObjectState     `json:"obstacles"`
	Objectives map[string]*ObjectiveState `json:"objectives"`
	Cleared    bool                       `json:"cleared"`
}
