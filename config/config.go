package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Arena Dimensions and Navigation Grid Sizing
const (
	WORLD_WIDTH     = 3000.0 // Arena width in world units
	WORLD_HEIGHT    = 3000.0 // Arena height in world units
	FIELD_CELL_SIZE = 25.0   // Size of one flow-field cell in world units
)

// Simulation Speeds
const (
	DefaultAgentSpeed = 150.0 // World units per second
)

// Simulation Tick Interval
const TICK_INTERVAL = 100 * time.Millisecond // 10 simulation ticks per second

// Wave Spawning Defaults
const (
	DefaultWaveInterval  = 8 * time.Second
	DefaultAgentsPerWave = 40
	DefaultMaxAgents     = 3000
)

// Objective Defaults
const (
	DefaultObjectiveLife = 1000.0
	DefaultAgentDamage   = 10.0
)

// Config holds server configuration loaded from environment variables.
// Defaults are tuned for a single-arena development server; deployments
// override via .env (loaded in main) or the process environment.
type Config struct {
	Addr            string
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	TickInterval    time.Duration
	WaveInterval    time.Duration
	AgentsPerWave   int
	MaxAgents       int
	NumObstacles    int
	DiagonalMoves   bool
	RefreshMaxEdits int
}

func LoadConfig() Config {
	cfg := Config{
		Addr:            getEnv("SERVER_ADDR", ":8080"),
		StaticDir:       getEnv("STATIC_DIR", "./public"),
		ReadTimeout:     parseDuration(getEnv("API_READ_TIMEOUT", "15s"), 15*time.Second),
		WriteTimeout:    parseDuration(getEnv("API_WRITE_TIMEOUT", "15s"), 15*time.Second),
		TickInterval:    parseDuration(getEnv("TICK_INTERVAL", "100ms"), TICK_INTERVAL),
		WaveInterval:    parseDuration(getEnv("WAVE_INTERVAL", "8s"), DefaultWaveInterval),
		AgentsPerWave:   parseInt(getEnv("AGENTS_PER_WAVE", "40"), DefaultAgentsPerWave),
		MaxAgents:       parseInt(getEnv("MAX_AGENTS", "3000"), DefaultMaxAgents),
		NumObstacles:    parseInt(getEnv("NUM_OBSTACLES", "60"), 60),
		DiagonalMoves:   getEnv("DIAGONAL_MOVES", "true") == "true",
		RefreshMaxEdits: parseInt(getEnv("FIELD_REFRESH_MAX_EDITS", "32"), 32),
	}
	if cfg.RefreshMaxEdits < 1 {
		log.Println("[WARN] FIELD_REFRESH_MAX_EDITS must be >= 1; using 1")
		cfg.RefreshMaxEdits = 1
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
