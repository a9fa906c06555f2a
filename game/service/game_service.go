package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/tmge/game/engine"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidControl = errors.New("invalid control action")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpired(ctx context.Context, maxAge time.Duration) int

	// Game Operations
	HandleInput(ctx context.Context, sessionID string, req InputRequest) (*InputResult, error)
	Control(ctx context.Context, sessionID string, action ControlAction) (*engine.Display, error)
	Tick(ctx context.Context, sessionID string) (*engine.Display, error)
	TickAll(ctx context.Context) int
	Run(ctx context.Context, interval time.Duration)

	// Game State
	GetDisplay(ctx context.Context, sessionID string) (*engine.Display, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
	ListVariants(ctx context.Context) []engine.Variant

	// Scores
	Leaderboard(ctx context.Context, variant string, limit int) ([]LeaderboardEntry, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) []string
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Broadcaster pushes session updates to connected clients. Implementations must not block.
type Broadcaster interface {
	BroadcastDisplay(sessionID string, display *engine.Display)
	BroadcastEvent(sessionID, event string, data any)
}

// LeaderboardStore keeps final scores per variant
type LeaderboardStore interface {
	Submit(ctx context.Context, entry LeaderboardEntry) error
	Top(ctx context.Context, variant string, limit int) ([]LeaderboardEntry, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Game           engine.Game
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
