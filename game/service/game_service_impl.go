package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/wricardo/tmge/game/engine"
)

const (
	// DefaultLeaderboardLimit is used when a caller asks for no specific size
	DefaultLeaderboardLimit = 10
	// MaxLeaderboardLimit caps leaderboard queries
	MaxLeaderboardLimit = 100

	leaderboardTimeout = 2 * time.Second
)

// gameServiceImpl implements the GameService interface.
// One mutex serialises every input, control, tick and snapshot so each
// input, mutation and notification cycle is atomic.
type gameServiceImpl struct {
	sessions    SessionManager
	configs     ConfigManager
	registry    *engine.Registry
	broadcaster Broadcaster
	leaderboard LeaderboardStore
	logger      *slog.Logger

	observers map[string]*sessionObserver
	finals    []LeaderboardEntry
	submits   sync.WaitGroup
	mu        sync.Mutex
}

// Option configures a GameService
type Option func(*gameServiceImpl)

// WithBroadcaster pushes every snapshot and event to b
func WithBroadcaster(b Broadcaster) Option {
	return func(s *gameServiceImpl) { s.broadcaster = b }
}

// WithLeaderboard records final scores into store
func WithLeaderboard(store LeaderboardStore) Option {
	return func(s *gameServiceImpl) { s.leaderboard = store }
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = l }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, registry *engine.Registry, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		registry:  registry,
		logger:    slog.Default(),
		observers: make(map[string]*sessionObserver),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) resolveConfig(configID string) (string, *engine.GameConfig, error) {
	if configID == "" {
		config := s.configs.GetDefault()
		if config == nil {
			return "", nil, errors.New("no default configuration available")
		}
		return s.getConfigID(config.Name), config, nil
	}

	config, err := s.configs.LoadConfig(configID)
	if err == nil {
		return configID, config, nil
	}

	// Provide helpful error message with available options
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		ids := make([]string, 0, len(availableConfigs))
		for _, cfg := range availableConfigs {
			ids = append(ids, cfg.ConfigID)
		}
		return "", nil, fmt.Errorf("config '%s' not available (available configs: %v): %w", configID, ids, err)
	}
	return "", nil, fmt.Errorf("failed to load config %s: %w", configID, err)
}

// CreateSession creates a new game session with its players
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configID, config, err := s.resolveConfig(req.ConfigID)
	if err != nil {
		return nil, err
	}

	players := req.Players
	if len(players) == 0 {
		players = []string{"Player 1"}
	}
	if len(players) > config.PlayerLimit() {
		return nil, fmt.Errorf("%w: %d players requested, %s allows %d",
			engine.ErrTooManyPlayers, len(players), configID, config.PlayerLimit())
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	for i, name := range players {
		if name == "" {
			name = "Player " + strconv.Itoa(i+1)
		}
		if err := sess.Game.AddPlayer(engine.NewPlayer(name)); err != nil {
			_ = s.sessions.Delete(sess.ID)
			return nil, fmt.Errorf("failed to add player %q: %w", name, err)
		}
	}

	obs := newSessionObserver(s, sess.ID, sess.Game)
	sess.Game.RegisterObserver(obs)
	s.observers[sess.ID] = obs

	if req.AutoStart {
		sess.Game.Start()
		obs.drain()
	}

	sessionsActive.Inc()
	sessionsCreated.WithLabelValues(string(config.Variant)).Inc()
	s.logger.Info("session created",
		"session_id", sess.ID,
		"config_id", configID,
		"variant", config.Variant,
		"players", len(players),
	)

	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		Variant:        sess.Game.Variant(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Display:        sess.Game.DisplayData(),
		GameConfig:     sess.Config,
	}
}

// session fetches a session and marks it as accessed. Callers hold s.mu.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	_ = s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	sess.Game.Stop()
	if obs, ok := s.observers[sess.ID]; ok {
		sess.Game.RemoveObserver(obs)
		delete(s.observers, sess.ID)
	}
	if err := s.sessions.Delete(sess.ID); err != nil {
		return err
	}

	sessionsActive.Dec()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(sess.ID, "session_deleted", nil)
	}
	s.logger.Info("session deleted", "session_id", sess.ID)
	return nil
}

// CleanupExpired removes sessions idle for longer than maxAge
func (s *gameServiceImpl) CleanupExpired(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	for _, id := range removed {
		delete(s.observers, id)
		sessionsActive.Dec()
	}
	if len(removed) > 0 {
		s.logger.Info("expired sessions removed", "count", len(removed), "max_age", maxAge)
	}
	return len(removed)
}

// HandleInput delivers one input command to a session's game
func (s *gameServiceImpl) HandleInput(ctx context.Context, sessionID string, req InputRequest) (*InputResult, error) {
	in, err := ParseInput(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	obs := s.observers[sess.ID]
	if obs != nil {
		obs.drain()
	}

	accepted := sess.Game.HandleInput(in)

	result := &InputResult{
		Accepted: accepted,
		Input:    describeInput(in),
		Display:  sess.Game.DisplayData(),
	}
	if obs != nil {
		result.Events = obs.drain()
	}

	inputsHandled.WithLabelValues(string(sess.Game.Variant()), in.Kind.String(), strconv.FormatBool(accepted)).Inc()
	s.logger.Debug("input handled",
		"session_id", sess.ID,
		"input", result.Input,
		"accepted", accepted,
		"score", result.Display.Score,
	)
	return result, nil
}

// Control starts, pauses or stops a session's game
func (s *gameServiceImpl) Control(ctx context.Context, sessionID string, action ControlAction) (*engine.Display, error) {
	s.mu.Lock()
	defer s.unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ControlStart:
		sess.Game.Start()
	case ControlPause:
		sess.Game.Pause()
	case ControlStop:
		sess.Game.Stop()
		if s.broadcaster != nil {
			s.broadcaster.BroadcastDisplay(sess.ID, sess.Game.DisplayData())
		}
	default:
		return nil, fmt.Errorf("%w: %q (valid: start, pause, stop)", ErrInvalidControl, action)
	}
	if obs := s.observers[sess.ID]; obs != nil {
		obs.drain()
	}

	s.logger.Info("session control", "session_id", sess.ID, "action", action)
	return sess.Game.DisplayData(), nil
}

// Tick advances one session's game once
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*engine.Display, error) {
	s.mu.Lock()
	defer s.unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.update(sess)
	return sess.Game.DisplayData(), nil
}

func (s *gameServiceImpl) update(sess *Session) bool {
	if !sess.Game.IsRunning() || sess.Game.IsGameOver() {
		return false
	}
	sess.Game.Update()
	if obs := s.observers[sess.ID]; obs != nil {
		obs.drain()
	}
	return true
}

// TickAll advances every running session once and returns how many were updated
func (s *gameServiceImpl) TickAll(ctx context.Context) int {
	updated, finals := s.tickAll()
	s.submitFinals(finals)
	return updated
}

func (s *gameServiceImpl) tickAll() (int, []LeaderboardEntry) {
	start := time.Now()
	defer func() { tickDuration.Observe(time.Since(start).Seconds()) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, sess := range s.sessions.List() {
		if s.update(sess) {
			updated++
		}
	}
	return updated, s.takeFinals()
}

// Run ticks every running session at the given interval until ctx is done.
// Final scores are submitted in the background and Run waits for them
// before returning.
func (s *gameServiceImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("game loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.submits.Wait()
			s.logger.Info("game loop stopped")
			return
		case <-ticker.C:
			if _, finals := s.tickAll(); len(finals) > 0 {
				s.submits.Add(1)
				go func() {
					defer s.submits.Done()
					s.submitFinals(finals)
				}()
			}
		}
	}
}

// GetDisplay returns the current snapshot of a session
func (s *gameServiceImpl) GetDisplay(ctx context.Context, sessionID string) (*engine.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Game.DisplayData(), nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration after checking its variant is playable
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if config != nil && !s.registry.Has(config.Variant) {
		return fmt.Errorf("%w: %s", engine.ErrUnknownVariant, config.Variant)
	}
	return s.configs.SaveConfig(configName, config)
}

// ListVariants returns every registered variant
func (s *gameServiceImpl) ListVariants(ctx context.Context) []engine.Variant {
	return s.registry.Variants()
}

// Leaderboard returns the best final scores for a variant
func (s *gameServiceImpl) Leaderboard(ctx context.Context, variant string, limit int) ([]LeaderboardEntry, error) {
	if !s.registry.Has(engine.Variant(variant)) {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownVariant, variant)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	if s.leaderboard == nil {
		return []LeaderboardEntry{}, nil
	}
	return s.leaderboard.Top(ctx, variant, limit)
}

// recordFinal queues every player's final score. Called from the session
// observer while s.mu is held; the entries are submitted once it is released.
func (s *gameServiceImpl) recordFinal(sessionID string, g engine.Game) {
	variant := string(g.Variant())
	gamesFinished.WithLabelValues(variant).Inc()
	s.logger.Info("game over", "session_id", sessionID, "variant", variant, "score", g.Score(), "level", g.Level())

	now := time.Now()
	for _, p := range g.Players() {
		finalScores.WithLabelValues(variant).Observe(float64(p.Score()))
		if s.leaderboard == nil {
			continue
		}
		s.finals = append(s.finals, LeaderboardEntry{
			Player:    p.Name(),
			Score:     p.Score(),
			Level:     g.Level(),
			SessionID: sessionID,
			Variant:   variant,
			At:        now,
		})
	}
}

// takeFinals returns and clears the queued final scores. Callers hold s.mu.
func (s *gameServiceImpl) takeFinals() []LeaderboardEntry {
	finals := s.finals
	s.finals = nil
	return finals
}

// unlock releases s.mu, then submits the final scores queued while it was held
func (s *gameServiceImpl) unlock() {
	finals := s.takeFinals()
	s.mu.Unlock()
	s.submitFinals(finals)
}

func (s *gameServiceImpl) submitFinals(finals []LeaderboardEntry) {
	if len(finals) == 0 || s.leaderboard == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
	defer cancel()

	for _, entry := range finals {
		if err := s.leaderboard.Submit(ctx, entry); err != nil {
			s.logger.Warn("leaderboard submit failed", "session_id", entry.SessionID, "player", entry.Player, "error", err)
		}
	}
}
