// Command tmge starts the tile-matching game engine server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket push and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (each with an environment fallback) control host/port, the config
// directory, the tick interval, logging, the Redis leaderboard and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tmge/api"
	"github.com/wricardo/tmge/game/config"
	"github.com/wricardo/tmge/game/leaderboard"
	"github.com/wricardo/tmge/game/service"
	"github.com/wricardo/tmge/game/session"
	"github.com/wricardo/tmge/game/variants"
	"github.com/wricardo/tmge/logger"
	"github.com/wricardo/tmge/transport/mcp"
	"github.com/wricardo/tmge/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Matching Game Engine Server"
)

const (
	cleanupInterval = time.Hour
	sessionTTL      = 24 * time.Hour
)

// newApp builds the root command. Every flag can also come from the environment.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "tmge",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.DurationFlag{Name: "tick-interval", Value: 50 * time.Millisecond, Usage: "How often running games are advanced", Sources: cli.EnvVars("TICK_INTERVAL")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.StringFlag{Name: "redis-url", Usage: "Redis URL for the leaderboard (in-memory when empty)", Sources: cli.EnvVars("REDIS_URL")},
			&cli.IntFlag{Name: "leaderboard-size", Value: leaderboard.DefaultCapacity, Usage: "Entries kept per variant", Sources: cli.EnvVars("LEADERBOARD_SIZE")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Init(cmd.String("log-level"), cmd.String("log-format") == "json")
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runHTTPServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, with an internal HTTP server when none is running",
				Action:  runStdioMCP,
			},
		},
	}
}

// main loads .env, then runs the selected mode until a signal arrives.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.Before = chainBefore(app.Before, func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if envErr == nil {
			logger.Info("loaded environment variables from .env file")
		} else if !errors.Is(envErr, os.ErrNotExist) {
			logger.Warn("error loading .env file", "error", envErr)
		}
		return ctx, nil
	})

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func chainBefore(first, second cli.BeforeFunc) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		ctx, err := first(ctx, cmd)
		if err != nil {
			return ctx, err
		}
		return second(ctx, cmd)
	}
}

// services bundles what both modes need
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	close    func()
}

// initializeServices wires config and session managers, the leaderboard
// store and the WebSocket hub into the game service.
func initializeServices(ctx context.Context, cmd *cli.Command) (*services, error) {
	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	registry, err := variants.NewRegistry()
	if err != nil {
		return nil, err
	}
	sessionManager := session.NewManager(registry)

	var store service.LeaderboardStore
	closeStore := func() {}
	if redisURL := cmd.String("redis-url"); redisURL != "" {
		redisStore, err := leaderboard.Connect(ctx, redisURL, cmd.Int("leaderboard-size"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect leaderboard store: %w", err)
		}
		logger.Info("using redis leaderboard")
		store = redisStore
		closeStore = func() {
			if err := redisStore.Close(); err != nil {
				logger.Warn("closing redis leaderboard", "error", err)
			}
		}
	} else {
		store = leaderboard.NewMemoryStore(cmd.Int("leaderboard-size"))
	}

	hub := websocket.NewHub()
	gameService := service.NewGameService(sessionManager, configManager, registry,
		service.WithBroadcaster(hub),
		service.WithLeaderboard(store),
		service.WithLogger(logger.With("component", "service")),
	)

	hub.SetInputHandler(func(ctx context.Context, sessionID string, req service.InputRequest) error {
		_, err := gameService.HandleInput(ctx, sessionID, req)
		return err
	})

	return &services{
		game:     gameService,
		sessions: sessionManager,
		hub:      hub,
		close:    closeStore,
	}, nil
}

// start launches the hub, the game ticker and the cleanup routine. They stop with ctx.
func (s *services) start(ctx context.Context, tickInterval time.Duration) {
	go s.hub.Run(ctx)
	go s.game.Run(ctx, tickInterval)
	go sessionCleanupRoutine(ctx, s.game)
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, gameService service.GameService) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := gameService.CleanupExpired(ctx, sessionTTL); removed > 0 {
				logger.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// mcpHandler serves single JSON-RPC messages posted to /mcp
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc.start(ctx, cmd.Duration("tick-interval"))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svc.game, svc.hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("starting", "app", AppName, "version", Version, "mode", "server")

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serverErr:
		logger.Error("HTTP server failed", "error", err)
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	log := logger.With("component", "ngrok")

	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	log.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp",
	)

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("ngrok server error", "error", err)
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API at http://<host>:<port>; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log := logger.With("mode", "mcp")

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := externalURL

	if externalServerRunning(ctx, externalURL) {
		log.Info("external API server found, using it for MCP", "url", externalURL)
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, cmd)
		if err != nil {
			return err
		}
		defer svc.close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		svc.start(ctx, cmd.Duration("tick-interval"))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info("internal HTTP server started", "url", baseURL)
	}

	log.Info("MCP stdio server ready", "api", baseURL)
	return mcp.NewClient(baseURL).Serve()
}

// externalServerRunning probes the health endpoint of an already running server
func externalServerRunning(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Debug("health probe failed", "url", baseURL, "error", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
