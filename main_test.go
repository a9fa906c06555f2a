package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/service"
	"github.com/wricardo/tmge/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

// runCommand parses args with the real root command and runs action in place of the selected mode
func runCommand(t *testing.T, args []string, action cli.ActionFunc) {
	t.Helper()
	app := newApp()
	for _, sub := range app.Commands {
		sub.Action = action
	}
	if err := app.Run(context.Background(), append([]string{"tmge"}, args...)); err != nil {
		t.Fatalf("command failed: %v", err)
	}
}

func TestFlagDefaults(t *testing.T) {
	called := false
	runCommand(t, []string{"server"}, func(ctx context.Context, cmd *cli.Command) error {
		called = true
		if port := cmd.Int("port"); port <= 0 || port > 65535 {
			t.Errorf("Invalid default port: %d", port)
		}
		if cmd.String("host") == "" {
			t.Error("Host should have a default value")
		}
		if cmd.String("config-dir") != "configs" {
			t.Errorf("Expected default config dir configs, got %s", cmd.String("config-dir"))
		}
		if cmd.Duration("tick-interval") <= 0 {
			t.Error("Tick interval should be positive")
		}
		if cmd.String("redis-url") != "" {
			t.Error("Redis should be disabled by default")
		}
		return nil
	})
	if !called {
		t.Error("Expected server command to run")
	}
}

func TestDefaultCommandAndEnv(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("TICK_INTERVAL", "250ms")

	called := false
	runCommand(t, nil, func(ctx context.Context, cmd *cli.Command) error {
		called = true
		if cmd.Name != "server" {
			t.Errorf("Expected default command server, got %s", cmd.Name)
		}
		if cmd.Int("port") != 9191 {
			t.Errorf("Expected port from env 9191, got %d", cmd.Int("port"))
		}
		if cmd.Duration("tick-interval") != 250*time.Millisecond {
			t.Errorf("Expected tick interval 250ms, got %s", cmd.Duration("tick-interval"))
		}
		return nil
	})
	if !called {
		t.Error("Expected default command to run")
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	runCommand(t, []string{"--config-dir", "configs", "server"}, func(ctx context.Context, cmd *cli.Command) error {
		svc, err := initializeServices(ctx, cmd)
		if err != nil {
			t.Fatalf("Failed to initialize services: %v", err)
		}
		defer svc.close()

		info, err := svc.game.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "candycrush"})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.Variant != engine.VariantCandyCrush {
			t.Errorf("Expected candycrush session, got %s", info.Variant)
		}
		if svc.sessions.Count() != 1 {
			t.Errorf("Expected 1 session, got %d", svc.sessions.Count())
		}
		return nil
	})
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	runCommand(t, []string{"--config-dir", "/non/existent/path", "server"}, func(ctx context.Context, cmd *cli.Command) error {
		if _, err := initializeServices(ctx, cmd); err == nil {
			t.Error("Expected error for non-existent config directory")
		}
		return nil
	})
}

func TestInitializeServices_Redis(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	mr := miniredis.RunT(t)

	runCommand(t, []string{"--redis-url", "redis://" + mr.Addr(), "server"}, func(ctx context.Context, cmd *cli.Command) error {
		svc, err := initializeServices(ctx, cmd)
		if err != nil {
			t.Fatalf("Failed to initialize services with redis: %v", err)
		}
		svc.close()
		return nil
	})

	runCommand(t, []string{"--redis-url", "redis://127.0.0.1:1", "server"}, func(ctx context.Context, cmd *cli.Command) error {
		if _, err := initializeServices(ctx, cmd); err == nil {
			t.Error("Expected error for unreachable redis")
		}
		return nil
	})
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse MCP response: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"create_session", "send_input", "control_session", "leaderboard"} {
		if !names[want] {
			t.Errorf("Expected tool %s in tools/list, got %v", want, names)
		}
	}
}

func TestExternalServerRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !externalServerRunning(context.Background(), server.URL) {
		t.Error("Expected healthy server to be detected")
	}
	if externalServerRunning(context.Background(), "http://127.0.0.1:1") {
		t.Error("Expected unreachable server to be reported as down")
	}
}
