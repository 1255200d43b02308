// Command turtle-race-game starts the Turtle Race Game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings are read from the environment (and a .env file when present) and
// can be overridden with flags. Optional ngrok tunneling gives easy external
// access during development.
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

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/turtle-race-game/api"
	"github.com/wricardo/turtle-race-game/game/config"
	"github.com/wricardo/turtle-race-game/game/service"
	"github.com/wricardo/turtle-race-game/game/session"
	"github.com/wricardo/turtle-race-game/transport/mcp"
	"github.com/wricardo/turtle-race-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Turtle Race Game Server"
)

const sessionCleanupInterval = time.Hour

// Settings are the process settings. Environment values are the defaults;
// flags set on the command line win.
type Settings struct {
	Port           int           `env:"PORT"            envDefault:"8080"`
	Host           string        `env:"HOST"            envDefault:"localhost"`
	ConfigDir      string        `env:"CONFIG_DIR"      envDefault:"configs"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT"      envDefault:"console"`
	SessionMaxAge  time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	NgrokEnabled   bool          `env:"NGROK_ENABLED"`
	NgrokAuthToken string        `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string        `env:"NGROK_DOMAIN"`
}

// Addr returns the host:port the HTTP server listens on
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// loadSettings reads .env (if present) and the process environment
func loadSettings() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.NgrokAuthToken == "" {
		s.NgrokAuthToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
	}
	return s, nil
}

// applyFlags overrides settings with the flags given on the command line
func applyFlags(cmd *cli.Command, s *Settings) {
	if cmd.IsSet("port") {
		s.Port = cmd.Int("port")
	}
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("ngrok") {
		s.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		s.NgrokAuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.NgrokDomain = cmd.String("ngrok-domain")
	}
}

// newLogger builds a zap logger. Both formats write to stderr so stdio MCP
// traffic on stdout stays clean.
func newLogger(level, format string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or console)", format)
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// newCommand builds the CLI. The root command runs the HTTP server.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "turtle-race-game",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (env PORT, default 8080)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (env HOST, default localhost)"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game configurations (env CONFIG_DIR)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (env LOG_LEVEL)"},
			&cli.StringFlag{Name: "log-format", Usage: "json or console (env LOG_FORMAT)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (env NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (env NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (env NGROK_DOMAIN)"},
		},
		Action: serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioAction,
			},
		},
	}
}

// main wires signals to a context and runs the CLI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// setup resolves settings, builds the logger and initializes services
func setup(ctx context.Context, cmd *cli.Command, mode string) (Settings, *zap.Logger, service.GameService, error) {
	settings, err := loadSettings()
	if err != nil {
		return Settings{}, nil, nil, err
	}
	applyFlags(cmd, &settings)

	logger, err := newLogger(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return Settings{}, nil, nil, err
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", mode))

	gameService, sessions, err := initializeServices(settings, logger)
	if err != nil {
		logger.Sync()
		return Settings{}, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	go runSessionCleanup(ctx, sessions, settings.SessionMaxAge, sessionCleanupInterval, logger)

	return settings, logger, gameService, nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	settings, logger, gameService, err := setup(ctx, cmd, "server")
	if err != nil {
		return err
	}
	defer logger.Sync()
	return runHTTPServer(ctx, settings, gameService, logger)
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	settings, logger, gameService, err := setup(ctx, cmd, "stdio-mcp")
	if err != nil {
		return err
	}
	defer logger.Sync()
	return runStdioMCPWithInternalServer(ctx, settings, gameService, logger)
}

// initializeServices wires session/config managers and the game service.
func initializeServices(settings Settings, logger *zap.Logger) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(session.WithLogger(logger))
	gameService := service.NewGameService(sessionManager, configManager, service.WithLogger(logger))

	return gameService, sessionManager, nil
}

// runSessionCleanup prunes idle sessions every interval until ctx is done
func runSessionCleanup(ctx context.Context, sessions *session.Manager, maxAge, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Debug("session cleanup", zap.Int("removed", removed), zap.Int("remaining", sessions.Count()))
			}
		}
	}
}

// newMainHandler mounts the REST/WebSocket API at the root and the MCP
// proxy at /mcp.
func newMainHandler(apiServer http.Handler, mcpServer *server.MCPServer) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpServer))
	return mainRouter
}

// mcpHandler serves one JSON-RPC message per POST request
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns once
// ctx is cancelled and the server has shut down.
func runHTTPServer(ctx context.Context, settings Settings, gameService service.GameService, logger *zap.Logger) error {
	hub := websocket.NewHub(websocket.WithLogger(logger))
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub, api.WithLogger(logger))

	addr := settings.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newMainHandler(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("rest", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, settings, mainRouter, logger)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(runErr))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, settings Settings, handler http.Handler, logger *zap.Logger) {
	if settings.NgrokAuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
		logger.Info("using custom ngrok domain", zap.String("domain", settings.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.NgrokAuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("rest", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalServerAvailable reports whether a REST server already answers
// health checks at baseURL.
func externalServerAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer serves MCP over stdio. It proxies to an
// existing REST server at the configured address, or starts an internal
// one on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, settings Settings, gameService service.GameService, logger *zap.Logger) error {
	externalURL := fmt.Sprintf("http://%s", settings.Addr())
	baseURL := externalURL

	if externalServerAvailable(externalURL) {
		logger.Info("using external HTTP server", zap.String("url", externalURL))
	} else {
		hub := websocket.NewHub(websocket.WithLogger(logger))
		go hub.Run(ctx)

		apiServer := api.NewServer(gameService, hub, api.WithLogger(logger))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to start internal server: %w", err)
		}

		internalServer := &http.Server{Handler: apiServer}
		go func() {
			if err := internalServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server failed", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			internalServer.Close()
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.Info("started internal HTTP server", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
