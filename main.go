// Command voidgrid runs the Void Grid puzzle game.
//
// Subcommands:
//  1. "server" (default) runs the HTTP server exposing the REST API, the WebSocket hub and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a level in the terminal, locally or against a running server
//  4. "solve" searches for the shortest winning sequence of a level
//
// Flags control host/port, the level and session directories, PostgreSQL
// persistence, debug logging and optional ngrok tunneling for external
// access during development. Every flag also reads an environment variable,
// and a .env file is loaded first when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/voidgrid/api"
	"github.com/wricardo/voidgrid/game/config"
	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
	"github.com/wricardo/voidgrid/game/session"
	"github.com/wricardo/voidgrid/game/solver"
	"github.com/wricardo/voidgrid/logger"
	"github.com/wricardo/voidgrid/terminal"
	"github.com/wricardo/voidgrid/transport/mcp"
	"github.com/wricardo/voidgrid/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Void Grid"
)

// options holds the settings shared by every subcommand
type options struct {
	host        string
	port        int
	levelsDir   string
	sessionsDir string
	databaseURL string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
	debug       bool
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        cmd.Int("port"),
		levelsDir:   cmd.String("levels-dir"),
		sessionsDir: cmd.String("sessions-dir"),
		databaseURL: cmd.String("database-url"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
		debug:       cmd.Bool("debug"),
	}
}

// setupLogging configures the process logger; --debug overrides LOG_LEVEL
func setupLogging(opts options) {
	logger.Init()
	if opts.debug {
		logger.Log.SetLevel(logrus.DebugLevel)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "levels-dir", Value: "levels", Usage: "directory containing level files", Sources: cli.EnvVars("LEVELS_DIR")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for session files", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "database-url", Usage: "PostgreSQL connection string; sessions are stored there instead of files", Sources: cli.EnvVars("DATABASE_URL")},
		&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "voidgrid",
		Usage:   "deterministic grid puzzle server, MCP tools and terminal client",
		Version: Version,
		Flags:   globalFlags(),
		Action:  serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run the MCP stdio server, with an internal HTTP API when none is running",
				Action:  mcpAction,
			},
			{
				Name:      "play",
				Usage:     "play a level in the terminal",
				ArgsUsage: "[level id or file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "server", Usage: "play on a running server at this URL instead of locally"},
					&cli.StringFlag{Name: "session", Usage: "join an existing session on --server"},
				},
				Action: playAction,
			},
			{
				Name:      "solve",
				Usage:     "find the shortest winning sequence of a level",
				ArgsUsage: "[level id or file]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "depth", Value: 40, Usage: "maximum number of turns"},
					&cli.IntFlag{Name: "max-states", Value: solver.DefaultMaxStates, Usage: "maximum number of distinct states"},
					&cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "time allowed for the search"},
				},
				Action: solveAction,
			},
		},
	}
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services is the wired application core
type services struct {
	game        service.GameService
	levels      *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	close       func()
}

// initializeServices wires the level manager, session persistence and the
// game service. PostgreSQL is used when a database URL is set, session
// files otherwise.
func initializeServices(opts options) (*services, error) {
	log := logger.WithComponent("main")

	levels, err := config.NewManager(opts.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	svc := &services{levels: levels, close: func() {}}

	if opts.databaseURL != "" {
		pg, err := session.NewPostgresPersistence(opts.databaseURL, levels)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres persistence: %w", err)
		}
		svc.persistence = pg
		svc.close = func() {
			if err := pg.Close(); err != nil {
				log.WithError(err).Warn("failed to close database")
			}
		}
		log.Info("sessions stored in PostgreSQL")
	} else {
		fp, err := session.NewFilePersistence(opts.sessionsDir, levels)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svc.persistence = fp
		log.WithField("dir", opts.sessionsDir).Info("sessions stored on disk")
	}

	svc.sessions = session.NewManagerWithPersistence(svc.persistence)
	if err := svc.sessions.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	svc.game = service.NewGameService(svc.sessions, levels, service.WithLogger(logger.WithComponent("service")))
	return svc, nil
}

// startBackgroundRoutines runs session cleanup and persistence sync until ctx is done
func (s *services) startBackgroundRoutines(ctx context.Context) {
	go sessionCleanupRoutine(ctx, s.sessions, time.Hour, 24*time.Hour)
	go persistenceSyncRoutine(ctx, s.sessions, s.persistence, 5*time.Second)
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	setupLogging(opts)

	svc, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer svc.close()
	svc.startBackgroundRoutines(ctx)

	return runHTTPServer(ctx, opts, svc.game)
}

// newHandler builds the REST API with the WebSocket hub and the /mcp
// endpoint proxying to baseURL
func newHandler(ctx context.Context, game service.GameService, baseURL string) http.Handler {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(game, hub)
	apiServer.Handle("/mcp", mcp.NewClient(baseURL).HTTPHandler())
	return apiServer
}

// runHTTPServer serves the API until ctx is done. If ngrok is enabled it
// also serves through a public tunnel.
func runHTTPServer(ctx context.Context, opts options, game service.GameService) error {
	log := logger.WithComponent("http")
	addr := opts.addr()
	handler := newHandler(ctx, game, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"addr":      addr,
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("%s v%s listening", AppName, Version)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler, log)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler, log *logrus.Entry) {
	if opts.ngrokAuth == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.WithField("domain", opts.ngrokDomain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.WithFields(logrus.Fields{
		"url":       url,
		"api":       url + "/api",
		"websocket": url + "/ws?session=<session_id>",
		"mcp":       url + "/mcp",
	}).Info("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically drops sessions that have not been
// accessed within maxAge from memory
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(maxAge)
		}
	}
}

// persistenceSyncRoutine removes sessions from memory once their persisted
// copy is gone, so deleting a session file ends the session
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	if persistence == nil {
		return
	}
	log := logger.WithComponent("sync")

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.WithField("pruned", pruned).Info("pruned orphaned sessions from memory")
			}
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
		}
	}
	return pruned
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	setupLogging(opts)

	svc, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer svc.close()

	return runStdioMCP(ctx, opts, svc.game)
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on the configured address; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options, game service.GameService) error {
	log := logger.WithComponent("mcp")

	baseURL := "http://" + opts.addr()
	if apiAvailable(baseURL) {
		log.WithField("url", baseURL).Info("using external API server")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: newHandler(ctx, game, baseURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.WithField("url", baseURL).Info("started internal API server")
	}

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a Void Grid API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// resolveLevel loads a level from a file path, or by id from the levels
// directory. An empty ref picks the default level.
func resolveLevel(levelsDir, ref string) (*level.Level, error) {
	if ref != "" && level.IsLevelFile(ref) {
		if _, err := os.Stat(ref); err == nil {
			return level.Load(ref)
		}
	}

	levels, err := config.NewManager(levelsDir)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		_, l := levels.GetDefault()
		return l, nil
	}
	return levels.LoadLevel(ref)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	setupLogging(opts)

	// the screen owns the terminal, so logs go to a file or nowhere
	logger.Log.SetOutput(io.Discard)
	if opts.debug {
		f, err := os.OpenFile("voidgrid.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.Log.SetOutput(f)
	}
	log := logger.WithComponent("play")

	game, err := newTerminalGame(ctx, cmd, opts, log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return terminal.Run(ctx, screen, game, log)
}

func newTerminalGame(ctx context.Context, cmd *cli.Command, opts options, log *logrus.Entry) (terminal.Game, error) {
	ref := cmd.Args().First()

	if baseURL := cmd.String("server"); baseURL != "" {
		if id := cmd.String("session"); id != "" {
			return terminal.JoinRemoteGame(ctx, baseURL, id, log)
		}
		return terminal.CreateRemoteGame(ctx, baseURL, ref, log)
	}

	l, err := resolveLevel(opts.levelsDir, ref)
	if err != nil {
		return nil, err
	}
	return terminal.NewLocalGame(l)
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	setupLogging(opts)

	l, err := resolveLevel(opts.levelsDir, cmd.Args().First())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	result, err := solver.Solve(ctx, l, cmd.Int("depth"),
		solver.WithMaxStates(cmd.Int("max-states")),
		solver.WithLogger(logger.WithComponent("solver")),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", l.Name, err)
	}

	fmt.Printf("%s: solved in %d turns (%d states explored)\n", l.Name, len(result.Choices), result.Explored)
	fmt.Println(formatChoices(result.Choices))
	return nil
}

func formatChoices(choices []engine.Choice) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
