package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"
	"golang.org/x/sync/errgroup"

	"github.com/Notifuse/visualeditor/config"
	"github.com/Notifuse/visualeditor/internal/database"
	"github.com/Notifuse/visualeditor/internal/domain"
	httpHandler "github.com/Notifuse/visualeditor/internal/http"
	"github.com/Notifuse/visualeditor/internal/http/middleware"
	"github.com/Notifuse/visualeditor/internal/repository"
	"github.com/Notifuse/visualeditor/internal/service"
	"github.com/Notifuse/visualeditor/pkg/dragdrop"
	"github.com/Notifuse/visualeditor/pkg/logger"
	"github.com/Notifuse/visualeditor/pkg/tracing"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetEditorService() *service.EditorService

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitDB() error
	InitTracing() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config     *config.Config
	logger     logger.Logger
	db         *sql.DB
	httpClient domain.HTTPClient

	// Repositories and gateways
	draftRepo domain.DraftRepository
	gateway   domain.TemplateGateway

	// Services
	editorService *service.EditorService

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// autosaveDone is closed once the autosave loop has flushed and returned
	autosaveDone chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithHTTPClient sets the client used to reach the templates backend
func WithHTTPClient(client domain.HTTPClient) AppOption {
	return func(a *App) {
		a.httpClient = client
	}
}

// WithTemplateGateway replaces the HTTP templates gateway
func WithTemplateGateway(gateway domain.TemplateGateway) AppOption {
	return func(a *App) {
		a.gateway = gateway
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.InitTracing(tracingConfig); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if tracingConfig.Enabled {
		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitDB initializes the drafts database connection
func (a *App) InitDB() error {
	// Skip if a database was injected
	if a.db != nil {
		return nil
	}

	password := a.config.Database.Password
	maskedPassword := ""
	if len(password) > 0 {
		maskedPassword = fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
	}
	a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, user %s, sslmode %s, password: %s, dbname: %s", a.config.Database.Host, a.config.Database.Port, a.config.Database.User, a.config.Database.SSLMode, maskedPassword, a.config.Database.DBName))

	// If tracing is enabled, wrap the postgres driver
	driverName := "postgres"
	if a.config.Tracing.Enabled {
		var err error
		driverName, err = ocsql.Register(driverName, ocsql.WithAllTraceOptions())
		if err != nil {
			return fmt.Errorf("failed to register opencensus sql driver: %w", err)
		}
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	db, err := database.Connect(&a.config.Database, driverName)
	if err != nil {
		a.logger.Error(err.Error())
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	a.db = db
	return nil
}

// InitRepositories initializes all repositories
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	a.draftRepo = repository.NewDraftRepository(a.db)
	return nil
}

// InitServices initializes the templates gateway and the editor service
func (a *App) InitServices() error {
	if a.draftRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	if a.gateway == nil {
		client := a.httpClient
		if client == nil && a.config.Tracing.Enabled {
			client = tracing.WrapHTTPClient(&http.Client{Timeout: a.config.Backend.Timeout})
		}
		a.gateway = service.NewTemplateGateway(
			a.config.Backend.TemplatesURL,
			a.config.Backend.CSRFToken,
			a.config.Backend.Timeout,
			client,
			a.logger,
		)
	}

	editorCfg := a.config.Editor
	drag := dragdrop.DefaultConfig()
	if editorCfg.DragThreshold > 0 {
		drag.Threshold = editorCfg.DragThreshold
	}
	if editorCfg.AutoScrollEdge > 0 {
		drag.AutoScrollEdge = editorCfg.AutoScrollEdge
	}
	if editorCfg.AutoScrollSpeed > 0 {
		drag.AutoScrollSpeed = editorCfg.AutoScrollSpeed
	}

	a.editorService = service.NewEditorService(a.gateway, a.draftRepo, a.logger, service.EditorServiceConfig{
		HistoryLimit:     editorCfg.HistoryLimit,
		Drag:             drag,
		SessionTTL:       editorCfg.SessionTTL,
		AutosaveInterval: editorCfg.AutosaveInterval,
		DraftRetention:   editorCfg.DraftRetention,
		PreviewTimeout:   editorCfg.PreviewTimeout,
	})

	return nil
}

// InitHandlers initializes all HTTP handlers and routes
func (a *App) InitHandlers() error {
	if a.editorService == nil {
		return fmt.Errorf("services must be initialized before handlers")
	}

	editorHandler := httpHandler.NewEditorHandler(a.editorService, a.logger)
	editorHandler.RegisterRoutes(a.mux)

	a.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q,"sessions":%d}`, a.config.Version, a.editorService.Sessions())
	})

	return nil
}

// Start starts the HTTP server and the autosave loop. It returns once the
// server stops; http.ErrServerClosed means a regular shutdown.
func (a *App) Start() error {
	if a.isShuttingDown() {
		return http.ErrServerClosed
	}

	var handler http.Handler = a.mux

	// Apply graceful shutdown middleware first (outermost)
	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
		a.logger.Info("OpenCensus tracing middleware enabled")
	}

	handler = middleware.CORSMiddleware(a.config.Server.CORSAllowOrigin)(handler)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("templates_api", a.config.Backend.TemplatesURL).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})
	a.server = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := a.server
	serverStarted := a.serverStarted
	autosaveDone := make(chan struct{})
	a.autosaveDone = autosaveDone
	a.serverMu.Unlock()

	close(serverStarted)

	g, ctx := errgroup.WithContext(a.shutdownCtx)

	g.Go(func() error {
		defer close(autosaveDone)
		return a.editorService.RunAutosave(ctx)
	})

	g.Go(func() error {
		if a.config.Server.SSL.Enabled {
			a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
			return server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
		}
		return server.ListenAndServe()
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	// Signal shutdown to all components, the autosave loop included
	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources(ctx)
	}

	activeCount := a.getActiveRequestCount()
	a.logger.WithField("active_requests", activeCount).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second // Leave 1 second buffer
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	var shutdownErr error

	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(shutdownCtx); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

// cleanupResources waits for the last autosave and closes the database
func (a *App) cleanupResources(ctx context.Context) error {
	a.logger.Info("Cleaning up resources...")

	a.serverMu.RLock()
	autosaveDone := a.autosaveDone
	a.serverMu.RUnlock()

	if autosaveDone != nil {
		select {
		case <-autosaveDone:
			a.logger.Info("Final autosave completed")
		case <-ctx.Done():
			a.logger.Warn("Final autosave did not finish before the shutdown deadline")
		}
	}

	if a.db != nil {
		if a.config.Tracing.Enabled {
			if err := ocsql.RecordStats(a.db, 5*time.Second); err != nil {
				a.logger.WithField("error", err).Error("Failed to record final database stats for tracing")
			}
		}

		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err).Error("Error closing database connection")
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created and initialized.
// Returns true if the server started successfully, false if context expired.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		a.logger.Error("serverStarted channel is nil - server initialization error")
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting visual editor")

	steps := []func() error{
		a.InitTracing,
		a.InitDB,
		a.InitRepositories,
		a.InitServices,
		a.InitHandlers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection
func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetEditorService() *service.EditorService {
	return a.editorService
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout).Info("Shutdown timeout configured")
}

// GetShutdownContext returns the shutdown context for components that need to watch for shutdown
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and refuses new ones
// once shutdown has begun
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// IsServerClosed reports whether err is the regular result of Shutdown
func IsServerClosed(err error) bool {
	return err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled)
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
