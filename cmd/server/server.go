package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/logger"
	"deep-agent/pkg/metrics"
	"deep-agent/pkg/overrides"
	"deep-agent/pkg/utils"
)

// ServerCmd represents the server command
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the evaluation API server",
	Long: `Start the HTTP API server exposing the evaluation and refinement subsystem.

The server provides:
- Interaction logging endpoints that feed the performance evaluator
- On-demand agent performance evaluation and refinement trigger checks
- System prompt override management (save, inspect, list, remove)
- System health and performance trend reports

Examples:
  deep-agent server                          # Start server with default settings
  deep-agent server --port 8000              # Start on a custom port
  deep-agent server --cors-origins "*"       # Enable CORS for all origins`,
	Run: runServer,
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	CORSOrigins []string `json:"cors_origins"`
	DBPath      string   `json:"db_path"`
}

// API is the evaluation HTTP server: the router plus the wired evaluation
// core it serves.
type API struct {
	config ServerConfig

	db        database.Database
	overrides *overrides.Service
	evaluator *evaluation.Evaluator
	trigger   *evaluation.Trigger

	logger utils.ExtendedLogger
}

func init() {
	ServerCmd.Flags().Int("port", 8080, "server port")
	ServerCmd.Flags().String("host", "0.0.0.0", "server host")
	ServerCmd.Flags().String("cors-origins", "", "comma-separated CORS origins (empty disables CORS)")

	viper.BindPFlag("server.port", ServerCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", ServerCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.cors-origins", ServerCmd.Flags().Lookup("cors-origins"))
}

func runServer(cmd *cobra.Command, args []string) {
	level := viper.GetString("log-level")
	if viper.GetBool("debug") {
		level = "debug"
	}
	log, err := logger.CreateLogger(viper.GetString("log-file"), level, viper.GetString("log-format"), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	config := ServerConfig{
		Port:   viper.GetInt("server.port"),
		Host:   viper.GetString("server.host"),
		DBPath: viper.GetString("db"),
	}
	if origins := viper.GetString("server.cors-origins"); origins != "" {
		config.CORSOrigins = strings.Split(origins, ",")
	}

	api, err := NewAPI(config, log)
	if err != nil {
		log.Errorf("Failed to initialize server: %v", err)
		os.Exit(1)
	}
	defer api.Close()

	if err := api.Run(cmd.Context()); err != nil {
		log.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}

// NewAPI opens the database and wires the evaluation core behind the router
func NewAPI(config ServerConfig, log utils.ExtendedLogger) (*API, error) {
	db, err := database.NewSQLiteDB(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	overrideService, err := overrides.NewService(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	source, err := metrics.NewSQLiteSource(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	evaluator, err := evaluation.NewEvaluator(source, evaluation.DefaultEvaluatorConfig(), log)
	if err != nil {
		db.Close()
		return nil, err
	}

	trigger, err := evaluation.NewTrigger(evaluator, db, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &API{
		config:    config,
		db:        db,
		overrides: overrideService,
		evaluator: evaluator,
		trigger:   trigger,
		logger:    log,
	}, nil
}

// Close releases the server's database handle
func (a *API) Close() error {
	return a.db.Close()
}

// Router builds the HTTP route table
func (a *API) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", a.healthHandler()).Methods("GET")

	OverrideRoutes(router, a.overrides)
	EvaluationRoutes(router, a.db, a.evaluator, a.trigger)

	if len(a.config.CORSOrigins) > 0 {
		router.Use(corsMiddleware(a.config.CORSOrigins))
	}
	router.Use(a.loggingMiddleware)

	return router
}

// Run serves HTTP until the context is cancelled or a shutdown signal arrives
func (a *API) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("Evaluation API server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.Infof("Received signal %s, shutting down", sig)
	case <-ctx.Done():
		a.logger.Info("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// healthHandler reports server and database liveness
func (a *API) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		}
		code := http.StatusOK
		if err := a.db.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database_error"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

// loggingMiddleware logs one line per request
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.logger.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

// corsMiddleware answers preflight requests and sets CORS headers
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := strings.Join(origins, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
