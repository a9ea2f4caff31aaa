package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"todo_server/internal/config"
	"todo_server/internal/handlers"
	"todo_server/internal/logger"
	"todo_server/internal/repository"
	"todo_server/internal/repository/db"
	"todo_server/internal/server"
	"todo_server/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const adminShutdownTimeout = 5 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load configs/config.yml + env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open audit DB when enabled
	auditDB, err := openAuditDB(cfg.Audit, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	if auditDB != nil {
		defer func() {
			if cerr := auditDB.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()
	}

	// wire dependencies
	repos := repository.NewRepository(auditDB)
	services := service.NewService(repos, cfg.Auth.BcryptCost)
	policy := handlers.CompatPolicy
	if cfg.Auth.UnifyFailureStatus {
		policy = handlers.UnifiedPolicy
	}
	h := handlers.NewHandler(services, policy, log)

	tcp := server.New(server.Config{
		Addr:          cfg.Server.Addr(),
		Mode:          cfg.Server.Mode,
		Limits:        cfg.Server.Limits,
		ShutdownGrace: cfg.Server.ShutdownGrace,
	}, h, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, tcp, h, log); err != nil {
		log.Errorw("server stopped with error", "err", err)
		stop()
		os.Exit(1)
	}
	log.Infow("server stopped")
}

// run serves the task listener and, if configured, the admin listener until
// ctx is cancelled or either fails.
func run(ctx context.Context, cfg config.Config, tcp *server.Server, h *handlers.Handler, log *logger.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return tcp.ListenAndServe(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		log.Infow("shutting down task listener...")
		return tcp.Shutdown(context.Background())
	})

	if cfg.Admin.Port > 0 {
		admin := server.NewHTTPServer(strconv.Itoa(cfg.Admin.Port), h.InitAdminRoutes())
		g.Go(func() error {
			log.Infow("admin listening", "port", cfg.Admin.Port)
			return admin.Run()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
			defer cancel()
			return admin.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// openAuditDB opens the SQLite audit store; nil when auditing is disabled.
func openAuditDB(cfg config.AuditConfig, log *logger.Logger) (*sql.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	path := cfg.Path
	if path == "" {
		log.Infow("audit.path not set in config; using default file", "default", "audit.db")
		path = "audit.db"
	}
	return db.InitDB(path)
}
