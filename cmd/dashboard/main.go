package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/client"
	"github.com/echoclass/classboard/internal/config"
	"github.com/echoclass/classboard/internal/database"
	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/feed"
	"github.com/echoclass/classboard/internal/handler"
	"github.com/echoclass/classboard/internal/ledger"
	"github.com/echoclass/classboard/internal/middleware"
	"github.com/echoclass/classboard/internal/reconcile"
	"github.com/echoclass/classboard/internal/router"
	"github.com/echoclass/classboard/internal/store"
	"github.com/echoclass/classboard/internal/syncer"
	"github.com/echoclass/classboard/internal/view"
	"github.com/echoclass/classboard/internal/workflow"
)

const redialDelay = 3 * time.Second

// feedTracker reports the state of the most recent push connection,
// surviving redials so the health endpoint always has an answer.
type feedTracker struct {
	mu    sync.RWMutex
	state dto.ConnState
}

func (t *feedTracker) State() dto.ConnState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *feedTracker) set(state dto.ConnState) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	entityStore := store.New()
	reconciler := reconcile.New(entityStore, logger)
	restClient := client.New(cfg.BackendHTTPBase, cfg.AccessToken, logger)
	hideList := view.NewHideList(redisClient, cfg.ClassroomCode, logger)
	engine := view.NewEngine(entityStore, hideList, logger)
	scores := ledger.New(entityStore, logger)
	machine := workflow.New(entityStore, reconciler, restClient, cfg.ClassroomCode, validate, logger)
	snapshotSyncer := syncer.New(restClient, reconciler, cfg.ClassroomCode, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := hideList.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("hide list unavailable, starting empty")
	}
	if err := snapshotSyncer.Seed(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial snapshot incomplete, push events will fill in")
	}

	tracker := &feedTracker{state: dto.ConnConnecting}
	go runFeed(ctx, cfg, snapshotSyncer, tracker, logger)
	go reseedLoop(ctx, cfg.SnapshotInterval, snapshotSyncer, logger)

	dashboardHandler := handler.NewDashboardHandler(engine, hideList, logger)
	workflowHandler := handler.NewWorkflowHandler(machine, validate, logger)
	reviewHandler := handler.NewReviewHandler(entityStore, restClient, scores, reconciler, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DashboardHandler: dashboardHandler,
		WorkflowHandler:  workflowHandler,
		ReviewHandler:    reviewHandler,
		FeedReporter:     tracker,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

// runFeed keeps a push connection alive, re-seeding from snapshots after
// every reconnect so missed events are reconciled away.
func runFeed(ctx context.Context, cfg config.Config, s *syncer.Syncer, tracker *feedTracker, logger zerolog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		tracker.set(dto.ConnConnecting)
		f, err := feed.Dial(ctx, cfg.BackendWSBase, cfg.AccessToken, cfg.ClassroomCode, tracker.set, logger)
		if err != nil {
			tracker.set(dto.ConnClosed)
			logger.Warn().Err(err).Dur("retry_in", redialDelay).Msg("push channel dial failed")
			if !sleepCtx(ctx, redialDelay) {
				return
			}
			continue
		}

		// The channel has no replay, so a fresh snapshot covers whatever
		// was missed while disconnected.
		if err := s.Seed(ctx); err != nil {
			logger.Warn().Err(err).Msg("post-connect snapshot incomplete")
		}

		if err := s.Run(ctx, f); err != nil {
			f.Close()
			return
		}
		f.Close()

		if !sleepCtx(ctx, redialDelay) {
			return
		}
	}
}

// reseedLoop periodically refreshes every snapshot kind, the authoritative
// correction for anything the push channel dropped.
func reseedLoop(ctx context.Context, interval time.Duration, s *syncer.Syncer, logger zerolog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Seed(ctx); err != nil {
				logger.Warn().Err(err).Msg("periodic snapshot incomplete")
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
