package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc"
	"github.com/yangyang7755/activityhub/external/backendapi"
	"github.com/yangyang7755/activityhub/internal/config"
	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/sqlite"
	"github.com/yangyang7755/activityhub/internal/interfaces/httpapi"
	"github.com/yangyang7755/activityhub/internal/platform/cache"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
	idgen "github.com/yangyang7755/activityhub/internal/platform/id"
	"github.com/yangyang7755/activityhub/internal/platform/logging"
	"github.com/yangyang7755/activityhub/internal/platform/resilience"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

// NewHTTPServer wires repositories, the backend client and the services into
// a ready-to-listen server. The returned cleanup stops background work and
// closes the snapshot database; call it after Shutdown.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	httpLogger := logging.NewJSON(cfg.LogLevel)

	bus := eventbus.NewInMemoryBus()
	idGen := idgen.NewRandomGenerator()

	activityRepo := memory.NewActivityRepository(memory.SeedActivities())
	participationRepo := memory.NewParticipationRepository()
	savedRepo := memory.NewSavedRepository()
	clubRepo := memory.NewClubRepository(memory.SeedClubs())
	membershipRepo := memory.NewMembershipRepository(memory.SeedMemberships())
	profileRepo := memory.NewProfileRepository(memory.SeedProfiles())
	reviewRepo := memory.NewReviewRepository()
	completionRepo := memory.NewCompletionRepository()

	cleanup := func(context.Context) error { return nil }

	var snapshots profile.SnapshotStore = memory.NewProfileSnapshotStore()
	if path := strings.TrimSpace(cfg.SnapshotDBPath); path != "" {
		db, err := sqlite.Open(path)
		if err != nil {
			logger.Warn("snapshot db unavailable, profile edits will not survive restarts", "path", path, "error", err)
		} else {
			store := sqlite.NewProfileSnapshotStore(db)
			if err := store.EnsureSchema(ctx); err != nil {
				return nil, nil, fmt.Errorf("ensure snapshot schema: %w", err)
			}
			snapshots = store
			cleanup = func(context.Context) error { return db.Close() }
		}
	}

	var (
		activityBackend      usecase.ActivityBackend
		participationBackend usecase.ParticipationBackend
		savedBackend         usecase.SavedBackend
		clubBackend          usecase.ClubBackend
		profileBackend       usecase.ProfileBackend
		reviewBackend        usecase.ReviewBackend
	)
	if cfg.BackendEnabled {
		client := backendapi.NewClient(backendapi.ClientConfig{
			BaseURL:    cfg.BackendBaseURL,
			Token:      cfg.BackendToken,
			Timeout:    cfg.BackendTimeout,
			MaxRetries: cfg.BackendMaxRetries,
			Logger:     httpLogger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.BackendCircuitEnabled,
				FailureThreshold: cfg.BackendCircuitFailureCount,
				OpenTimeout:      cfg.BackendCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.BackendCircuitHalfOpenMaxReq,
			},
		})
		activityBackend = client
		participationBackend = client
		savedBackend = client
		clubBackend = client
		profileBackend = client
		reviewBackend = client
	} else {
		logger.Info("backend disabled, running on seeded demo data")
	}

	var feedCache *cache.Store
	if cfg.CacheEnabled {
		feedCache = cache.NewStore(cfg.CacheTTL)
	}

	activityService := usecase.NewActivityService(activityRepo, activityBackend, feedCache, bus, idGen, logger)
	participationService := usecase.NewParticipationService(activityRepo, participationRepo, participationBackend, bus, logger)
	savedService := usecase.NewSavedService(savedRepo, activityRepo, savedBackend, logger)
	clubService := usecase.NewClubService(clubRepo, membershipRepo, clubBackend, bus, logger)
	profileService := usecase.NewProfileService(profileRepo, snapshots, profileBackend, bus, memory.SeedCurrentProfile(), logger)
	reviewService := usecase.NewReviewService(reviewRepo, completionRepo, activityRepo, participationRepo, reviewBackend, idGen, logger)

	// Warm the feed and club list concurrently; both degrade to seeded data
	// when the backend is unreachable.
	var warmup conc.WaitGroup
	warmup.Go(func() {
		if err := activityService.Refresh(ctx); err != nil {
			logger.Warn("activity warm-up failed", "error", err)
		}
	})
	warmup.Go(func() {
		if err := clubService.RefreshClubs(ctx); err != nil {
			logger.Warn("club warm-up failed", "error", err)
		}
	})
	warmup.Wait()

	if cfg.SweepInterval > 0 {
		go reviewService.RunSweeper(ctx, cfg.SweepInterval)
	}

	handler := httpapi.NewHandler(
		activityService,
		participationService,
		savedService,
		clubService,
		profileService,
		reviewService,
		cfg.DemoUserID,
		httpLogger,
	)
	router := httpapi.NewRouter(handler, httpLogger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
