package app

import (
	"context"
	"fmt"

	"cdr.dev/slog/v3"

	"authz-service/internal/auth"
	"authz-service/internal/config"
	"authz-service/internal/grantsource"
	apphttp "authz-service/internal/http"
	"authz-service/internal/repository/postgres"
	"authz-service/pkg/metrics"
)

// Application is the wired service plus everything it must close.
type Application struct {
	Service *Service
	Server  *apphttp.Server

	db     *postgres.DB
	logger slog.Logger
}

// InitializeService wires up all dependencies and loads the initial grant
// table. A service that cannot load a valid table does not start.
func InitializeService(ctx context.Context, cfg *config.Config, log slog.Logger) (*Application, error) {
	source, err := grantsource.New(cfg.GrantTable, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to create grant table source: %w", err)
	}

	m := metrics.New()
	svc, err := NewService(source, m, cfg.App.CapabilityCacheTTL, cfg.GrantTable.ReloadInterval, log)
	if err != nil {
		return nil, err
	}
	if _, _, err := svc.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load initial grant table: %w", err)
	}

	application := &Application{Service: svc, logger: log}

	var fallback auth.SubjectResolver = auth.NoRoleResolver{}
	if cfg.Auth.SubjectRoleSource == config.RoleSourcePostgres {
		db, err := postgres.New(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := postgres.NewSubjectRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		application.db = db
		fallback = auth.NewLookupResolver(repo)
		log.Info(ctx, "subject roles served from postgres",
			slog.F("host", cfg.Database.Host),
			slog.F("database", cfg.Database.Database),
		)
	}
	resolver := auth.NewClaimsResolver(fallback)

	serviceKeys, err := auth.NewServiceKeys(cfg.Auth.ServiceAPIKeyHashes, cfg.Auth.ServiceAPIKeySalt)
	if err != nil {
		application.Close()
		return nil, fmt.Errorf("failed to load service keys: %w", err)
	}
	if !cfg.ServiceKeysEnabled() {
		log.Warn(ctx, "no service keys configured, authorization endpoints are open")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	authMiddleware := auth.NewMiddleware(jwtService, resolver, serviceKeys, log)

	application.Server = apphttp.NewServer(&apphttp.ServerDependencies{
		Config:         cfg,
		Engine:         svc.Engine(),
		Resolver:       resolver,
		Reloader:       svc,
		Metrics:        m,
		AuthMiddleware: authMiddleware,
		Logger:         log,
	})

	return application, nil
}

// Close releases the database pool, if one was opened.
func (a *Application) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
