package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/visitportal/internal/app/controllers"
	appMigrations "github.com/yigit/visitportal/internal/app/migrations"
	appRepos "github.com/yigit/visitportal/internal/app/repositories"
	appRoutes "github.com/yigit/visitportal/internal/app/routes"
	appServices "github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/config"
	"github.com/yigit/visitportal/internal/db"
	appMiddleware "github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	pkgAuth "github.com/yigit/visitportal/internal/pkg/auth"
	"github.com/yigit/visitportal/internal/pkg/email"
	"github.com/yigit/visitportal/internal/pkg/export"
	"github.com/yigit/visitportal/internal/pkg/i18n"
	"github.com/yigit/visitportal/internal/pkg/logger"
	"github.com/yigit/visitportal/internal/pkg/websocket"
	"github.com/yigit/visitportal/internal/web"
)

// purgeInterval is how often expired browser sessions are dropped from the store
const purgeInterval = 15 * time.Minute

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store               appRepos.SessionStore
	Hub                 *websocket.Hub
	Translator          *i18n.Translator
	SessionService      *appServices.SessionService
	ScheduleService     *appServices.ScheduleService
	AvailabilityService *appServices.AvailabilityService
	ExportService       *appServices.ExportService
	AdminService        *appServices.AdminService
	FormService         *appServices.FormService
	Handlers            appRoutes.Handlers
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupSessionStore opens the configured session store. The postgres store
// also applies pending migrations when database.migrate_on_start is set.
func SetupSessionStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.SessionStore, *db.PostgresDB, error) {
	if !cfg.UsesDatabase() {
		lgr.Info().Msg("Using in-memory session store")
		return appRepos.NewMemorySessionStore(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.MigrateOnStart {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.DSN).Up(); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	return appRepos.NewPostgresSessionStore(database), database, nil
}

// BuildDependencies initializes services, middleware and controllers.
func BuildDependencies(cfg *config.Config, store appRepos.SessionStore, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}
	loc := cfg.Location()

	deps.Translator = i18n.NewTranslator(cfg.I18n.DefaultLanguage, lgr)
	deps.Hub = websocket.NewHub(lgr)

	api := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.Timeouts.API,
		UserAgent: cfg.API.UserAgent,
		Debug:     cfg.API.Debug,
	}, lgr)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Session.Secret,
		SessionExp:  cfg.Timeouts.SessionTTL,
		TokenIssuer: cfg.Session.Issuer,
	})

	deps.SessionService = appServices.NewSessionService(store, api, deps.Hub, appServices.SessionConfig{
		ResolveWait:     cfg.Timeouts.ResolveWait,
		ConfirmInterval: cfg.Timeouts.ConfirmInterval,
	}, lgr)
	deps.ScheduleService = appServices.NewScheduleService(deps.SessionService, lgr)
	deps.AvailabilityService = appServices.NewAvailabilityService(deps.SessionService, deps.ScheduleService, loc, lgr)
	deps.AdminService = appServices.NewAdminService(deps.SessionService, lgr)
	deps.FormService = appServices.NewFormService(deps.SessionService, lgr)

	docs := export.NewGoogleDocsExporter(export.GoogleDocsConfig{
		DocsBaseURL:  cfg.Google.DocsBaseURL,
		DriveBaseURL: cfg.Google.DriveBaseURL,
		Token:        cfg.Google.DocsToken,
	}, lgr)
	mailer := email.NewEmailService(email.SMTPConfig{
		Enabled:   cfg.SMTP.Enabled,
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  "Visit Portal",
		FromEmail: cfg.SMTP.From,
		UseTLS:    cfg.SMTP.Port == 465,
	}, lgr)
	deps.ExportService = appServices.NewExportService(deps.ScheduleService, docs, mailer, loc, lgr)

	renderer := appControllers.NewRenderer(deps.SessionService, deps.Translator, lgr)
	sessionMiddleware := appMiddleware.NewSessionMiddleware(jwtService, deps.SessionService, appMiddleware.SessionCookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, lgr)
	deps.Handlers = appRoutes.Handlers{
		Auth:         appControllers.NewAuthController(deps.SessionService, renderer, cfg.Google.ClientID),
		Dashboard:    appControllers.NewDashboardController(deps.SessionService, deps.ScheduleService, deps.AvailabilityService, deps.FormService, deps.ExportService, renderer),
		Calendar:     appControllers.NewCalendarController(deps.ScheduleService, renderer),
		Availability: appControllers.NewAvailabilityController(deps.AvailabilityService, renderer, loc),
		Setup:        appControllers.NewSetupController(deps.SessionService, deps.ScheduleService, renderer),
		Admin:        appControllers.NewAdminController(deps.AdminService, deps.ScheduleService, renderer, loc),
		Export:       appControllers.NewExportController(deps.ExportService, renderer),
		Session:      sessionMiddleware,
		WebSocket:    websocket.NewHandler(deps.Hub, appMiddleware.SessionID, lgr),
	}

	return deps, nil
}

// StartBackground runs the hub, the identity audit log and the session purge until ctx is done.
func StartBackground(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	go deps.Hub.Run(ctx)
	websocket.NewAuditListener(deps.Hub, deps.Logger).Start(ctx)

	ttl := cfg.Timeouts.SessionTTL
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := deps.SessionService.Purge(ctx, ttl)
				if err != nil {
					deps.Logger.Error().Err(err).Msg("Failed to purge expired sessions")
					continue
				}
				if n > 0 {
					deps.Logger.Info().Int64("purged", n).Msg("Expired sessions purged")
				}
			}
		}
	}()
}

// SetupRouter configures the Gin engine with middleware, templates and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	templates, err := web.Templates(cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	router.Use(
		appMiddleware.RequestLogger(lgr),
		gin.Recovery(),
		appMiddleware.LocaleNegotiator(deps.Translator.Languages()),
	)

	appRoutes.SetupRouter(router, deps.Handlers)
	return router, nil
}
