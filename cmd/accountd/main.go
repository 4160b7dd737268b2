package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"

	accountd "github.com/venzell/accountd"
)

// App wires the process: config, persistence, core services, transport.
type App struct {
	config *accountd.Config
	bunDB  *bun.DB
	repo   accountd.RepositoryManager
	mailer accountd.Mailer
	tokens accountd.TokenService
	auther *accountd.Auther
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("accountd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	cfg, err := accountd.LoadConfig()
	if err != nil {
		lgr.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("failed to initialize persistence", "error", err)
		os.Exit(1)
	}

	if err := WithServices(ctx, app); err != nil {
		lgr.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	WithHTTPServer(app)

	go func() {
		if err := app.srv.Listen(cfg.HTTPAddr); err != nil {
			lgr.Error("http server terminated", "error", err)
			os.Exit(1)
		}
	}()

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	if err := app.srv.Shutdown(); err != nil {
		lgr.Error("error during shutdown", "error", err)
	}

	if err := app.bunDB.Close(); err != nil {
		lgr.Error("error closing database", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.config.GetPersistence()

	var sqldb *sql.DB
	var dialect schema.Dialect
	var err error

	switch pcfg.GetDriver() {
	case "sqlite":
		sqldb, err = sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
		dialect = sqlitedialect.New()
	default:
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(pcfg.GetDSN())))
		dialect = pgdialect.New()
	}
	if err != nil {
		return err
	}

	persistence.RegisterModel((*accountd.Account)(nil))

	client, err := persistence.New(pcfg, sqldb, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(accountd.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = accountd.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithServices(ctx context.Context, app *App) error {
	mailer, err := accountd.NewSMTPMailer(app.config.GetSMTP())
	if err != nil {
		return err
	}
	app.mailer = mailer.WithLogger(app.GetLogger("mailer"))

	app.tokens = accountd.NewTokenService(
		[]byte(app.config.GetSigningKey()),
		app.config.GetIssuer(),
		app.config.GetSessionTTL(),
		app.config.GetSessionTTLRememberMe(),
		app.GetLogger("tokens"),
	)

	app.auther = accountd.NewAuthenticator(app.repo, app.tokens).
		WithLogger(app.GetLogger("auth"))

	return nil
}

func WithHTTPServer(app *App) {
	srv := fiber.New(fiber.Config{
		AppName:               "accountd",
		DisableStartupMessage: true,
	})

	srv.Use(requestid.New())
	srv.Use(logger.New())
	srv.Use(recover.New())

	accountd.RegisterAuthRoutes(srv, func(c *accountd.AuthController) *accountd.AuthController {
		c.Repo = app.repo
		c.Mailer = app.mailer
		c.Auther = app.auther
		c.Tokens = app.tokens
		c.DB = app.bunDB
		c.Config = app.config
		c.WithLogger(app.GetLogger("auth:ctrl"))
		return c
	})

	app.srv = srv
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
