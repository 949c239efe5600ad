// @title Pinpoint API
// @version 1.0
// @description Campus events: discovery, live status, joining and bookmarking.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"pinpoint/config"
	_ "pinpoint/docs"
	"pinpoint/internal/adapters/auth"
	"pinpoint/internal/adapters/email"
	deliveryhttp "pinpoint/internal/delivery/http"
	"pinpoint/internal/delivery/http/controllers"
	"pinpoint/internal/delivery/http/middleware"
	"pinpoint/internal/domain"
	"pinpoint/internal/repository/postgres"
	"pinpoint/internal/repository/sqlite"
	"pinpoint/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "pinpoint",
		Usage: "Campus events API.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("pinpoint failed", "err", err)
		os.Exit(1)
	}
}

var storeFlag = &cli.StringFlag{Name: "store", Usage: "Store driver for this run: postgres or sqlite (overrides STORE_DRIVER)."}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("store") {
		switch store := c.String("store"); store {
		case config.StorePostgres, config.StoreSQLite:
			cfg.StoreDriver = store
		default:
			return nil, fmt.Errorf("unknown store %q", store)
		}
	}
	return cfg, nil
}

type stores struct {
	db         *sql.DB
	users      domain.UserRepository
	events     domain.EventRepository
	attendance domain.AttendanceRegistry
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			db:         db,
			users:      sqlite.NewUserRepository(db),
			events:     sqlite.NewEventRepository(db),
			attendance: sqlite.NewAttendanceRepository(db),
		}, nil
	default:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		return &stores{
			db:         db,
			users:      postgres.NewUserRepository(db),
			events:     postgres.NewEventRepository(db),
			attendance: postgres.NewAttendanceRepository(db),
		}, nil
	}
}

type application struct {
	guard  domain.AuthorizationGuard
	events domain.EventService
	users  domain.UserService
}

func newApplication(cfg *config.Config, s *stores, logger *slog.Logger) (*application, error) {
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}

	guard := services.NewAuthorizationGuard(auth.NewJWTVerifier(cfg.JWTSecret))
	return &application{
		guard:  guard,
		events: services.NewEventService(s.events, s.attendance, guard, time.Now, cfg.RequestTimeout),
		users: services.NewUserService(
			s.users,
			s.attendance,
			auth.NewBcryptHasher(bcrypt.DefaultCost),
			auth.NewJWTIssuer(cfg.JWTSecret),
			cfg.JWTExpiry,
			services.NewEmailService(mailer, renderer, logger),
			logger,
			cfg.RequestTimeout,
		),
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API until SIGINT or SIGTERM.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "Listen port (overrides PORT)."},
			storeFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Port = c.String("port")
			}
			logger := config.NewLogger()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.db.Close()

			app, err := newApplication(cfg, s, logger)
			if err != nil {
				return err
			}
			router := deliveryhttp.NewRouter(
				controllers.NewEventController(logger, app.events),
				controllers.NewUserController(logger, app.users),
				controllers.NewAuthController(logger, app.users),
				app.guard,
			)
			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver, "env", cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema.",
		Flags: []cli.Flag{storeFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := config.NewLogger()
			s, err := openStores(c.Context, cfg)
			if err != nil {
				return err
			}
			defer s.db.Close()

			// sqlite.Open already applied its schema.
			if cfg.StoreDriver == config.StorePostgres {
				if err := postgres.Migrate(c.Context, s.db); err != nil {
					return err
				}
			}
			logger.Info("schema applied", "store", cfg.StoreDriver)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print a bearer token for an existing user id.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "User id (token subject).", Required: true},
			&cli.StringFlag{Name: "role", Usage: "student or organizer.", Value: string(domain.RoleStudent)},
			&cli.StringFlag{Name: "email", Usage: "Email claim."},
			&cli.DurationFlag{Name: "expiry", Usage: "Token lifetime (defaults to JWT_EXPIRY)."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			role := domain.Role(c.String("role"))
			if !role.Valid() {
				return fmt.Errorf("role must be %q or %q", domain.RoleStudent, domain.RoleOrganizer)
			}
			expiry := cfg.JWTExpiry
			if c.IsSet("expiry") {
				expiry = c.Duration("expiry")
			}
			token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(
				domain.Principal{ID: c.String("user"), Role: role}, c.String("email"), expiry)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create users and events from a YAML file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Seed file path or http(s) URL.", Value: "seed.yaml"},
			storeFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := config.NewLogger()
			raw, err := readSeed(c.Context, c.String("file"))
			if err != nil {
				return err
			}
			seed, err := parseSeed(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			s, err := openStores(c.Context, cfg)
			if err != nil {
				return err
			}
			defer s.db.Close()
			app, err := newApplication(cfg, s, logger)
			if err != nil {
				return err
			}
			users, events, err := seed.apply(c.Context, app.users, app.events)
			if err != nil {
				return err
			}
			logger.Info("seed applied", "users", users, "events", events)
			return nil
		},
	}
}
