package command

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DJKwan1228/phonebook/internal/app"
	"github.com/DJKwan1228/phonebook/internal/config"
	"github.com/DJKwan1228/phonebook/internal/phonebook"
	"github.com/DJKwan1228/phonebook/internal/sec"
	"github.com/DJKwan1228/phonebook/internal/server"
	"github.com/DJKwan1228/phonebook/internal/storage"
	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

const (
	sessionSweepInterval = 10 * time.Minute
	demoAccountCount     = 5
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the contact book web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			secret, err := sessionSecret(cfg)
			if err != nil {
				return err
			}
			sessions := sec.NewSessionManager(store, secret, cfg.Session.TTL)
			auth := sec.NewAuthenticator(store, sessions, logger)
			records := phonebook.NewService(store, logger)

			grp, ctx := errgroup.WithContext(cmd.Context())

			if cfg.DevMode {
				if err := seedDemoAccounts(ctx, logger, store); err != nil {
					return err
				}
			}

			appServer := app.New(logger, cfg.DevMode, auth, sessions, records)

			sweepSessions(ctx, grp, logger, sessions)
			serveApp(ctx, grp, cfg, logger, appServer.Server)
			return grp.Wait()
		},
	}
}

func serveApp(
	ctx context.Context,
	grp *errgroup.Group,
	cfg *config.Config,
	logger *slog.Logger,
	srv *http.Server,
) {
	listener, err := server.Listen(ctx, cfg.ListenAddress)
	if err != nil {
		grp.Go(func() error { return err })
		return
	}

	logger.InfoContext(ctx,
		"starting app server...",
		slog.String("address", cfg.ListenAddress),
	)
	server.Serve(ctx, grp, srv, listener, server.ShutdownTimeout)
}

// sweepSessions periodically deletes expired session rows so the table does
// not grow without bound.
func sweepSessions(
	ctx context.Context,
	grp *errgroup.Group,
	logger *slog.Logger,
	sessions *sec.SessionManager,
) {
	grp.Go(func() error {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				swept, err := sessions.Sweep(ctx)
				if err != nil {
					logger.WarnContext(ctx, "session sweep failed", slog.Any("error", err))
					continue
				}
				if swept > 0 {
					logger.DebugContext(ctx, "swept expired sessions", slog.Int64("count", swept))
				}
			}
		}
	})
}

// sessionSecret returns the configured cookie-signing secret, generating an
// ephemeral one in dev mode. Ephemeral secrets invalidate all sessions on
// restart.
func sessionSecret(cfg *config.Config) ([]byte, error) {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret), nil
	}
	if !cfg.DevMode {
		return nil, errors.New("session secret is not set")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// seedDemoAccounts populates the store with fake accounts so the app has
// something to show in dev mode. Every account's password is "password".
func seedDemoAccounts(ctx context.Context, logger *slog.Logger, store storage.Store) error {
	hash, err := sec.HashPassword("password")
	if err != nil {
		return err
	}
	faker := gofakeit.New(0)
	for range demoAccountCount {
		name := faker.Username()
		user, err := store.CreateUser(ctx, name, hash)
		if errors.Is(err, storage.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed demo account %s: %w", name, err)
		}
		err = store.UpsertContact(ctx, user.ID, db.Contact{
			Name:   faker.Name(),
			Mobile: faker.Phone(),
			Email:  faker.Email(),
		})
		if err != nil {
			return fmt.Errorf("failed to seed demo contact for %s: %w", name, err)
		}
		logger.InfoContext(ctx, "seeded demo account",
			slog.String("name", name),
			slog.String("password", "password"),
		)
	}
	return nil
}
