package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tablebook/internal/auth"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/notify"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/example/tablebook/internal/web"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	var (
		migrateUp     bool
		memory        bool
		staffPassword string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the booking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireCookieKeys(); err != nil {
				return err
			}
			log := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var (
				repo  restaurants.Repository
				store reservations.Store
				users auth.Users
			)
			if memory {
				mr := restaurants.NewMemoryRepo()
				demo, err := seedDemo(ctx, mr)
				if err != nil {
					return err
				}
				log.Info("server:demo:seeded", "component", "server", "restaurant", demo.Slug)
				repo, store, users = mr, reservations.NewMemory(), auth.NewMemoryUsers()
			} else {
				d, err := openDB(ctx, cfg, migrateUp)
				if err != nil {
					return err
				}
				defer d.Close()
				repo, store, users = restaurants.NewRepo(d), reservations.NewRepo(d), auth.NewDBUsers(d)
			}

			authStore := auth.NewStore(users, cfg.CookieHashKey, cfg.CookieBlockKey)
			if memory && staffPassword != "" {
				if err := authStore.CreateUser(ctx, "staff", staffPassword); err != nil {
					return err
				}
			}

			deps := booking.Deps{
				Restaurants: repo,
				Store:       store,
				Log:         log,
				PendingHold: cfg.PendingHold,
				CacheTTL:    cfg.AvailabilityCacheTTL,
			}
			if cfg.Redis() {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
				defer rdb.Close()
				deps.Cache = booking.NewRedisCache(rdb)

				qn := notify.NewQueueNotifier(redisOpt(cfg), log)
				defer qn.Close()
				deps.Notifier = qn
			} else {
				log.Warn("server:redis:disabled", "component", "server", "reason", "REDIS_ADDR not set")
			}

			ws := &web.Server{Auth: authStore, Booking: booking.NewService(deps), Log: log}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep all state in memory and seed a demo restaurant")
	cmd.Flags().StringVar(&staffPassword, "staff-password", "", "with --memory, create user \"staff\" with this password")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func redisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}
