package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"artcreator/internal/adapter/repo"
	"artcreator/internal/infra"
	"artcreator/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run the daily credit reset once and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadBaseConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	profiles := repo.NewProfileRepository(runner, cfg.DefaultDailyCredits)
	reset := scheduler.NewCreditReset(profiles, cfg.DefaultDailyCredits, time.Minute, logger)

	if *once {
		if _, err := reset.Run(ctx); err != nil {
			logger.Fatal().Err(err).Msg("worker: credit reset failed")
		}
		return
	}

	sched := scheduler.NewCron(logger, time.UTC)
	if _, err := reset.Schedule(ctx, sched, cfg.CreditResetSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.CreditResetSchedule).Msg("worker: invalid credit reset schedule")
	}
	sched.Start()
	logger.Info().Str("schedule", cfg.CreditResetSchedule).Msg("worker: started")

	<-ctx.Done()
	<-sched.Stop().Done()
	logger.Info().Msg("worker: stopped")
}
