package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"artcreator/internal/adapter/repo"
	"artcreator/internal/domain"
	"artcreator/internal/infra"
)

type rootOptions struct {
	envFile string
	verbose bool
}

func newRootCmd(version, buildTime, gitCommit string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "artctl",
		Short:         "artctl administers the art creator service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return fmt.Errorf("load %s: %w", opts.envFile, err)
				}
				return nil
			}
			_ = godotenv.Load()
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every SQL statement")

	cmd.AddCommand(newVersionCmd(version, buildTime, gitCommit))
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newCreditsCmd(opts))
	cmd.AddCommand(newBlockCmd(opts, true))
	cmd.AddCommand(newBlockCmd(opts, false))
	cmd.AddCommand(newGeminiKeyCmd(opts))
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// session holds the database handles of a single command invocation.
type session struct {
	cfg      *infra.Config
	pool     *pgxpool.Pool
	runner   *infra.SQLRunner
	profiles *repo.ProfileRepositoryPG
}

func openSession(ctx context.Context, opts *rootOptions, name string) (*session, error) {
	cfg, err := infra.LoadBaseConfig()
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger := zerolog.New(io.Discard)
	if opts.verbose {
		logger = infra.NewLogger(cfg.AppEnv, "artctl").With().Str("cmd", name).Logger()
	}
	runner := infra.NewSQLRunner(pool, logger)
	return &session{
		cfg:      cfg,
		pool:     pool,
		runner:   runner,
		profiles: repo.NewProfileRepository(runner, cfg.DefaultDailyCredits),
	}, nil
}

func (s *session) Close() {
	s.pool.Close()
}

// resolveProfile finds the target profile by user ID argument or email flag.
func (s *session) resolveProfile(ctx context.Context, args []string, email string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	switch {
	case len(args) == 1 && email != "":
		return nil, errors.New("pass either a user ID or --email, not both")
	case len(args) == 1:
		return s.profiles.Get(ctx, strings.TrimSpace(args[0]))
	case email != "":
		return s.profiles.GetByEmail(ctx, email)
	default:
		return nil, errors.New("a user ID or --email is required")
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 15*time.Second)
}

func printProfile(w io.Writer, p *domain.Profile) {
	fmt.Fprintf(w, "user:      %s\n", p.UserID)
	fmt.Fprintf(w, "email:     %s\n", p.Email)
	fmt.Fprintf(w, "credits:   %d\n", p.DailyCredits)
	fmt.Fprintf(w, "used:      %d\n", p.CreditsUsedToday)
	fmt.Fprintf(w, "blocked:   %t\n", p.IsBlocked)
	fmt.Fprintf(w, "updated:   %s\n", p.UpdatedAt.Format(time.RFC3339))
}
