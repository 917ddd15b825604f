package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCreditsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Inspect and grant user credits",
	}
	cmd.AddCommand(newCreditsShowCmd(opts), newCreditsGrantCmd(opts), newCreditsResetCmd(opts))
	return cmd
}

func newCreditsShowCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a user's credit profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s, err := openSession(ctx, opts, "credits-show")
			if err != nil {
				return err
			}
			defer s.Close()
			profile, err := s.resolveProfile(ctx, args, email)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "look the user up by email")
	return cmd
}

func newCreditsGrantCmd(opts *rootOptions) *cobra.Command {
	var (
		email  string
		amount int
	)
	cmd := &cobra.Command{
		Use:   "grant [user-id]",
		Short: "Add credits to a user's balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return errors.New("--amount must be positive")
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s, err := openSession(ctx, opts, "credits-grant")
			if err != nil {
				return err
			}
			defer s.Close()
			profile, err := s.resolveProfile(ctx, args, email)
			if err != nil {
				return err
			}
			updated, err := s.profiles.GrantCredits(ctx, profile.UserID, amount)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "look the user up by email")
	cmd.Flags().IntVar(&amount, "amount", 0, "number of credits to add")
	return cmd
}

func newCreditsResetCmd(opts *rootOptions) *cobra.Command {
	var allowance int
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Top every profile up to the daily allowance now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s, err := openSession(ctx, opts, "credits-reset")
			if err != nil {
				return err
			}
			defer s.Close()
			if !cmd.Flags().Changed("allowance") {
				allowance = s.cfg.DefaultDailyCredits
			}
			n, err := s.profiles.ResetDaily(ctx, allowance)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d profiles to %d credits\n", n, allowance)
			return nil
		},
	}
	cmd.Flags().IntVar(&allowance, "allowance", 0, "daily allowance (defaults to DEFAULT_DAILY_CREDITS)")
	return cmd
}

func newBlockCmd(opts *rootOptions, blocked bool) *cobra.Command {
	use, short := "block [user-id]", "Block a user from generating images"
	if !blocked {
		use, short = "unblock [user-id]", "Allow a blocked user to generate images again"
	}
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s, err := openSession(ctx, opts, cmd.Name())
			if err != nil {
				return err
			}
			defer s.Close()
			profile, err := s.resolveProfile(ctx, args, email)
			if err != nil {
				return err
			}
			updated, err := s.profiles.SetBlocked(ctx, profile.UserID, blocked)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "look the user up by email")
	return cmd
}
