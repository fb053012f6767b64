package main

import (
	"context"
	"desktop-messenger/internal/fixture"
	"desktop-messenger/internal/tui"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"
)

var (
	seedUsers    int
	seedPassword string
	seedMessages int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users, chats and a group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoader(func(ctx context.Context, l *fixture.Loader) error {
			report, err := l.Seed(ctx, fixture.SeedOptions{
				Users:    seedUsers,
				Password: seedPassword,
				Messages: seedMessages,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d messages, password %q\n", len(report.UserIDs), report.Messages, seedPassword)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load users and groups from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fx, err := fixture.Parse(data)
		if err != nil {
			return err
		}

		return withLoader(func(ctx context.Context, l *fixture.Loader) error {
			report, err := l.Load(ctx, fx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users (%d already existed) and %d groups\n", report.Users, report.SkippedUsers, report.Groups)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 10, "Number of fake users")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password shared by every fake user")
	seedCmd.Flags().IntVar(&seedMessages, "messages", 6, "Messages per seeded conversation")
}

// withLoader opens the store with the same configuration the client uses and runs fn against it
func withLoader(fn func(ctx context.Context, l *fixture.Loader) error) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	store, err := openStore(sugar)
	if err != nil {
		return err
	}
	defer store.Close()

	uiCfg := tui.EnvConfig{}
	if err := env.Parse(&uiCfg); err != nil {
		return fmt.Errorf("cannot parse env config: %w", err)
	}

	return fn(context.Background(), fixture.NewLoader(sugar, store, uiCfg.BcryptCost))
}
