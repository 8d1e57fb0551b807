// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-storefront/config"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "storefront runs the multi-vendor shop API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := utils.NewLogger(cfg.LogLevel, cfg.LogPretty)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		client, err := store.ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		if err := store.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			return err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("indexes created")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
