package main

import (
	"fmt"
	"os"

	"isms-platform/internal/config"
	"isms-platform/internal/database"
	"isms-platform/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "isms-server",
	Short: "ISMS compliance platform API server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		database.Init(cfg.DBDSN)

		r := server.NewRouter(cfg)

		addr := fmt.Sprintf(":%s", cfg.ServerPort)
		log.Info().Str("addr", addr).Msg("starting server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo frameworks, controls, policies and risks from a YAML fixture",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		database.Init(cfg.DBDSN)

		if err := database.Seed(seedFile); err != nil {
			log.Fatal().Err(err).Str("fixture", seedFile).Msg("seeding failed")
		}
	},
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	seedCmd.Flags().StringVar(&seedFile, "file", "seed.yaml", "path to the YAML fixture")
	rootCmd.AddCommand(serveCmd, seedCmd)

	cobra.CheckErr(rootCmd.Execute())
}
