package main

import (
	"fmt"
	"io"

	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/catalog/persistence"
	"github.com/dfryer1193/keta/internal/config"
	"github.com/dfryer1193/keta/internal/logging"
	"github.com/dfryer1193/keta/shared/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logOut io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "keta-server",
		Short:         "keta - image metadata catalog served over GraphQL",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logOut != nil {
				return a.logOut.Close()
			}
			return nil
		},
	}

	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyConfig, "", "config file (yaml, json or toml)")
	flags.StringP(config.KeyDB, "d", defaults.DB, "database path (empty for the engine default)")
	flags.String(config.KeyEngine, defaults.Engine, "storage engine: bolt, sqlite or memory")
	flags.StringP(config.KeyBind, "b", defaults.Bind, "address to listen on")
	flags.IntP(config.KeyLimit, "l", defaults.Limit, "request body limit in KB")
	flags.String(config.KeyLogLevel, defaults.LogLevel, "log level")
	flags.String(config.KeyLogFormat, defaults.LogFormat, "log format: console or json")
	flags.String(config.KeyLogFile, defaults.LogFile, "also write JSON logs to this rotated file")
	flags.Duration(config.KeyBoltTimeout, defaults.BoltTimeout, "how long to wait for the bolt file lock")

	if err := a.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.Logging())
	if err != nil {
		return err
	}
	a.logOut = closer

	return nil
}

// openRepository connects the configured engine. The returned database
// must be closed by the caller.
func (a *app) openRepository() (domain.ImageRepository, db.Database, error) {
	database, err := a.cfg.NewDatabase()
	if err != nil {
		return nil, nil, err
	}

	if err := database.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("engine", a.cfg.Engine).Str("path", a.cfg.DB).Msg("Opened database")
	return persistence.NewImageRepository(database), database, nil
}

func closeDatabase(database db.Database) {
	if err := database.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
		return
	}
	log.Info().Msg("Closed database")
}
