package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/watchdeck/watchdeck/internal/db"
	"github.com/watchdeck/watchdeck/internal/server"
	"github.com/watchdeck/watchdeck/internal/version"
)

const configFileName = "watchdeckd"

var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:     "watchdeckd",
	Short:   "WatchDeck dashboard service",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		slog.Info("watchdeckd", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

		var database *sqlx.DB
		if cfg.Journal.Enabled {
			database, err = db.NewSqliteDB(db.WithPath(cfg.Journal.Path))
			if err != nil {
				return fmt.Errorf("open journal db: %w", err)
			}
			defer database.Close()
		}

		srv, err := server.New(cfg, database)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		if err := srv.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", "", "address to bind the http server (defaults to :8000, or $PORT when set)")
	rootCmd.Flags().StringP("data", "d", "", "storage root for uploaded files")
	rootCmd.Flags().String("cert", "", "path to the TLS certificate file")
	rootCmd.Flags().String("key", "", "path to the TLS key file")
	rootCmd.Flags().StringP("config", "c", "", "config file (default ./watchdeckd.yaml)")
}

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	// .env files are optional extras for deployments
	_ = godotenv.Load()

	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(configFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetDefault("http.addr", "")
	viper.SetDefault("http.domain", "")
	viper.SetDefault("data_dir", "")
	viper.SetDefault("journal.enabled", true)
	viper.SetDefault("journal.path", "")
	viper.SetDefault("rate_limit", server.DefaultRateLimit)
	viper.SetDefault("log_level", "info")

	viper.BindPFlag("http.addr", cmd.Flags().Lookup("bind"))
	viper.BindPFlag("http.cert_file", cmd.Flags().Lookup("cert"))
	viper.BindPFlag("http.key_file", cmd.Flags().Lookup("key"))
	viper.BindPFlag("data_dir", cmd.Flags().Lookup("data"))

	viper.SetEnvPrefix("WATCHDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(viper.GetString("log_level"))); err == nil {
		logLevel.Set(lvl)
	}

	return nil
}

func buildConfig() (*server.Config, error) {
	cfg := &server.Config{
		HTTP: server.HTTPConfig{
			Addr:     viper.GetString("http.addr"),
			Domain:   viper.GetString("http.domain"),
			CertFile: viper.GetString("http.cert_file"),
			KeyFile:  viper.GetString("http.key_file"),
		},
		DataDir: viper.GetString("data_dir"),
		Journal: server.JournalConfig{
			Enabled: viper.GetBool("journal.enabled"),
			Path:    viper.GetString("journal.path"),
		},
		RateLimit: viper.GetString("rate_limit"),
		LogLevel:  viper.GetString("log_level"),
	}

	// deployment platforms inject PORT instead of a bind address
	if cfg.HTTP.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTP.Addr = ":" + port
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
