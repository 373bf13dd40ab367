package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/client/sync"
	"github.com/watchdeck/watchdeck/internal/utils"
	"github.com/watchdeck/watchdeck/internal/version"
)

const configFileName = "watchdeck"

// logLevel drives the terminal handler; the file handler always logs debug.
// loadConfig adjusts it once the config is known.
var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:     "watchdeck",
	Short:   "Watch a project tree and mirror pipeline artifacts to the dashboards",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		targets, gate, err := resolveTargets(cfg)
		if err != nil {
			return err
		}

		// all good now, show header
		cmd.SilenceUsage = true
		showHeader(cfg, targets)

		uploader := sync.NewUploader(cfg, targets, gate)
		manager := sync.NewManager(cfg, uploader)

		defer slog.Info("Bye!")
		if err := manager.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ./watchdeck.yaml, then ~/.watchdeck/watchdeck.yaml)")
	rootCmd.PersistentFlags().StringP("target", "t", "local", "dashboards to address: local, server or both")
	rootCmd.PersistentFlags().StringP("password", "p", "", "basic-auth password for protected content (prompted when omitted)")
	rootCmd.PersistentFlags().StringP("root", "r", "", "project root the watch dirs resolve against")
}

func main() {
	logFile, err := openLogFile(config.DefaultLogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	setupLogging(logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// openLogFile truncates the previous run's log; one file per run.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

// setupLogging sends records to the terminal at the configured level and to
// the log file at debug, so a quiet terminal still leaves a full trail.
func setupLogging(logFile io.Writer) {
	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})

	interceptor := utils.NewLogInterceptor(logFile)
	fileHandler := slog.NewTextHandler(interceptor, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// Drop the time attribute, the interceptor stamps each line itself.
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))
}

// resolveConfig loads viper state and materializes a validated config.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := loadConfig(cmd); err != nil {
		return nil, err
	}
	return buildConfig()
}

func loadConfig(cmd *cobra.Command) error {
	// .env files are optional extras for deployments
	_ = godotenv.Load()

	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(config.DefaultConfigDir)
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

	setDefaults()

	viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	viper.BindPFlag("auth.password", cmd.Flags().Lookup("password"))

	viper.SetEnvPrefix("WATCHDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(viper.GetString("log_level"))); err == nil {
		logLevel.Set(lvl)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("root", ".")
	viper.SetDefault("watch_dirs", config.DefaultWatchDirs)
	viper.SetDefault("allow_patterns", []string{})
	viper.SetDefault("ignore_patterns", config.DefaultIgnorePatterns)
	viper.SetDefault("extensions", config.DefaultExtensions)
	viper.SetDefault("max_file_size", config.DefaultMaxFileSize)
	viper.SetDefault("debounce", config.DefaultDebounce)
	viper.SetDefault("delete_settle", config.DefaultDeleteSettle)
	viper.SetDefault("http_timeout", config.DefaultHTTPTimeout)
	viper.SetDefault("health_timeout", config.DefaultHealthTimeout)
	viper.SetDefault("targets.local", config.DefaultLocalURL)
	viper.SetDefault("targets.server", "")
	viper.SetDefault("target", "local")
	viper.SetDefault("auth.username", config.DefaultAuthUsername)
	viper.SetDefault("auth.password", "")
	viper.SetDefault("auth.protected_datasets", config.DefaultProtectedDatasets)
	viper.SetDefault("auth.proxy_hosts", config.DefaultProxyHosts)
	viper.SetDefault("log_level", "info")
}

func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:           viper.ConfigFileUsed(),
		Root:           viper.GetString("root"),
		WatchDirs:      viper.GetStringSlice("watch_dirs"),
		WatchPatterns:  viper.GetStringSlice("allow_patterns"),
		IgnorePatterns: viper.GetStringSlice("ignore_patterns"),
		Extensions:     viper.GetStringSlice("extensions"),
		MaxFileSize:    viper.GetInt64("max_file_size"),
		Debounce:       viper.GetDuration("debounce"),
		DeleteSettle:   viper.GetDuration("delete_settle"),
		HTTPTimeout:    viper.GetDuration("http_timeout"),
		HealthTimeout:  viper.GetDuration("health_timeout"),
		LocalURL:       viper.GetString("targets.local"),
		ServerURL:      viper.GetString("targets.server"),
		Auth: config.AuthConfig{
			Username:          viper.GetString("auth.username"),
			Password:          viper.GetString("auth.password"),
			ProtectedDatasets: viper.GetStringSlice("auth.protected_datasets"),
			ProxyHosts:        viper.GetStringSlice("auth.proxy_hosts"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveTargets builds the SDK clients for the selected dashboards plus the
// credential gate shared by every operation.
func resolveTargets(cfg *config.Config) ([]*sync.Target, *sync.AuthGate, error) {
	target, err := config.ParseTarget(viper.GetString("target"))
	if err != nil {
		return nil, nil, err
	}
	urls, err := cfg.TargetURLs(target)
	if err != nil {
		return nil, nil, err
	}

	targets := sync.NewTargets(urls, cfg.HTTPTimeout)
	gate := sync.NewAuthGate(credentialSource(cfg), cfg.Auth.ProxyHosts, cfg.Auth.ProtectedDatasets)
	return targets, gate, nil
}

// credentialSource picks where the basic-auth password comes from: the flag
// or environment when set, an interactive prompt otherwise. The prompt is
// cached so it fires at most once per run.
func credentialSource(cfg *config.Config) sync.CredentialSource {
	if cfg.Auth.Password != "" {
		return sync.NewStaticCredentials(cfg.Auth.Username, cfg.Auth.Password)
	}
	return sync.NewCachedCredentials(&passwordPrompt{username: cfg.Auth.Username})
}

func showHeader(cfg *config.Config, targets []*sync.Target) {
	urls := make([]string, 0, len(targets))
	for _, t := range targets {
		urls = append(urls, t.URL)
	}

	fmt.Println(cyan.Bold(true).Render(version.ShortWithApp()))
	fmt.Printf("%s%s\n", gray.Render("Root     "), green.Render(cfg.Root))
	fmt.Printf("%s%s\n", gray.Render("Watching "), green.Render(strings.Join(cfg.WatchDirs, ", ")))
	fmt.Printf("%s%s\n", gray.Render("Targets  "), green.Render(strings.Join(urls, ", ")))
	if cfg.Path != "" {
		fmt.Printf("%s%s\n", gray.Render("Config   "), green.Render(cfg.Path))
	}
	fmt.Println()
}
