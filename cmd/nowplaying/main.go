// Package main provides the nowplaying CLI application entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"nowplaying/internal/core"
	"nowplaying/internal/flood"
	httpserver "nowplaying/internal/http"
	"nowplaying/internal/store"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "NOWPLAYING"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nowplaying",
	Short: "nowplaying - media page metadata → canonical songs",
	Long: `nowplaying turns the titles, descriptions and media session objects of media pages
into canonical artist/track/album records, either over HTTP or one source at a time.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP parse API",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", defaults.Log.Format, "log format (json, console)")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", defaults.Server.Port, "HTTP server port")
	rootCmd.PersistentFlags().Duration("server-read-timeout", defaults.Server.ReadTimeout, "HTTP read timeout")
	rootCmd.PersistentFlags().Duration("server-write-timeout", defaults.Server.WriteTimeout, "HTTP write timeout")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", defaults.App.FloodLimitPerMinute,
		"Maximum parse requests per client per minute")
	rootCmd.PersistentFlags().Int64("max-request-bytes", defaults.App.MaxRequestBytes, "Maximum parse request body size")
	rootCmd.PersistentFlags().Int("seen-capacity", defaults.Store.SeenCapacity, "Number of song identities remembered")
	rootCmd.PersistentFlags().Float64("seen-false-positive-rate", defaults.Store.SeenFalsePositiveRate,
		"Bloom filter false positive rate of the seen store")
	rootCmd.PersistentFlags().String("title-separators", "",
		`Artist/track separators for video titles as a JSON array, e.g. '[" - ", " | "]' (default: built-in list)`)
	rootCmd.PersistentFlags().String("short-form-separators", "",
		"Separators for short-form titles as a JSON array (default: dash variants)")
	rootCmd.PersistentFlags().String("description-separator", defaults.Parser.Description.Separator,
		"Separator of the track line in structured descriptions")
	rootCmd.PersistentFlags().String("credit-roles", "",
		"Credit line roles skipped in descriptions as a JSON array (default: built-in list)")
	rootCmd.PersistentFlags().Bool("generate-env-example", false,
		"Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.RunE = runRoot
	rootCmd.AddCommand(serveCmd, parseCmd)
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config = cfg
	logger = buildLogger(config.Log)
}

func buildConfig() (*core.Config, error) {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureApp(cfg)
	configureStore(cfg)
	if err := configureParser(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.ReadTimeout = viper.GetDuration("server-read-timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server-write-timeout")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureApp(cfg *core.Config) {
	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute <= 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}
	cfg.App.MaxRequestBytes = viper.GetInt64("max-request-bytes")
	if cfg.App.MaxRequestBytes <= 0 {
		cfg.App.MaxRequestBytes = core.DefaultMaxRequestBytes
	}
}

func configureStore(cfg *core.Config) {
	cfg.Store.SeenCapacity = viper.GetInt("seen-capacity")
	cfg.Store.SeenFalsePositiveRate = viper.GetFloat64("seen-false-positive-rate")
}

func configureParser(cfg *core.Config) error {
	if err := jsonListSetting("title-separators", &cfg.Parser.Title.Separators); err != nil {
		return err
	}
	if err := jsonListSetting("short-form-separators", &cfg.Parser.ShortFormSeparators); err != nil {
		return err
	}
	if err := jsonListSetting("credit-roles", &cfg.Parser.Description.CreditRoles); err != nil {
		return err
	}
	if sep := viper.GetString("description-separator"); sep != "" {
		cfg.Parser.Description.Separator = sep
	}
	return nil
}

// jsonListSetting overrides dst with a JSON array setting. Separators carry significant
// spaces, so comma or whitespace separated lists cannot express them.
func jsonListSetting(key string, dst *[]string) error {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return fmt.Errorf("invalid %s: expected a JSON array of strings: %w", key, err)
	}
	if len(values) > 0 {
		*dst = values
	}
	return nil
}

func buildLogger(logCfg core.LogConfig) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(logCfg.Level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(logCfg.Format, "console") {
		cfg.Encoding = "console"
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

type services struct {
	httpServer *httpserver.Server
	limiter    *flood.Limiter
	seen       *store.SeenStore
}

func initializeServices() *services {
	seen := store.NewSeenStore(config.Store.SeenCapacity, config.Store.SeenFalsePositiveRate)
	limiter := flood.New(config.App.FloodLimitPerMinute)
	pipeline := core.NewPipelineFromConfig(config, seen, logger.Named("pipeline"))
	httpServer := httpserver.NewServer(config, pipeline, limiter, seen, logger.Named("http"))

	return &services{
		httpServer: httpServer,
		limiter:    limiter,
		seen:       seen,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Sync() }()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting nowplaying",
		zap.String("addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.Int("flood_limit_per_minute", config.App.FloodLimitPerMinute),
		zap.String("max_request_size", humanize.IBytes(uint64(config.App.MaxRequestBytes))),
		zap.Int("seen_capacity", config.Store.SeenCapacity))

	svcs := initializeServices()
	defer svcs.limiter.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("nowplaying stopped with error", zap.Error(err))
		return err
	}

	logger.Info("nowplaying stopped gracefully",
		zap.Int("songs_seen", svcs.seen.Size()))
	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# nowplaying Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	writeEnvSection(&content, cmd, "HTTP Server", "server-host", "server-port",
		"server-read-timeout", "server-write-timeout")
	writeEnvSection(&content, cmd, "Flood Prevention", "flood-limit-per-minute", "max-request-bytes")
	writeEnvSection(&content, cmd, "Seen Store", "seen-capacity", "seen-false-positive-rate")
	writeEnvSection(&content, cmd, "Parser", "title-separators", "short-form-separators",
		"description-separator", "credit-roles")
	writeEnvSection(&content, cmd, "Logging", "log-level", "log-format")

	return content.String()
}

func writeEnvSection(content *strings.Builder, cmd *cobra.Command, title string, flagNames ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flagNames, ", --"))

	for _, name := range flagNames {
		f := cmd.Root().PersistentFlags().Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(content, "# %s\n", f.Usage)
		if f.DefValue == "" {
			fmt.Fprintf(content, "# %s=\n", flagToEnvVar(name))
		} else {
			fmt.Fprintf(content, "%s=%q\n", flagToEnvVar(name), f.DefValue)
		}
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
