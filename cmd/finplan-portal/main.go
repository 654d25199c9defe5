package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bobmcallan/finplan-portal/internal/app"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/config"
	"github.com/bobmcallan/finplan-portal/internal/server"
)

const (
	configName = "finplan-portal.toml"
	configEnv  = "FINPLAN_CONFIG"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP = flag.Int("p", 0, "Server port (shorthand)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
	checkOnly   = flag.Bool("check", false, "Validate the configuration and exit")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *showVersion {
		fmt.Println(common.CurrentBuild())
		return 0
	}

	port := *serverPort
	if *serverPortP != 0 {
		port = *serverPortP
	}

	files := resolveConfigFiles(configFiles, os.Getenv(configEnv))
	cfg, err := loadConfig(files, port, *serverHost)
	if err != nil {
		var invalid *invalidConfigError
		if errors.As(err, &invalid) {
			printIssues(os.Stderr, invalid.issues)
		} else {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		}
		return 1
	}
	if *checkOnly {
		fmt.Printf("configuration ok (%s)\n", describeFiles(files))
		return 0
	}

	logger := setupLogger(cfg)
	logger.Info().
		Str("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("environment", cfg.Environment).
		Str("store", cfg.Store.Backend).
		Str("config_files", describeFiles(files)).
		Str("version", common.CurrentBuild().String()).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize application")
		return 1
	}
	srv := server.New(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errChan:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("application shutdown failed")
	}

	logger.Info().Msg("server stopped")
	return exitCode
}

// invalidConfigError carries every validation issue.
type invalidConfigError struct {
	issues []string
}

func (e *invalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.issues, "; "))
}

// loadConfig merges files, applies env and flag overrides, and validates.
func loadConfig(files []string, port int, host string) (*config.Config, error) {
	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, port, host)
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, &invalidConfigError{issues: issues}
	}
	return cfg, nil
}

// resolveConfigFiles picks config files: explicit flags, then the env path,
// then the first auto-discovered file.
func resolveConfigFiles(flags []string, envPath string) []string {
	if len(flags) > 0 {
		return flags
	}
	if envPath != "" {
		return []string{envPath}
	}
	for _, path := range configSearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return []string{path}
		}
	}
	return nil
}

func describeFiles(files []string) string {
	if len(files) == 0 {
		return "defaults only"
	}
	return strings.Join(files, ", ")
}

func printIssues(w io.Writer, issues []string) {
	fmt.Fprintln(w, "Configuration error, mandatory fields are missing or invalid:")
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
	fmt.Fprintln(w, "Values can be set via TOML file, FINPLAN_* environment variables, or CLI flags.")
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried before the working directory.
func configSearchPaths() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		binDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(binDir, configName),
			filepath.Join(binDir, "config", configName),
		)
	}
	paths = append(paths, configName, filepath.Join("config", configName))

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(common.LoggingConfig{
		Level:      cfg.Logging.Level,
		Outputs:    cfg.Logging.Outputs,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
