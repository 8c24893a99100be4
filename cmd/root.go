package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/labelsheet/internal/config"
	"github.com/teemow/labelsheet/internal/google"
	"github.com/teemow/labelsheet/internal/logging"
)

// rootCmd represents the base command for the labelsheet application
var rootCmd = &cobra.Command{
	Use:   "labelsheet",
	Short: "Copies Gmail messages under a label into a Google Sheet",
	Long: `labelsheet reads every message under a Gmail label, extracts its subject,
sender and plain-text body, and appends one row per message to a Google Sheet.

Each run is independent: all messages under the label are exported again.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	configPath  string
	account     string
	credentials string
	logLevel    string
	logFormat   string
}

var globals globalFlags

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "labelsheet version %s\n" .Version}}`)

	// Without a subcommand, run an export.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "export")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globals.configPath, "config", "", "Path to the YAML config file (default: $XDG_CONFIG_HOME/labelsheet/config.yaml)")
	pf.StringVar(&globals.account, "account", config.DefaultAccount, "Name of the cached Google account token to use")
	pf.StringVar(&globals.credentials, "credentials", config.DefaultCredentials, "Path to the Google OAuth client file")
	pf.StringVar(&globals.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&globals.logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newLabelsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the config file and environment, then applies the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("account") {
		cfg.Account = globals.account
	}
	if flags.Changed("credentials") {
		cfg.CredentialsFile = globals.credentials
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = globals.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = globals.logFormat
	}
	return cfg, nil
}

// setupLogging installs the process-wide slog logger described by cfg and
// returns it scoped to the command's operation and account.
func setupLogging(cfg *config.Config, operation string) (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logging.WithAccount(logging.WithOperation(logger, operation), cfg.Account), nil
}

// newAuthProvider builds the installed-app OAuth provider for cfg.
func newAuthProvider(cfg *config.Config, logger *slog.Logger) (*google.Provider, error) {
	oauthConfig, err := google.LoadConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load Google OAuth client: %w", err)
	}
	provider := google.NewProvider(oauthConfig, cfg.Account)
	provider.Logger = logging.WithService(logger, "oauth")
	return provider, nil
}
