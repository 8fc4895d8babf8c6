package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/nhle/safesignal/internal/ai"
	"github.com/nhle/safesignal/internal/app"
	"github.com/nhle/safesignal/internal/credential"
	"github.com/nhle/safesignal/internal/logging"
	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/observe"
	"github.com/nhle/safesignal/internal/store"
)

var (
	flagConfig string
	flagName   string
	flagDemo   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "safesignal",
		Short: "SafeSignal - family safety dashboard for the terminal",
		Long: `SafeSignal shows whether you and your family are online and where you
were last seen. When you come back online after an outage it writes an
"I'm safe" message you can share.

Use --demo to simulate the network and location without real sources.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", model.DefaultConfigPath(), "Path to the config file")
	rootCmd.Flags().StringVar(&flagName, "name", "", "Sign in as this name without the login screen")
	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Simulate connectivity and location (toggle the network with t)")

	rootCmd.AddCommand(newKeyCmd(), newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	var flags store.Flags = st
	if cfg.Storage.RedisURL != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		rf, err := store.NewRedisFlags(ctx, cfg.Storage.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		defer rf.Close()
		flags = rf
	}

	clock := clockwork.NewRealClock()

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Config:       cfg,
		Flags:        flags,
		History:      st,
		Generator:    gen,
		Clock:        clock,
		Logger:       logger,
		SaveSettings: saveSettings,
		Reconfigure: func(c *model.AppConfig) (*ai.Generator, error) {
			return buildGenerator(c, logger)
		},
	}

	locCfg := cfg.Location
	if flagDemo {
		demo := observe.NewDemoProber(true)
		deps.Prober = demo
		deps.Demo = demo
		locCfg.Source = "demo"
	} else {
		deps.Prober = observe.NewHTTPProber(cfg.Connectivity.ProbeURL)
	}
	deps.Locator, err = observe.NewLocator(locCfg, clock)
	if err != nil {
		return err
	}

	logger.Info("starting safesignal",
		"config", flagConfig,
		"demo", flagDemo,
		"provider", cfg.AI.Provider,
		"ai_available", gen.Available(),
		"redis", cfg.Storage.RedisURL != "",
	)

	name := flagName
	if name == "" {
		name = cfg.User.Name
	}
	m := app.New(deps, name)
	if flagName != "" {
		m = m.WithAutoLogin(flagName)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Shutdown()
	}
	return err
}

// loadConfig reads .env (when present) and then the config file.
func loadConfig() (*model.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return model.LoadConfig(flagConfig)
}

// buildGenerator wires the configured text service. Without an API key
// the generator only produces the fallback message.
func buildGenerator(cfg *model.AppConfig, logger *slog.Logger) (*ai.Generator, error) {
	provider := cfg.AI.Provider
	if provider == "" {
		provider = "gemini"
	}
	svc, err := ai.NewService(cfg.AI, credential.LookupAPIKey(provider))
	if err != nil {
		return nil, err
	}
	return ai.NewGenerator(svc, logger.With("component", "ai")), nil
}

func saveSettings(cfg *model.AppConfig, apiKey string) error {
	if err := model.SaveConfig(flagConfig, cfg); err != nil {
		return err
	}
	if apiKey == "" {
		return nil
	}
	return credential.Set(credential.APIKeyName(cfg.AI.Provider), apiKey)
}

func newKeyCmd() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the message service API key in the system keyring",
	}

	setCmd := &cobra.Command{
		Use:   "set [provider]",
		Short: "Store an API key (prompts for the value)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerArg(args)
			if err != nil {
				return err
			}

			var value string
			err = huh.NewInput().
				Title(fmt.Sprintf("%s API key", provider)).
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("key is required")
					}
					return nil
				}).
				Run()
			if err != nil {
				return err
			}

			if err := credential.Set(credential.APIKeyName(provider), value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key.\n", provider)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [provider]",
		Short: "Remove a stored API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerArg(args)
			if err != nil {
				return err
			}
			if err := credential.Delete(credential.APIKeyName(provider)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key.\n", provider)
			return nil
		},
	}

	keyCmd.AddCommand(setCmd, deleteCmd)
	return keyCmd
}

// providerArg returns the provider named in args, or the configured one.
func providerArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.AI.Provider == "" {
		return "gemini", nil
	}
	return cfg.AI.Provider, nil
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flagConfig); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flagConfig)
			}
			if err := model.SaveConfig(flagConfig, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagConfig)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), flagConfig)
		},
	}

	configCmd.AddCommand(initCmd, pathCmd)
	return configCmd
}
