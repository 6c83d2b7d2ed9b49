// vlansync - FortiGate / NetBox VLAN reconciliation
//
// A read-only validation tool that fetches switch-port VLAN
// configuration from FortiGate switch controllers, normalizes it, and
// diffs it against the matching device records in NetBox:
//
//	vlansync sync                 # validate every configured switch
//	vlansync check <switch>       # ad-hoc check of a single switch
//	vlansync cache list|clear     # inspect the API response cache
//
// Exit status is 0 only when every switch matched; any mismatch,
// missing switch or fetch error exits non-zero.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vlansync/vlansync/pkg/config"
	"github.com/vlansync/vlansync/pkg/diff"
	"github.com/vlansync/vlansync/pkg/fortigate"
	"github.com/vlansync/vlansync/pkg/netbox"
	"github.com/vlansync/vlansync/pkg/runner"
	"github.com/vlansync/vlansync/pkg/store"
	"github.com/vlansync/vlansync/pkg/util"
)

var (
	configPath  string // -c, --config
	envFile     string // --env-file (legacy mode)
	verbose     bool
	jsonOutput  bool
	promptToken bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "vlansync",
	Short:             "FortiGate / NetBox VLAN reconciliation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `vlansync reconciles switch-port VLAN configuration reported by
FortiGate switch controllers against the device records in NetBox and
flags mismatches for review. It never writes to either system.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		level := cfg.Runtime.LogLevel
		if verbose {
			level = "debug"
		}
		if err := util.SetLogLevel(level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default $VLANSYNC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file for legacy environment-variable config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit the run result as JSON")
	rootCmd.PersistentFlags().BoolVar(&promptToken, "prompt-token", false, "prompt for the NetBox API token instead of requiring it in config")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
}

// loadConfig picks YAML mode when a config file is given (flag or
// VLANSYNC_CONFIG), otherwise falls back to the legacy env mode.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("VLANSYNC_CONFIG")
	}
	if path == "" {
		return config.LoadEnv(envFile)
	}

	var opts []config.Option
	if promptToken {
		opts = append(opts, config.WithNetboxTokenPrompt(readTokenPrompt))
	}
	return config.Load(path, opts...)
}

// readTokenPrompt reads the NetBox token from the terminal with echo off.
func readTokenPrompt() (string, error) {
	fmt.Fprint(os.Stderr, "NetBox API token: ")
	token, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// newCache builds the configured cache backend.
func newCache() store.Cache {
	if cfg.Cache.Backend == config.CacheBackendRedis {
		return store.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	}
	return store.NewFileCache(cfg.Runtime.CacheDir)
}

// newRunner wires clients, cache and snapshot store from the config.
func newRunner() *runner.Runner {
	cache := newCache()

	fortigates := make([]runner.FortiGate, 0, len(cfg.Fortigates))
	for _, dev := range cfg.Fortigates {
		fortigates = append(fortigates, fortigate.New(dev, cfg.VlanTranslations,
			fortigate.WithCache(cache, cfg.Runtime.UseCachedData)))
	}

	return &runner.Runner{
		Fortigates: fortigates,
		Netbox: netbox.New(cfg.Netbox, cfg.VlanTranslations,
			netbox.WithCache(cache, cfg.Runtime.UseCachedData)),
		Store:   store.NewSnapshotStore(cfg.Runtime.DataDir),
		Options: diff.Options{FlagNetboxOnlyPorts: cfg.Runtime.FlagNetboxOnlyPorts},
	}
}
