package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/internal/config"
	"github.com/provide-io/featurecat/go/featurecat/pkg/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func getBuildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// cli carries state shared by all subcommands
type cli struct {
	cfg      config.Config
	logLevel string
}

func (c *cli) logger(cmd *cobra.Command) hclog.Logger {
	return logging.New(logging.Options{
		Name:       "featurecat",
		Level:      logging.GetLogLevel(c.logLevel, c.cfg.LogLevel),
		JSONFormat: c.cfg.JSONLog,
		Output:     cmd.ErrOrStderr(),
	})
}

func newRootCmd(cfg config.Config) *cobra.Command {
	c := &cli{cfg: cfg}

	root := &cobra.Command{
		Use:           "featurecat",
		Short:         "Inspect and query compiled feature catalogs",
		Long:          `Inspect compiled feature catalogs and check which features are enabled for a client edition.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("featurecat {{.Version}}\nBuilt: %s\n", getBuildTimestamp()))
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newInfoCmd(c),
		newEditionsCmd(c),
		newFeaturesCmd(c),
		newCheckCmd(c),
		newVerifyCmd(c),
		newCompileCmd(c),
		newWatchCmd(c),
	)
	return root
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
