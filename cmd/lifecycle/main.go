package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/lifecycle/internal/cliconfig"
	"github.com/bft-labs/lifecycle/pkg/lifecycle"
	"github.com/bft-labs/lifecycle/pkg/livedata"
	"github.com/bft-labs/lifecycle/pkg/log"
)

const helpDescription = `
Drive a lifecycle state machine from the command line.

  run     apply a sequence of events to a host and print every transition
  table   print the transition table
  watch   apply events appended to a trigger file until destroyed or interrupted

Configuration is read from flags, LIFECYCLE_* environment variables
(optionally from a .env file) and $HOME/.lifecycle/config.toml, in that order.
`

var exampleUsage = strings.TrimSpace(`
  lifecycle run create start resume pause stop destroy
  lifecycle table
  lifecycle watch --trigger /tmp/host.events --stop-on-destroy
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func versionString() string {
	return fmt.Sprintf("%s (lifecycle %s, livedata %s, log %s) %s/%s",
		getVersion(), lifecycle.Version, livedata.Version, log.Version, runtime.GOOS, runtime.GOARCH)
}

// cli carries the configuration shared by every command.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	envFile string
}

// load applies file and environment settings under explicitly set flags.
func (c *cli) load(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cliconfig.ApplyFileConfig(&c.cfg, fc, changed)
	}

	if err := cliconfig.LoadDotEnv(c.envFile); err != nil {
		return err
	}
	if err := cliconfig.ApplyEnvConfig(cmd.Context(), &c.cfg, changed); err != nil {
		return err
	}
	return nil
}

func (c *cli) logger() log.Logger {
	return log.NewZerologAdapter(os.Stderr, c.cfg.LogLevel)
}

func (c *cli) engineOptions(logger log.Logger) []lifecycle.Option {
	opts := []lifecycle.Option{lifecycle.WithLogger(logger)}
	if c.cfg.FailFast {
		opts = append(opts, lifecycle.WithFailFast())
	}
	if c.cfg.CatchUp {
		opts = append(opts, lifecycle.WithCatchUp())
	}
	return opts
}

func newRootCommand() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "lifecycle",
		Short:         "Drive a lifecycle state machine from the command line",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.lifecycle/config.toml)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading LIFECYCLE_* variables")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level: debug, info, warn, error")
	flags.BoolVar(&c.cfg.FailFast, "fail-fast", c.cfg.FailFast, "stop a dispatch pass at the first failing observer")
	flags.BoolVar(&c.cfg.CatchUp, "catch-up", c.cfg.CatchUp, "replay past events to late observers")
	flags.StringVar(&c.cfg.OwnerName, "owner", c.cfg.OwnerName, "name of the lifecycle host")
	flags.IntVar(&c.cfg.Observers, "observers", c.cfg.Observers, "number of printing observers to attach")

	root.AddCommand(newRunCommand(c), newTableCommand(), newWatchCommand(c))
	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.NewZerologAdapter(os.Stderr, "error").Error("lifecycle", log.Err(err))
		os.Exit(1)
	}
}
