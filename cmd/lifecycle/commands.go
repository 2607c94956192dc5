package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bft-labs/lifecycle/internal/cliconfig"
	"github.com/bft-labs/lifecycle/pkg/lifecycle"
	"github.com/bft-labs/lifecycle/pkg/livedata"
	"github.com/bft-labs/lifecycle/pkg/log"
	"github.com/bft-labs/lifecycle/plugins/filetrigger"
)

func newRunCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [EVENT...]",
		Short: "Apply events to a host and print each transition",
		Long:  "Apply events in order. Without arguments the configured event script is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			if len(args) > 0 {
				c.cfg.Events = args
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			events, err := c.cfg.ParsedEvents()
			if err != nil {
				return err
			}

			host := lifecycle.NewHost(c.cfg.OwnerName, c.engineOptions(c.logger())...)
			if err := attachPrinters(cmd.OutOrStdout(), host, c.cfg.Observers); err != nil {
				return err
			}
			return runEvents(cmd.OutOrStdout(), host, events)
		},
	}
	return cmd
}

func newTableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the transition table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printTable(cmd.OutOrStdout())
		},
	}
}

func newWatchCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Apply events appended to a trigger file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			if err := c.cfg.ValidateWatch(); err != nil {
				return err
			}
			logger := c.logger()

			host := lifecycle.NewHost(c.cfg.OwnerName, c.engineOptions(logger)...)
			if err := attachPrinters(cmd.OutOrStdout(), host, c.cfg.Observers); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, c.cfg, host, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&c.cfg.TriggerFile, "trigger", c.cfg.TriggerFile, "file whose appended lines are applied as events")
	cmd.Flags().BoolVar(&c.cfg.StopOnDestroy, "stop-on-destroy", c.cfg.StopOnDestroy, "exit once the host is destroyed")
	return cmd
}

func watch(ctx context.Context, cfg cliconfig.Config, host *lifecycle.Host, logger log.Logger, w io.Writer) error {
	opts := []filetrigger.Option{filetrigger.WithLogger(logger)}
	if cfg.StopOnDestroy {
		opts = append(opts, filetrigger.WithStopOnDestroy())
	}
	trig := filetrigger.New(cfg.TriggerFile, host.Lifecycle(), opts...)

	if err := trig.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s finished in %s\n", host, host.CurrentState())
	return nil
}

// attachPrinters registers n observers that print every event they see,
// then one more that reports the new state through a shared value.
func attachPrinters(w io.Writer, host *lifecycle.Host, n int) error {
	for i := 1; i <= n; i++ {
		id := i
		_, err := host.Lifecycle().Register(lifecycle.ObserverFunc(func(_ lifecycle.Owner, event lifecycle.Event) error {
			fmt.Fprintf(w, "  observer %d: %s\n", id, event)
			return nil
		}))
		if err != nil {
			return err
		}
	}

	state := livedata.NewWith(host.CurrentState())
	_, err := host.Lifecycle().Register(lifecycle.ObserverFunc(func(owner lifecycle.Owner, _ lifecycle.Event) error {
		state.Set(owner.CurrentState())
		return nil
	}))
	if err != nil {
		return err
	}
	return state.ObserveForever(livedata.ObserverFunc(func(s lifecycle.State) {
		if s != lifecycle.StateInitialized {
			fmt.Fprintf(w, "  %s is now %s\n", host, s)
		}
	}))
}

// runEvents applies events in order and stops at the first rejected one.
// Observer failures are printed but do not stop the run.
func runEvents(w io.Writer, host *lifecycle.Host, events []lifecycle.Event) error {
	for _, event := range events {
		fmt.Fprintf(w, "%s from %s\n", event, host.CurrentState())
		err := host.Lifecycle().HandleEvent(event)
		if err == nil {
			continue
		}
		var de *lifecycle.DispatchError
		if !errors.As(err, &de) {
			return fmt.Errorf("%s rejected: %w", event, err)
		}
		fmt.Fprintf(w, "  %v\n", de)
	}
	return nil
}

func printTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tEVENT\tTO")
	for _, row := range lifecycle.Table() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.From, row.Event, row.To)
	}
	return tw.Flush()
}
