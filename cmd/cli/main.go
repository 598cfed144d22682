package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/briefly/internal/client/cli"
	"github.com/dmitrijs2005/briefly/internal/client/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "briefly",
	Short:         "Briefly, an AI document summarization client",
	Long:          "Briefly signs you in to a summarization backend and lets you create, read, regenerate, share and download summaries from an interactive prompt.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.Run(ctx)
		})
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// withApp loads the configuration from cmd's flags, builds the App and runs
// fn with a context cancelled on SIGINT/SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
