package cmd

import (
	"context"
	"fmt"
	"io"

	"doi-frontend/config"
	"doi-frontend/internal/bootstrap"
	"doi-frontend/log"

	"github.com/spf13/cobra"
)

var configPath string

// extra bootstrap options, tests swap the node for an in-process ledger
var appOptions []bootstrap.Option

var rootCmd = &cobra.Command{
	Use:          "objectctl",
	Short:        "Register and look up digital objects on the ledger",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the toml config file")
	rootCmd.AddCommand(cmdCount, cmdRegister, cmdGet, cmdServe)
}

func Execute() error {
	return rootCmd.Execute()
}

// newApp loads config and logging and wires the view without connecting.
func newApp() (*bootstrap.App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if _, err := log.Init(conf.Log); err != nil {
		return nil, err
	}
	return bootstrap.New(conf, appOptions...)
}

// readyApp is newApp followed by Init; on failure the status line is printed.
func readyApp(ctx context.Context, out io.Writer) (*bootstrap.App, error) {
	app, err := newApp()
	if err != nil {
		return nil, err
	}
	if err := app.View.Init(ctx); err != nil {
		fmt.Fprintln(out, app.View.Snapshot().Status)
		app.Close()
		return nil, err
	}
	return app, nil
}
