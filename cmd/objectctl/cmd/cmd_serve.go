package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"doi-frontend/api/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web page and JSON API.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gin.SetMode(gin.ReleaseMode)
		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, app)
	},
}
