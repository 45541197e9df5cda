package cmd

import (
	"fmt"

	"doi-frontend/internal/view"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var cmdCount = &cobra.Command{
	Use:   "count",
	Short: "Print the number of registered objects.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		app, err := readyApp(c.Context(), c.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Fprintf(c.OutOrStdout(), "Total objects: %d\n", app.View.Snapshot().Count)
		return nil
	},
}

var cmdRegister = &cobra.Command{
	Use:   "register <data>",
	Short: "Register a new object and print its id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		app, err := readyApp(c.Context(), c.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		app.View.SetPayload(args[0])
		_, err = app.View.SubmitRecord(c.Context(), args[0])
		fmt.Fprintln(c.OutOrStdout(), app.View.Snapshot().Status)
		return err
	},
}

var cmdGet = &cobra.Command{
	Use:   "get <id>",
	Short: "Print the data stored under an object id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		id, err := view.ParseObjectID(args[0])
		if err != nil {
			return errors.Wrap(err, args[0])
		}
		app, err := readyApp(c.Context(), c.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		data, err := app.View.FetchRecord(c.Context(), id)
		fmt.Fprintln(c.OutOrStdout(), app.View.Snapshot().Status)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Retrieved data: %s\n", data)
		return nil
	},
}
