package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movieconv/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or reset the remembered conversion settings",
	}
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the settings the next conversion starts from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			rec := store.Load()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues(describeSettings(rec)))
			for _, issue := range rec.Issues() {
				fmt.Fprintln(out, renderStatusLine("Note", statusWarn, issue, shouldColorize(out)))
			}
			return nil
		},
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), settings.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
			return nil
		},
	})
	return settingsCmd
}
