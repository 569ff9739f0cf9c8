package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movieconv/internal/settings"
)

func newPresetCommand(ctx *commandContext) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage named conversion presets",
	}
	presetCmd.AddCommand(newPresetListCommand(ctx))
	presetCmd.AddCommand(newPresetShowCommand(ctx))
	presetCmd.AddCommand(newPresetSaveCommand(ctx))
	presetCmd.AddCommand(newPresetDeleteCommand(ctx))
	return presetCmd
}

func newPresetListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			presets, err := store.Presets()
			if err != nil {
				return err
			}
			names, err := store.PresetNames()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No presets saved")
				return nil
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				row := []string{name}
				for _, pair := range describeSettings(presets[name]) {
					row = append(row, pair[1])
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Codec", "Bitrate", "Size", "Split", "Threads"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newPresetShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			rec, ok, err := store.Preset(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("preset %q not found", strings.TrimSpace(args[0]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(describeSettings(rec)))
			return nil
		},
	}
}

func newPresetSaveCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var fromDefaults bool

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a preset from the current settings and flags",
		Long: `Save a named preset. Values start from the last used settings (or the
defaults with --from-defaults) and are then overridden by any flags given.
An existing preset with the same name is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			rec := store.Load()
			if fromDefaults {
				rec = settings.Default()
			}
			rec, err = flags.apply(cmd, rec)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if err := store.SavePreset(cmd.Context(), name, rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q\n", name)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&fromDefaults, "from-defaults", false, "Start from the default settings instead of the last used ones")
	return cmd
}

func newPresetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			removed, err := store.DeletePreset(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("preset %q not found", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", name)
			return nil
		},
	}
}
