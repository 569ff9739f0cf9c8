package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"movieconv/internal/config"
	"movieconv/internal/deps"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("inspect %s: %w", target, statErr)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set encoder.binary if ffmpeg is not on your PATH.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (defaults to the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget expands an explicit --path or falls back to the default
// config location.
func initTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source := ctx.configPath
			if _, err := os.Stat(ctx.configPath); err != nil {
				source += " (not found; defaults used)"
			}
			encoder := deps.ResolveEncoder(cfg.Encoder.Binary)
			hardware := cfg.Encoder.HardwareProbeCommand
			if cfg.Encoder.DisableHardware {
				hardware = "disabled"
			}
			push := cfg.Notifications.NtfyTopic
			if push == "" {
				push = "off"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues([][]string{
				{"Config", source},
				{"Data directory", cfg.Paths.DataDir},
				{"Log directory", cfg.Paths.LogDir},
				{"Encoder", encoder},
				{"Hardware probe", hardware},
				{"Terminal bell", yesNo(cfg.Notifications.Bell)},
				{"ntfy topic", push},
				{"Run history", yesNo(cfg.History.Enabled)},
				{"Log level", cfg.Logging.Level + " (" + cfg.Logging.Format + ")"},
				{"Log retention", strconv.Itoa(cfg.Logging.RetentionDays) + " days"},
			}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
