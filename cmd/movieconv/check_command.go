package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movieconv/internal/logging"
	"movieconv/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the encoder, hardware support, and data directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if ctx.configPath != "" {
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			}

			results := preflight.RunAll(cmd.Context(), cfg, nil)
			for _, result := range results {
				fmt.Fprintln(out, renderStatusLine(result.Name, checkStatus(result), result.Detail, colorize))
			}

			failed := preflight.Failed(results)
			if len(failed) > 0 {
				logger.Debug("preflight failed", logging.Int("failed_checks", len(failed)))
				return fmt.Errorf("%d required check(s) failed", len(failed))
			}
			return nil
		},
	}
}
