package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movieconv/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test completion notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Notifications.Bell && strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "Notifications are disabled (enable notifications.bell or set notifications.ntfy_topic)")
				return nil
			}
			svc := notifications.NewService(cfg, cmd.ErrOrStderr())
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("test notification failed: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
