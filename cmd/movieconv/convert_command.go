package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"movieconv/internal/batch"
	"movieconv/internal/capability"
	"movieconv/internal/deps"
	"movieconv/internal/history"
	"movieconv/internal/logging"
	"movieconv/internal/notifications"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var presetName string
	var encoderFlag string
	var noHardware bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "convert <file-or-folder>...",
		Short: "Convert videos to MP4",
		Long: `Convert every supported video (mp4, mov, avi, mkv, webm, flv, wmv) found in
the given files and folders. Converted files are written to a
"[MovieConverter]ResizedMovie" folder next to each source.

Settings start from the last saved values, then the --preset, then any
flags given here. The result is saved for next time unless --no-save is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.settingsStore(cmd)
			if err != nil {
				return err
			}

			rec := store.Load()
			if name := strings.TrimSpace(presetName); name != "" {
				preset, ok, err := store.Preset(name)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("preset %q not found (see `movieconv preset list`)", name)
				}
				rec = preset
			}
			rec, err = flags.apply(cmd, rec)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noSave {
				if err := store.Save(runCtx, rec); err != nil {
					logging.WarnWithContext(logger, "settings not saved", "settings_save_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "next run starts from the previous settings"),
					)
				}
			}

			opts := []batch.Option{
				batch.WithProber(capability.NewCommandProbe(cfg.Encoder.HardwareProbeCommand, cfg.HardwareProbeTimeout(), logger)),
				batch.WithNotifier(notifications.NewService(cfg, cmd.ErrOrStderr())),
				batch.WithRunLogDir(cfg.RunLogDir(), "debug"),
			}
			if cfg.History.Enabled {
				historyStore, err := history.Open(cfg.HistoryPath())
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
					)
				} else {
					defer historyStore.Close()
					opts = append(opts, batch.WithRecorder(historyStore))
				}
			}

			req := batch.Request{
				Paths:       args,
				Settings:    rec,
				EncoderPath: deps.ResolveEncoder(firstNonEmpty(encoderFlag, cfg.Encoder.Binary)),
			}
			if noHardware || cfg.Encoder.DisableHardware {
				off := false
				req.Hardware = &off
			}

			out := cmd.OutOrStdout()
			renderer := newProgressRenderer(out, shouldColorize(out))
			var result *batch.Result
			for ev := range batch.NewRunner(logger, opts...).Start(runCtx, req) {
				renderer.handle(ev)
				if ev.Kind == batch.KindComplete {
					result = ev.Result
				}
			}
			if result == nil {
				return errors.New("batch ended without a result")
			}
			return convertOutcome(cmd, *result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "Start from a saved preset")
	cmd.Flags().StringVar(&encoderFlag, "encoder", "", "Encoder binary (overrides encoder.binary)")
	cmd.Flags().BoolVar(&noHardware, "no-hardware", false, "Skip the hardware probe and encode in software")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not remember these settings for the next run")
	return cmd
}

// convertOutcome prints the failure table and maps the result onto the exit
// status: failures, aborts, and cancellation all exit nonzero.
func convertOutcome(cmd *cobra.Command, result batch.Result) error {
	out := cmd.OutOrStdout()
	if len(result.Failures) > 0 {
		rows := make([][]string, 0, len(result.Failures))
		for _, failure := range result.Failures {
			reason := failure.Err.Error()
			if failure.Detail != "" {
				reason = lastDetailLine(failure.Detail)
			}
			code := ""
			if failure.ExitCode >= 0 {
				code = fmt.Sprintf("%d", failure.ExitCode)
			}
			rows = append(rows, []string{failure.Path, string(failure.Kind), code, reason})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"File", "Kind", "Exit", "Reason"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	fmt.Fprintf(out, "Run %s: %d converted, %d failed (movieconv history show %s)\n",
		shortID(result.RunID), result.Succeeded, result.Failed(), shortID(result.RunID))

	switch result.Status {
	case batch.StatusCanceled:
		return context.Canceled
	case batch.StatusAborted:
		return fmt.Errorf("%w: %s", batch.ErrEncoderUnavailable, result.Summary)
	}
	if result.Failed() > 0 {
		return fmt.Errorf("%d of %d files failed to convert", result.Failed(), result.Total)
	}
	return nil
}

func lastDetailLine(detail string) string {
	lines := strings.Split(strings.TrimSpace(detail), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
