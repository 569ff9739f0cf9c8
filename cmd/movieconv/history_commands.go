package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"movieconv/internal/batch"
	"movieconv/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format(historyTimeLayout),
						run.Status,
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						formatElapsed(run.Duration()),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Files", "OK", "Failed", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the files of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				files, err := store.RunFiles(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				writeLines(out, renderSectionHeader("Run "+run.ID, colorize)...)
				summary := [][]string{
					{"Status", paint(run.Status, runStatus(batch.Status(run.Status), run.Failed), colorize)},
					{"Started", run.StartedAt.Local().Format(historyTimeLayout)},
					{"Duration", formatElapsed(run.Duration())},
					{"Files", fmt.Sprintf("%d total, %d converted, %d failed", run.Total, run.Succeeded, run.Failed)},
					{"Encoder", run.Encoder},
					{"Hardware", yesNo(run.Hardware)},
					{"Message", run.Summary},
				}
				fmt.Fprintln(out, renderKeyValues(append(summary, describeSettings(run.Settings)...)))
				if len(files) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(files))
				for _, file := range files {
					detail := file.Output
					if file.Error != "" {
						detail = file.Error
					}
					rows = append(rows, []string{
						strconv.Itoa(file.Seq),
						file.Input,
						paint(file.Outcome, outcomeStatus(batch.Outcome(file.Outcome)), colorize),
						formatElapsed(file.Duration),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Input", "Outcome", "Time", "Output / Error"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
