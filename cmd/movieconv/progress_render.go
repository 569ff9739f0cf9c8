package main

import (
	"fmt"
	"io"
	"strings"

	"movieconv/internal/batch"
)

const progressBarWidth = 24

// progressRenderer prints batch events as they arrive, one line per event
// pair so the output stays readable when piped.
type progressRenderer struct {
	w        io.Writer
	colorize bool
	percent  float64
}

func newProgressRenderer(w io.Writer, colorize bool) *progressRenderer {
	return &progressRenderer{w: w, colorize: colorize}
}

func (r *progressRenderer) handle(ev batch.Event) {
	switch ev.Kind {
	case batch.KindCurrentFile:
		fmt.Fprintf(r.w, "[%d/%d] %s\n", ev.Index, ev.Total, ev.Name)
	case batch.KindProgress:
		r.percent = ev.Percent
	case batch.KindETA:
		fmt.Fprintf(r.w, "        %s %5.1f%%  ETA %s\n", progressBar(r.percent, progressBarWidth), r.percent, ev.ETA)
	case batch.KindComplete:
		kind := statusOK
		if ev.Result != nil {
			kind = runStatus(ev.Result.Status, ev.Result.Failed())
		}
		fmt.Fprintln(r.w, paint(ev.Message, kind, r.colorize))
	}
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
