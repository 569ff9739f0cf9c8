package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"movieconv/internal/settings"
)

// settingsFlags are the per-run conversion options shared by convert and
// preset save. Only flags the user set are applied.
type settingsFlags struct {
	codec   string
	bitrate string
	width   string
	height  string
	split   string
	threads string
}

func (f *settingsFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.codec, "codec", "", "Video codec: h264 or mpeg4")
	flags.StringVar(&f.bitrate, "bitrate", "", `Video bitrate in kbps, or "auto"`)
	flags.StringVar(&f.width, "width", "", "Output width in pixels (needs --height)")
	flags.StringVar(&f.height, "height", "", "Output height in pixels (needs --width)")
	flags.StringVar(&f.split, "split", "", "Split output into segments of this many seconds (0 disables)")
	flags.StringVar(&f.threads, "threads", "", "Encoder threads: max, middle, or low")
}

func (f *settingsFlags) apply(cmd *cobra.Command, rec settings.Record) (settings.Record, error) {
	flags := cmd.Flags()
	if flags.Changed("codec") {
		codec, ok := settings.ParseCodec(f.codec)
		if !ok {
			return rec, fmt.Errorf("invalid --codec %q (expected h264 or mpeg4)", f.codec)
		}
		rec.Codec = codec
	}
	if flags.Changed("threads") {
		level, ok := settings.ParseThreadLevel(f.threads)
		if !ok {
			return rec, fmt.Errorf("invalid --threads %q (expected max, middle, or low)", f.threads)
		}
		rec.ThreadCount = level
	}
	if flags.Changed("bitrate") {
		rec.Bitrate = strings.TrimSpace(f.bitrate)
		if rec.Bitrate == "" {
			rec.Bitrate = settings.BitrateAuto
		}
	}
	if flags.Changed("width") {
		rec.Width = strings.TrimSpace(f.width)
	}
	if flags.Changed("height") {
		rec.Height = strings.TrimSpace(f.height)
	}
	if flags.Changed("split") {
		rec.SplitSeconds = strings.TrimSpace(f.split)
		if rec.SplitSeconds == "0" {
			rec.SplitSeconds = ""
		}
	}
	return rec.Normalized(), nil
}

func describeSettings(rec settings.Record) [][]string {
	size := "original"
	if w, h, ok := rec.Scale(); ok {
		size = fmt.Sprintf("%dx%d", w, h)
	}
	split := "off"
	if seconds, ok := rec.Segment(); ok {
		split = fmt.Sprintf("%ds", seconds)
	}
	bitrate := settings.BitrateAuto
	if kbps, ok := rec.BitrateKbps(); ok {
		bitrate = fmt.Sprintf("%d kbps", kbps)
	}
	return [][]string{
		{"Codec", string(rec.Codec)},
		{"Bitrate", bitrate},
		{"Size", size},
		{"Split", split},
		{"Threads", string(rec.ThreadCount)},
	}
}
