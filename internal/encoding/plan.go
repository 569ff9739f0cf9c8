package encoding

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"movieconv/internal/services"
	"movieconv/internal/settings"
)

// OutputDirName is the folder created next to each input to hold its
// converted files.
const OutputDirName = "[MovieConverter]ResizedMovie"

// Encoder ids understood by the external encoder.
const (
	EncoderH264NVENC = "h264_nvenc"
	EncoderX264      = "libx264"
	EncoderMPEG4     = "mpeg4"
)

// Preset tiers.
const (
	PresetFast   = "fast"
	PresetMedium = "medium"
)

const (
	audioCodec   = "aac"
	audioBitrate = "192k"
)

// logicalCores is swapped in tests.
var logicalCores = runtime.NumCPU

// Plan is the resolved invocation for one input file.
type Plan struct {
	Executable string
	Input      string
	Encoder    string
	Preset     string
	Threads    int
	// Hardware is true when the hardware encoder was selected.
	Hardware bool
	// Bitrate is the -b:v value such as "800k", empty when unset.
	Bitrate string
	// Scale is the "w:h" scale filter argument, empty when unset.
	Scale string
	// SegmentSeconds is the segment length, zero when not splitting.
	SegmentSeconds int
	OutputDir      string
	// Output is the output file, or an ffmpeg sequence pattern
	// (<stem>_%03d.mp4) when splitting.
	Output string
}

// Segmented reports whether the plan splits its output into several files.
func (p Plan) Segmented() bool { return p.SegmentSeconds > 0 }

// Args returns the encoder argument list, excluding the executable.
func (p Plan) Args() []string {
	args := []string{
		"-y",
		"-i", p.Input,
		"-c:v", p.Encoder,
		"-preset", p.Preset,
		"-threads", strconv.Itoa(p.Threads),
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
	}
	if p.Bitrate != "" {
		args = append(args, "-b:v", p.Bitrate)
	}
	if p.Scale != "" {
		args = append(args, "-vf", "scale="+p.Scale)
	}
	if p.SegmentSeconds > 0 {
		args = append(args,
			"-f", "segment",
			"-segment_time", strconv.Itoa(p.SegmentSeconds),
			"-reset_timestamps", "1",
		)
	}
	return append(args, p.Output)
}

// CommandLine renders the invocation for logs.
func (p Plan) CommandLine() string {
	parts := append([]string{p.Executable}, p.Args()...)
	for i, part := range parts {
		if part == "" || strings.ContainsAny(part, " \t\"'") {
			parts[i] = strconv.Quote(part)
		}
	}
	return strings.Join(parts, " ")
}

// Build resolves the plan for input. The only side effect is creating the
// output folder; a failure there is returned as a validation error so the
// caller treats it as a per-file failure.
func Build(input string, rec settings.Record, encoderPath string, hw bool) (Plan, error) {
	plan := Plan{
		Executable: encoderPath,
		Input:      input,
		Threads:    ThreadCount(rec.ThreadCount, logicalCores()),
	}

	switch rec.Codec {
	case settings.CodecMPEG4:
		plan.Encoder = EncoderMPEG4
	default:
		if hw {
			plan.Encoder = EncoderH264NVENC
			plan.Hardware = true
		} else {
			plan.Encoder = EncoderX264
		}
	}
	plan.Preset = PresetMedium
	if plan.Hardware {
		plan.Preset = PresetFast
	}

	if kbps, ok := rec.BitrateKbps(); ok {
		plan.Bitrate = fmt.Sprintf("%dk", kbps)
	}
	if w, h, ok := rec.Scale(); ok {
		plan.Scale = fmt.Sprintf("%d:%d", w, h)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	plan.OutputDir = filepath.Join(filepath.Dir(input), OutputDirName)
	if seconds, ok := rec.Segment(); ok {
		plan.SegmentSeconds = seconds
		// The segment muxer reads the output as a pattern; a literal % in the
		// stem must be doubled.
		plan.Output = filepath.Join(plan.OutputDir, strings.ReplaceAll(stem, "%", "%%")+"_%03d.mp4")
	} else {
		plan.Output = filepath.Join(plan.OutputDir, stem+".mp4")
	}

	if err := os.MkdirAll(plan.OutputDir, 0o755); err != nil {
		return Plan{}, services.Wrap(services.ErrValidation, "encoding", "create output folder", plan.OutputDir, err)
	}
	return plan, nil
}

// ThreadCount maps a thread level onto a concrete count for a machine with
// cores logical CPUs. The result is never below 1.
func ThreadCount(level settings.ThreadLevel, cores int) int {
	if cores < 1 {
		cores = 1
	}
	switch level {
	case settings.ThreadsMax:
		return cores
	case settings.ThreadsLow:
		return 1
	default:
		return max(1, cores/2)
	}
}
