package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Codec selects the video codec family.
type Codec string

const (
	CodecH264  Codec = "h.264"
	CodecMPEG4 Codec = "MPEG-4"
)

// ParseCodec accepts the persisted spellings plus their compact forms.
func ParseCodec(value string) (Codec, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "h.264", "h264", "avc":
		return CodecH264, true
	case "mpeg-4", "mpeg4":
		return CodecMPEG4, true
	default:
		return "", false
	}
}

// ThreadLevel selects how many encoder threads to use.
type ThreadLevel string

const (
	ThreadsMax    ThreadLevel = "MAX"
	ThreadsMiddle ThreadLevel = "MIDDLE"
	ThreadsLow    ThreadLevel = "LOW"
)

// ParseThreadLevel is case-insensitive.
func ParseThreadLevel(value string) (ThreadLevel, bool) {
	switch ThreadLevel(strings.ToUpper(strings.TrimSpace(value))) {
	case ThreadsMax:
		return ThreadsMax, true
	case ThreadsMiddle:
		return ThreadsMiddle, true
	case ThreadsLow:
		return ThreadsLow, true
	default:
		return "", false
	}
}

// BitrateAuto leaves the video bitrate to the encoder.
const BitrateAuto = "auto"

// Record is the settings for one batch run. It is passed by value and not
// modified while a batch runs.
type Record struct {
	Codec        Codec       `json:"codec"`
	Bitrate      string      `json:"bitrate"`
	Width        string      `json:"width"`
	Height       string      `json:"height"`
	SplitSeconds string      `json:"split_seconds"`
	ThreadCount  ThreadLevel `json:"thread_count"`
}

// Default returns the settings used when nothing has been saved.
func Default() Record {
	return Record{
		Codec:       CodecH264,
		Bitrate:     BitrateAuto,
		ThreadCount: ThreadsMiddle,
	}
}

// FromMap builds a Record from a loosely typed mapping. Unknown keys are
// ignored; missing or unrecognised values keep their defaults.
func FromMap(values map[string]any) Record {
	rec := Default()
	if v, ok := stringValue(values, "codec"); ok {
		if codec, ok := ParseCodec(v); ok {
			rec.Codec = codec
		}
	}
	if v, ok := stringValue(values, "bitrate"); ok && v != "" {
		rec.Bitrate = v
	}
	if v, ok := stringValue(values, "width"); ok {
		rec.Width = v
	}
	if v, ok := stringValue(values, "height"); ok {
		rec.Height = v
	}
	if v, ok := stringValue(values, "split_seconds"); ok {
		rec.SplitSeconds = v
	}
	if v, ok := stringValue(values, "thread_count"); ok {
		if level, ok := ParseThreadLevel(v); ok {
			rec.ThreadCount = level
		}
	}
	return rec
}

func stringValue(values map[string]any, key string) (string, bool) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case json.Number:
		return v.String(), true
	default:
		return strings.TrimSpace(fmt.Sprint(v)), true
	}
}

// UnmarshalJSON decodes through FromMap so persisted files with extra keys,
// numeric values, or legacy spellings still load.
func (r *Record) UnmarshalJSON(data []byte) error {
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*r = FromMap(values)
	return nil
}

// Normalized returns a copy with enums and blank values defaulted and
// whitespace trimmed.
func (r Record) Normalized() Record {
	return FromMap(map[string]any{
		"codec":         string(r.Codec),
		"bitrate":       r.Bitrate,
		"width":         r.Width,
		"height":        r.Height,
		"split_seconds": r.SplitSeconds,
		"thread_count":  string(r.ThreadCount),
	})
}

// BitrateKbps reports the requested video bitrate. ok is false for "auto" and
// for anything that is not a non-negative integer.
func (r Record) BitrateKbps() (int, bool) {
	value := strings.TrimSpace(r.Bitrate)
	if strings.EqualFold(value, BitrateAuto) {
		return 0, false
	}
	n, ok := parseDigits(value)
	return n, ok
}

// Scale reports the target frame size. Both dimensions must be positive
// integers; any other combination means no scaling.
func (r Record) Scale() (width, height int, ok bool) {
	w, wok := parseDigits(r.Width)
	h, hok := parseDigits(r.Height)
	if !wok || !hok || w == 0 || h == 0 {
		return 0, 0, false
	}
	return w, h, true
}

// Segment reports the segment length in seconds when splitting is requested.
func (r Record) Segment() (int, bool) {
	n, ok := parseDigits(r.SplitSeconds)
	if !ok || n == 0 {
		return 0, false
	}
	return n, true
}

// Issues lists values that will be ignored when the plan is built. It is
// informational; an encode still runs with those options left out.
func (r Record) Issues() []string {
	var issues []string
	if value := strings.TrimSpace(r.Bitrate); value != "" && !strings.EqualFold(value, BitrateAuto) {
		if _, ok := r.BitrateKbps(); !ok {
			issues = append(issues, fmt.Sprintf("bitrate %q is not a whole number of kbps; encoder default is used", r.Bitrate))
		}
	}
	width, height := strings.TrimSpace(r.Width), strings.TrimSpace(r.Height)
	if width != "" || height != "" {
		if _, _, ok := r.Scale(); !ok {
			issues = append(issues, fmt.Sprintf("size %qx%q needs two positive integers; frames are not scaled", r.Width, r.Height))
		}
	}
	if value := strings.TrimSpace(r.SplitSeconds); value != "" {
		if _, ok := r.Segment(); !ok {
			issues = append(issues, fmt.Sprintf("split %q is not a positive number of seconds; output is not split", r.SplitSeconds))
		}
	}
	return issues
}

// parseDigits accepts only ASCII digit strings, so signs, spaces, and
// decimals are rejected.
func parseDigits(value string) (int, bool) {
	if value == "" || len(value) > 9 {
		return 0, false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
