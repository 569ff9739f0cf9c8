package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultEncoder is resolved through PATH when nothing else is found.
const DefaultEncoder = "ffmpeg"

// executable is swapped in tests.
var executable = os.Executable

// ResolveEncoder picks the encoder binary for a run. An explicitly configured
// binary always wins. Otherwise an ffmpeg shipped alongside the movieconv
// executable (in the same folder or its bin/ subfolder) is preferred, and
// finally the bare name is returned for PATH lookup.
func ResolveEncoder(configured string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	exe, err := executable()
	if err != nil || exe == "" {
		return DefaultEncoder
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	for _, candidate := range sidecarCandidates(exe) {
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate
		}
	}
	return DefaultEncoder
}

// EncoderRequirement describes the encoder for CheckBinaries.
func EncoderRequirement(configured string) Requirement {
	return Requirement{
		Name:        "FFmpeg",
		Command:     ResolveEncoder(configured),
		Description: "Converts videos to MP4",
	}
}

func sidecarCandidates(exe string) []string {
	dir := filepath.Dir(exe)
	name := DefaultEncoder
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return []string{
		filepath.Join(dir, name),
		filepath.Join(dir, "bin", name),
	}
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
