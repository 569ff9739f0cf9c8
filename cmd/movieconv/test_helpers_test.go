package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"movieconv/internal/testsupport"
)

// stubEncoder records its arguments and creates the output file named by its
// last argument. Inputs whose name contains "broken" fail with exit code 1.
const stubEncoder = `for a in "$@"; do last="$a"; done
case "$3" in
  *broken*) echo "Invalid data found when processing input" >&2; exit 1 ;;
esac
printf '%s\n' "$@" >> "$(dirname "$0")/calls.log"
printf 'video' > "$last"
`

type cliTestEnv struct {
	configPath string
	dataDir    string
	logDir     string
	binDir     string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub encoder is a shell script")
	}

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		dataDir:    filepath.Join(base, "data"),
		logDir:     filepath.Join(base, "logs"),
		binDir:     filepath.Join(base, "bin"),
		mediaDir:   filepath.Join(base, "media"),
	}
	encoder := testsupport.WriteScript(t, env.binDir, "ffmpeg", stubEncoder)
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[encoder]
binary = %q
disable_hardware = true

[notifications]
bell = false
`, env.dataDir, env.logDir, encoder)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) encoderCalls(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.binDir, "calls.log"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read calls: %v", err)
	}
	return string(data)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
