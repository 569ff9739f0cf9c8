package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"movieconv/internal/capability"
	"movieconv/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckEncoder reports whether the encoder binary can be found.
func CheckEncoder(configured string) Result {
	status := deps.CheckBinaries([]deps.Requirement{deps.EncoderRequirement(configured)})[0]
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Path}
}

// CheckHardware runs the hardware probe. A missing GPU is not an error, so
// the result is always optional.
func CheckHardware(ctx context.Context, prober capability.Prober) Result {
	const name = "Hardware encoder"
	if prober == nil {
		return Result{Name: name, Optional: true, Detail: "No probe configured"}
	}
	if prober.Probe(ctx) {
		return Result{Name: name, Passed: true, Optional: true, Detail: "NVENC available (h264_nvenc)"}
	}
	return Result{Name: name, Optional: true, Detail: "Not detected; software encoding (libx264) will be used"}
}

// CheckNtfy verifies the ntfy topic is reachable without publishing.
func CheckNtfy(ctx context.Context, topic string) Result {
	const name = "ntfy"

	topic = strings.TrimRight(strings.TrimSpace(topic), "/")
	if topic == "" {
		return Result{Name: name, Optional: true, Detail: "Disabled"}
	}
	endpoint, err := url.Parse(topic + "/json")
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("invalid topic url (%v)", err)}
	}
	query := endpoint.Query()
	query.Set("poll", "1")
	query.Set("since", "none")
	endpoint.RawQuery = query.Encode()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return Result{Name: name, Passed: true, Optional: true, Detail: "Reachable"}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Optional: true, Detail: "auth failed (topic requires credentials)"}
	default:
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}
