package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"movieconv/internal/config"
)

const userAgent = "movieconv/0.1.0"

// Summary describes a finished batch.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	// Message is the completion text shown to the user.
	Message string
}

// Service defines the notification surface used by the batch runner.
type Service interface {
	NotifyBatchCompleted(ctx context.Context, summary Summary) error
	TestNotification(ctx context.Context) error
}

// NewService builds the configured notifiers. The terminal bell writes to
// bell; ntfy is added when a topic is configured. With neither enabled a noop
// implementation is returned.
func NewService(cfg *config.Config, bell io.Writer) Service {
	if cfg == nil {
		return noopService{}
	}
	var services []Service
	if cfg.Notifications.Bell && bell != nil {
		services = append(services, NewBell(bell))
	}
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := cfg.NotificationTimeout()
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		services = append(services, &ntfyService{
			endpoint: topic,
			client:   &http.Client{Timeout: timeout},
		})
	}
	return Multi(services...)
}

// Noop returns a Service that does nothing.
func Noop() Service { return noopService{} }

// NewBell returns a Service that rings the terminal bell on w.
func NewBell(w io.Writer) Service {
	return &bellService{w: w}
}

type bellService struct {
	mu sync.Mutex
	w  io.Writer
}

func (b *bellService) NotifyBatchCompleted(context.Context, Summary) error {
	return b.ring()
}

func (b *bellService) TestNotification(context.Context) error {
	return b.ring()
}

func (b *bellService) ring() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

// Multi fans a notification out to every service and joins their errors.
func Multi(services ...Service) Service {
	filtered := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			filtered = append(filtered, svc)
		}
	}
	switch len(filtered) {
	case 0:
		return noopService{}
	case 1:
		return filtered[0]
	default:
		return multiService(filtered)
	}
}

type multiService []Service

func (m multiService) NotifyBatchCompleted(ctx context.Context, summary Summary) error {
	var errs []error
	for _, svc := range m {
		errs = append(errs, svc.NotifyBatchCompleted(ctx, summary))
	}
	return errors.Join(errs...)
}

func (m multiService) TestNotification(ctx context.Context) error {
	var errs []error
	for _, svc := range m {
		errs = append(errs, svc.TestNotification(ctx))
	}
	return errors.Join(errs...)
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary Summary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	title := "movieconv - Batch Complete"
	message := fmt.Sprintf("Converted %d of %d files in %s", summary.Succeeded, summary.Total, durationText)
	if summary.Failed > 0 {
		title = "movieconv - Batch Complete (with errors)"
		message = fmt.Sprintf("%d succeeded, %d failed in %s", summary.Succeeded, summary.Failed, durationText)
	}
	if text := strings.TrimSpace(summary.Message); text != "" {
		message = text + "\n" + message
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"movieconv", "batch", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "movieconv - Test",
		message:  "Notification system test",
		tags:     []string{"movieconv", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchCompleted(context.Context, Summary) error { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
