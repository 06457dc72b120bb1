package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeyWideEvent contextKey = "wide_event"
	contextKeyTraceID   contextKey = "trace_id"
)

// WideEvent is the single structured log line emitted per request. Components
// enrich it as the request flows through them.
type WideEvent struct {
	TraceID   string    `json:"trace_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`

	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPPath       string `json:"http_path,omitempty"`
	HTTPStatusCode int    `json:"http_status_code,omitempty"`
	HTTPDurationMs int64  `json:"http_duration_ms,omitempty"`
	RemoteIP       string `json:"remote_ip,omitempty"`

	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`

	// Generation context
	PostID        string `json:"post_id,omitempty"`
	UsageCount    int    `json:"usage_count,omitempty"`
	QuotaBlocked  bool   `json:"quota_blocked,omitempty"`
	Model         string `json:"model,omitempty"`
	RepoStatus    string `json:"repo_status,omitempty"`
	RepoFileCount int    `json:"repo_file_count,omitempty"`

	// Billing context
	Provider     string `json:"provider,omitempty"`
	PaymentEvent string `json:"payment_event,omitempty"`

	Error          string `json:"error,omitempty"`
	ErrorStage     string `json:"error_stage,omitempty"`
	PanicRecovered bool   `json:"panic_recovered,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func NewWideEvent(eventType string) *WideEvent {
	return &WideEvent{
		TraceID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
}

func WithContext(ctx context.Context, event *WideEvent) context.Context {
	ctx = context.WithValue(ctx, contextKeyWideEvent, event)
	ctx = context.WithValue(ctx, contextKeyTraceID, event.TraceID)
	return ctx
}

func FromContext(ctx context.Context) *WideEvent {
	if event, ok := ctx.Value(contextKeyWideEvent).(*WideEvent); ok {
		return event
	}
	return nil
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(contextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

// Enrich helpers are no-ops when the context carries no event.

func EnrichHTTP(ctx context.Context, method, path, remoteIP string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPMethod = method
		event.HTTPPath = path
		event.RemoteIP = remoteIP
	}
}

func EnrichHTTPStatus(ctx context.Context, statusCode int) {
	if event := FromContext(ctx); event != nil {
		event.HTTPStatusCode = statusCode
	}
}

func EnrichHTTPDuration(ctx context.Context, duration time.Duration) {
	if event := FromContext(ctx); event != nil {
		event.HTTPDurationMs = duration.Milliseconds()
	}
}

func EnrichUser(ctx context.Context, userID, email string) {
	if event := FromContext(ctx); event != nil {
		event.UserID = userID
		event.UserEmail = email
	}
}

func EnrichGeneration(ctx context.Context, postID string, usageCount int) {
	if event := FromContext(ctx); event != nil {
		event.PostID = postID
		event.UsageCount = usageCount
	}
}

func EnrichQuotaBlocked(ctx context.Context, usageCount int) {
	if event := FromContext(ctx); event != nil {
		event.QuotaBlocked = true
		event.UsageCount = usageCount
	}
}

func EnrichModel(ctx context.Context, model string) {
	if event := FromContext(ctx); event != nil {
		event.Model = model
	}
}

func EnrichRepo(ctx context.Context, status string, files int) {
	if event := FromContext(ctx); event != nil {
		event.RepoStatus = status
		event.RepoFileCount = files
	}
}

func EnrichPayment(ctx context.Context, provider, eventName string) {
	if event := FromContext(ctx); event != nil {
		event.Provider = provider
		event.PaymentEvent = eventName
	}
}

func EnrichError(ctx context.Context, err error, stage string) {
	if event := FromContext(ctx); event != nil {
		if err != nil {
			event.Error = err.Error()
			event.ErrorStage = stage
		}
	}
}

func EnrichPanic(ctx context.Context) {
	if event := FromContext(ctx); event != nil {
		event.PanicRecovered = true
	}
}

func EnrichMetadata(ctx context.Context, key string, value interface{}) {
	if event := FromContext(ctx); event != nil {
		event.Metadata[key] = value
	}
}

// Emit writes the event through logger.
func Emit(ctx context.Context, logger *slog.Logger) {
	event := FromContext(ctx)
	if event == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("trace_id", event.TraceID),
		slog.String("event_type", event.EventType),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.HTTPMethod != "" {
		attrs = append(attrs, slog.String("http_method", event.HTTPMethod))
	}
	if event.HTTPPath != "" {
		attrs = append(attrs, slog.String("http_path", event.HTTPPath))
	}
	if event.HTTPStatusCode != 0 {
		attrs = append(attrs, slog.Int("http_status_code", event.HTTPStatusCode))
	}
	attrs = append(attrs, slog.Int64("http_duration_ms", event.HTTPDurationMs))
	if event.RemoteIP != "" {
		attrs = append(attrs, slog.String("remote_ip", event.RemoteIP))
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.UserEmail != "" {
		attrs = append(attrs, slog.String("user_email", event.UserEmail))
	}

	if event.PostID != "" {
		attrs = append(attrs, slog.String("post_id", event.PostID))
	}
	if event.UsageCount != 0 {
		attrs = append(attrs, slog.Int("usage_count", event.UsageCount))
	}
	if event.QuotaBlocked {
		attrs = append(attrs, slog.Bool("quota_blocked", true))
	}
	if event.Model != "" {
		attrs = append(attrs, slog.String("model", event.Model))
	}
	if event.RepoStatus != "" {
		attrs = append(attrs,
			slog.String("repo_status", event.RepoStatus),
			slog.Int("repo_file_count", event.RepoFileCount),
		)
	}

	if event.Provider != "" {
		attrs = append(attrs, slog.String("provider", event.Provider))
	}
	if event.PaymentEvent != "" {
		attrs = append(attrs, slog.String("payment_event", event.PaymentEvent))
	}

	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if event.ErrorStage != "" {
		attrs = append(attrs, slog.String("error_stage", event.ErrorStage))
	}
	if event.PanicRecovered {
		attrs = append(attrs, slog.Bool("panic_recovered", event.PanicRecovered))
	}

	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	level := slog.LevelInfo
	if event.Error != "" || event.PanicRecovered || event.HTTPStatusCode >= 500 {
		level = slog.LevelError
	}

	logger.LogAttrs(ctx, level, "wide_event", attrs...)
}
