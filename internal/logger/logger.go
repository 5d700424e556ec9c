package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/api/monitoredres"
)

const (
	// CtxLoggerKey is how the request logger is stored in gin.Context.
	CtxLoggerKey = "app-logger"

	// TraceHeader carries the trace id on requests routed by Google front ends.
	TraceHeader = "X-Cloud-Trace-Context"

	// parentLogID receives one summary entry per request.
	parentLogID = "killswitch_requests"

	// childLogID receives every log line.
	childLogID = "killswitch"

	resourceType       = "cloud_run_revision"
	projectIDField     = "project_id"
	serviceNameField   = "service_name"
	revisionNameField  = "revision_name"
	defaultServiceName = "killswitch"
	defaultRevision    = "local"
)

type ctxKey struct{}

// Options configures a Logging.
type Options struct {
	// ProjectID is the project the log entries are written to.
	ProjectID    string
	CloudLogging bool
	MinSeverity  logging.Severity
	ServiceName  string
	Revision     string
	// Output receives local log lines, defaults to stderr.
	Output io.Writer
}

// Logging owns the Cloud Logging client and creates per-request loggers.
type Logging struct {
	opts     Options
	client   *logging.Client
	parent   *logging.Logger
	child    *logging.Logger
	resource *monitoredres.MonitoredResource

	mu sync.Mutex
}

// NewLogging initializes the parent & child cloud logging loggers. With
// CloudLogging disabled no client is created and lines go to Output only.
func NewLogging(ctx context.Context, opts Options) (*Logging, error) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	if opts.ServiceName == "" {
		opts.ServiceName = defaultServiceName
	}

	if opts.Revision == "" {
		opts.Revision = defaultRevision
	}

	lg := &Logging{
		opts: opts,
		resource: &monitoredres.MonitoredResource{
			Type: resourceType,
			Labels: map[string]string{
				projectIDField:    opts.ProjectID,
				serviceNameField:  opts.ServiceName,
				revisionNameField: opts.Revision,
			},
		},
	}

	if !opts.CloudLogging {
		return lg, nil
	}

	client, err := logging.NewClient(ctx, opts.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging client: %w", err)
	}

	lg.client = client
	lg.parent = client.Logger(parentLogID)
	lg.child = client.Logger(childLogID)

	return lg, nil
}

// NewLocalLogging returns a Logging that only writes to out.
func NewLocalLogging(out io.Writer, minSeverity logging.Severity) *Logging {
	lg, _ := NewLogging(context.Background(), Options{
		Output:      out,
		MinSeverity: minSeverity,
	})

	return lg
}

// Close flushes buffered entries.
func (lg *Logging) Close() error {
	if lg.client == nil {
		return nil
	}

	return lg.client.Close()
}

// NewLogger creates a logger correlated with the trace found in the
// X-Cloud-Trace-Context header value, or with a fresh trace when empty.
func (lg *Logging) NewLogger(traceHeader string) *Logger {
	traceID := parseTraceID(traceHeader)
	if traceID == "" {
		traceID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	return newLogger(lg, fmt.Sprintf("projects/%s/traces/%s", lg.opts.ProjectID, traceID))
}

// Logger returns the logger stored inside ctx, or a new one.
func (lg *Logging) Logger(ctx context.Context) ILogger {
	if l, ok := FromContext(ctx); ok {
		return l
	}

	return lg.NewLogger("")
}

// Middleware attaches a request logger to both the gin and request contexts
// and writes the request summary once the handler chain returns.
func (lg *Logging) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		l := lg.NewLogger(ctx.GetHeader(TraceHeader))

		ctx.Set(CtxLoggerKey, l)
		ctx.Request = ctx.Request.WithContext(NewContext(ctx.Request.Context(), l))

		ctx.Next()

		l.End(ctx)
	}
}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l ILogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, if any.
func FromContext(ctx context.Context) (ILogger, bool) {
	if l, ok := ctx.Value(ctxKey{}).(ILogger); ok {
		return l, true
	}

	if l, ok := ctx.Value(CtxLoggerKey).(ILogger); ok {
		return l, true
	}

	return nil, false
}

func (lg *Logging) write(e logging.Entry, msg string) {
	if e.Severity < lg.opts.MinSeverity {
		return
	}

	if lg.child != nil {
		lg.child.Log(e)
		return
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	fmt.Fprintf(lg.opts.Output, "[%s] %s\n", strings.ToLower(e.Severity.String()), msg)
}

// parseTraceID extracts TRACE_ID from "TRACE_ID/SPAN_ID;o=TRACE_TRUE".
func parseTraceID(h string) string {
	if i := strings.IndexByte(h, '/'); i > 0 {
		h = h[:i]
	}

	if h == "" || strings.Count(h, "0") == len(h) {
		return ""
	}

	return h
}
