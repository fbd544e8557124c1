package provisioning

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const rfc3339NanoFixed = "2006-01-02T15:04:05.000000000Z07:00"

// Observer defines the interface for structured observability during bootstrap.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured bootstrap event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "discovery", "account")
	Message   string            // Human-readable message
	Resource  string            // File path, account or service name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of bootstrap event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceChanged indicates a file, account or service was changed.
	EventResourceChanged EventType = "resource.changed"
	// EventResourceUnchanged indicates a resource already had the desired state.
	EventResourceUnchanged EventType = "resource.unchanged"
	// EventResourceSkipped indicates a resource is not managed on this node.
	EventResourceSkipped EventType = "resource.skipped"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventWarning indicates a recoverable failure the phase continued past.
	EventWarning EventType = "warning"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// NewLogger builds a logrus logger writing to out. Level is a logrus level
// name; format is "text" or "json".
func NewLogger(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = out

	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		logger.Level = lvl
	}

	switch format {
	case "", "text":
		logger.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: rfc3339NanoFixed,
		}
	case "json":
		logger.Formatter = &logrus.JSONFormatter{
			TimestampFormat: rfc3339NanoFixed,
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// ConsoleObserver implements Observer on top of a logrus entry.
type ConsoleObserver struct {
	entry *logrus.Entry
}

// NewConsoleObserver creates an observer logging through logger. A nil
// logger uses the logrus standard logger.
func NewConsoleObserver(logger *logrus.Logger) *ConsoleObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ConsoleObserver{entry: logrus.NewEntry(logger)}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.entry.Infof(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := logrus.Fields{"event": string(event.Type)}
	if event.Phase != "" {
		fields["phase"] = event.Phase
	}
	if event.Resource != "" {
		fields["resource"] = event.Resource
	}
	for k, v := range event.Fields {
		fields[k] = v
	}

	o.entry.WithFields(fields).WithTime(event.Timestamp).Log(levelFor(event.Type), event.Message)
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	entry := o.entry.WithFields(logrus.Fields{
		"event":   string(EventProgress),
		"phase":   phase,
		"current": current,
		"total":   total,
	})
	if total == 0 {
		entry.Infof("progress %d/%d", current, total)
		return
	}
	entry.Infof("progress %d/%d (%d%%)", current, total, current*100/total)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	lf := make(logrus.Fields, len(fields))
	for k, v := range fields {
		lf[k] = v
	}
	return &ConsoleObserver{entry: o.entry.WithFields(lf)}
}

func levelFor(t EventType) logrus.Level {
	switch t {
	case EventPhaseFailed, EventValidationError:
		return logrus.ErrorLevel
	case EventValidationWarning, EventWarning:
		return logrus.WarnLevel
	case EventResourceUnchanged, EventResourceSkipped:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResource logs whether a resource had to be changed.
func LogResource(observer Observer, phase, resourceType, resourceName string, changed bool) {
	event := Event{
		Type:     EventResourceUnchanged,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s up to date", resourceType),
		Fields:   map[string]string{"type": resourceType},
	}
	if changed {
		event.Type = EventResourceChanged
		event.Message = fmt.Sprintf("%s updated", resourceType)
	}
	observer.Event(event)
}

// LogResourceSkipped logs a resource that this node does not manage.
func LogResourceSkipped(observer Observer, phase, resourceType, resourceName, reason string) {
	observer.Event(Event{
		Type:     EventResourceSkipped,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s skipped: %s", resourceType, reason),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogValidationWarning logs a non-fatal configuration finding.
func LogValidationWarning(observer Observer, field, message string) {
	observer.Event(Event{
		Type:     EventValidationWarning,
		Phase:    "validation",
		Resource: field,
		Message:  message,
	})
}
