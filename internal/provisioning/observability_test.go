package provisioning

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{fields: make(map[string]string)}
}

func (m *MockObserver) Printf(format string, _ ...any) {
	m.messages = append(m.messages, format)
}

func (m *MockObserver) Event(event Event) {
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, _, _ int) {
	m.Event(Event{Type: EventProgress, Phase: phase, Message: "progress"})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	for k, v := range fields {
		m.fields[k] = v
	}
	return m
}

func (m *MockObserver) eventTypes() []EventType {
	var types []EventType
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

func newHookedObserver(t *testing.T) (*ConsoleObserver, *logrustest.Hook) {
	t.Helper()
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewConsoleObserver(logger), hook
}

func TestConsoleObserver_Printf(t *testing.T) {
	t.Parallel()
	observer, hook := newHookedObserver(t)

	observer.Printf("resolved master %s", "m1")

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "resolved master m1", hook.LastEntry().Message)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestConsoleObserver_Event(t *testing.T) {
	t.Parallel()
	observer, hook := newHookedObserver(t)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	observer.Event(Event{
		Type:      EventResourceChanged,
		Phase:     "egoconfig",
		Resource:  "/etc/ego.conf",
		Message:   "file updated",
		Timestamp: ts,
		Fields:    map[string]string{"type": "file"},
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "file updated", entry.Message)
	assert.Equal(t, ts, entry.Time)
	assert.Equal(t, "resource.changed", entry.Data["event"])
	assert.Equal(t, "egoconfig", entry.Data["phase"])
	assert.Equal(t, "/etc/ego.conf", entry.Data["resource"])
	assert.Equal(t, "file", entry.Data["type"])
}

func TestConsoleObserver_EventLevels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eventType EventType
		want      logrus.Level
	}{
		{EventPhaseStarted, logrus.InfoLevel},
		{EventPhaseFailed, logrus.ErrorLevel},
		{EventValidationError, logrus.ErrorLevel},
		{EventValidationWarning, logrus.WarnLevel},
		{EventResourceChanged, logrus.InfoLevel},
		{EventResourceUnchanged, logrus.DebugLevel},
		{EventResourceSkipped, logrus.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			t.Parallel()
			observer, hook := newHookedObserver(t)
			observer.Event(Event{Type: tt.eventType, Message: "x"})
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, tt.want, hook.LastEntry().Level)
		})
	}
}

func TestConsoleObserver_Progress(t *testing.T) {
	t.Parallel()
	observer, hook := newHookedObserver(t)

	observer.Progress("account", 1, 4)
	assert.Equal(t, "progress 1/4 (25%)", hook.LastEntry().Message)
	assert.Equal(t, 4, hook.LastEntry().Data["total"])

	observer.Progress("account", 0, 0)
	assert.Equal(t, "progress 0/0", hook.LastEntry().Message)
}

func TestConsoleObserver_WithFields(t *testing.T) {
	t.Parallel()
	observer, hook := newHookedObserver(t)

	child := observer.WithFields(map[string]string{"run_id": "r-1", "node": "m1"})
	child.Printf("hello")
	assert.Equal(t, "r-1", hook.LastEntry().Data["run_id"])
	assert.Equal(t, "m1", hook.LastEntry().Data["node"])

	observer.Printf("parent")
	assert.NotContains(t, hook.LastEntry().Data, "run_id")
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "warn", "json")
		require.NoError(t, err)

		NewConsoleObserver(logger).Printf("hidden")
		LogValidationWarning(NewConsoleObserver(logger), "symphony.license_file", "no license")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "no license", line["msg"])
		assert.Equal(t, "warning", line["level"])
		assert.Equal(t, "validation.warning", line["event"])
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "", "text")
		require.NoError(t, err)
		NewConsoleObserver(logger).Printf("plain")
		assert.Contains(t, buf.String(), `msg=plain`)
	})

	t.Run("bad level", func(t *testing.T) {
		t.Parallel()
		_, err := NewLogger(&bytes.Buffer{}, "loud", "text")
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()
		_, err := NewLogger(&bytes.Buffer{}, "info", "xml")
		assert.Error(t, err)
	})
}

func TestLogHelpers(t *testing.T) {
	t.Parallel()
	observer := NewMockObserver()

	LogPhaseStart(observer, "discovery")
	LogPhaseComplete(observer, "discovery", 1500*time.Millisecond)
	LogPhaseFailed(observer, "discovery", errors.New("boom"))
	LogResource(observer, "account", "file", "/etc/security/limits.d/egoadmin.conf", true)
	LogResource(observer, "account", "file", "/etc/security/limits.d/egoadmin.conf", false)
	LogResourceSkipped(observer, "egoconfig", "file", "ego.cluster", "shared install")

	assert.Equal(t, []EventType{
		EventPhaseStarted,
		EventPhaseCompleted,
		EventPhaseFailed,
		EventResourceChanged,
		EventResourceUnchanged,
		EventResourceSkipped,
	}, observer.eventTypes())
	assert.Equal(t, "completed in 1.5s", observer.events[1].Message)
	assert.Equal(t, "failed: boom", observer.events[2].Message)
	assert.Equal(t, "file updated", observer.events[3].Message)
	assert.Equal(t, "file skipped: shared install", observer.events[5].Message)
}
