package ego

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session columns of `soamview session`.
const (
	sessionColID      = 0
	sessionColRunning = 4
	sessionColPending = 7
)

// Task columns of `soamview task` holding start and end times.
const (
	taskColStart = 3
	taskColEnd   = 4
)

// soamTimeLayout matches soam timestamps such as "03/14, 09:26:53".
const soamTimeLayout = "1/2, 15:04:05"

// HostStatus is one host of `egosh resource view`.
type HostStatus struct {
	Host   string
	Status string
}

// Session is one row of `soamview session`.
type Session struct {
	ID      string
	Running int
	Pending int
}

// Slots is the ComputeHosts capacity from `egosh rg`.
type Slots struct {
	Total int
	Free  int
}

// splitColumns splits a soam table row on whitespace without breaking
// timestamps, which carry a space after the comma.
func splitColumns(line string) []string {
	fields := strings.Fields(strings.ReplaceAll(line, ", ", ","))
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, ",", ", ")
	}
	return fields
}

// rows returns the column slices of every data row in out. Rows whose first
// column starts with one of the skip prefixes are headers.
func rows(out string, skip ...string) [][]string {
	var result [][]string
	for _, line := range strings.Split(out, "\n") {
		cols := splitColumns(line)
		if len(cols) == 0 {
			continue
		}
		header := false
		for _, p := range skip {
			if strings.HasPrefix(cols[0], p) {
				header = true
				break
			}
		}
		if !header {
			result = append(result, cols)
		}
	}
	return result
}

// ParseResourceView extracts host states from `egosh resource view`.
// Each host block starts with "HOST_NAME: <host>"; the status is the first
// column of the line after the "status" header.
func ParseResourceView(out string) []HostStatus {
	var (
		hosts       []HostStatus
		host        string
		foundHeader bool
	)
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(cols[0], "HOST_NAME:"):
			host = ""
			if len(cols) > 1 {
				host = cols[1]
			}
			foundHeader = false
		case strings.HasPrefix(cols[0], "status"):
			foundHeader = true
		case foundHeader:
			if host != "" {
				hosts = append(hosts, HostStatus{Host: host, Status: cols[0]})
			}
			host = ""
			foundHeader = false
		}
	}
	return hosts
}

// ParseApps lists application names from `soamview app`.
func ParseApps(out string) []string {
	var apps []string
	for _, cols := range rows(out, "APPLICATION") {
		apps = append(apps, cols[0])
	}
	return apps
}

// ParseSessions reads `soamview session` rows.
func ParseSessions(out string) ([]Session, error) {
	var sessions []Session
	for _, cols := range rows(out, "Application:", "SESSION", "No") {
		if len(cols) <= sessionColPending {
			return nil, fmt.Errorf("malformed session row %q", strings.Join(cols, " "))
		}
		running, err := strconv.Atoi(cols[sessionColRunning])
		if err != nil {
			return nil, fmt.Errorf("invalid running count in session %s: %w", cols[sessionColID], err)
		}
		pending, err := strconv.Atoi(cols[sessionColPending])
		if err != nil {
			return nil, fmt.Errorf("invalid pending count in session %s: %w", cols[sessionColID], err)
		}
		sessions = append(sessions, Session{ID: cols[sessionColID], Running: running, Pending: pending})
	}
	return sessions, nil
}

// ParseTaskRuntimes reads `soamview task` rows and returns each task's
// runtime, at least minTaskRuntime.
func ParseTaskRuntimes(out string) ([]time.Duration, error) {
	var runtimes []time.Duration
	for _, cols := range rows(out, "Application:", "TASK", "No") {
		if len(cols) <= taskColEnd {
			return nil, fmt.Errorf("malformed task row %q", strings.Join(cols, " "))
		}
		start, err := ParseSoamTime(cols[taskColStart])
		if err != nil {
			return nil, err
		}
		end, err := ParseSoamTime(cols[taskColEnd])
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			// crossed a year boundary
			end = end.AddDate(1, 0, 0)
		}
		runtimes = append(runtimes, max(minTaskRuntime, end.Sub(start)))
	}
	return runtimes, nil
}

// minTaskRuntime floors very short tasks.
const minTaskRuntime = 500 * time.Millisecond

// ParseSoamTime parses a soam timestamp. Soam omits the year.
func ParseSoamTime(s string) (time.Time, error) {
	t, err := time.Parse(soamTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid soam timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseResourceGroups sums the ComputeHosts rows of `egosh rg`.
func ParseResourceGroups(out string) (Slots, error) {
	var slots Slots
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Fields(line)
		if len(cols) == 0 || !strings.HasPrefix(cols[0], "ComputeHosts") {
			continue
		}
		if len(cols) < 4 {
			return Slots{}, fmt.Errorf("malformed resource group row %q", line)
		}
		total, err := strconv.Atoi(cols[2])
		if err != nil {
			return Slots{}, fmt.Errorf("invalid slot count for %s: %w", cols[0], err)
		}
		free, err := strconv.Atoi(cols[3])
		if err != nil {
			return Slots{}, fmt.Errorf("invalid free slot count for %s: %w", cols[0], err)
		}
		slots.Total += total
		slots.Free += free
	}
	return slots, nil
}
