// Package autoscale implements the scheduled jobs that keep a Symphony grid
// sized to its workload: cleanup of departed hosts, autostart demand
// requests and autostop idle tracking.
package autoscale
