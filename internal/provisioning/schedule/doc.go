// Package schedule installs the cron jobs that run autostart, cleanup and
// autostop on the node.
package schedule
