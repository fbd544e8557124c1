// Package discovery resolves the cluster topology and persists the master
// and management host files that later phases and the scheduled jobs read.
package discovery
