// Package hcloud wraps the Hetzner Cloud API calls used for cluster member
// discovery and registration.
//
// Symphony nodes are regular Hetzner servers carrying the symphony.io/*
// labels. Listing is done with a label selector; registration merges role
// labels into the existing server labels so unrelated labels survive.
package hcloud
