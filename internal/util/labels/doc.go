// Package labels provides the role labels Symphony nodes carry in cloud APIs.
//
// Hetzner Cloud labels and EC2 tags both use the same keys so that the
// directory backends can map them to cluster members the same way.
package labels
