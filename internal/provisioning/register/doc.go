// Package register publishes the local node to the cluster directory so
// that peers, and the node itself, can discover its roles.
package register
