// Package hostfactory configures the HostFactory provider and requestor on
// the master and restarts the HostFactory EGO service when its
// configuration changed.
package hostfactory
