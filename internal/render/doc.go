// Package render produces the node's configuration files from the resolved
// topology and the node configuration.
//
// Templates are embedded from templates/ and executed with Data. Every
// renderer returns the file body; writing is left to the caller.
package render
