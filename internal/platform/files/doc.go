// Package files writes node configuration files as whole-file resources.
//
// Every write goes to a temporary file in the target directory which is then
// renamed over the destination, so readers see either the old or the new
// content. Unchanged files are left alone, and mode and ownership are applied
// before the rename.
package files
