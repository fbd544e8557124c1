// Package naming centralizes the well-known file locations and names used
// on a Symphony node, so every phase agrees on where artifacts live.
package naming
