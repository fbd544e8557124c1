// Package ego wraps the Symphony command line tools (egosh, soamview) and
// parses their tabular output.
//
// Commands run through a Runner so callers can substitute a fake in tests.
// ExecRunner sources the Symphony profile before running the tool, the same
// environment an administrator gets after logging in.
package ego
