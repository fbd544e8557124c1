// Package account creates the cluster admin group and user, its ssh key
// pair and the process limits Symphony needs.
package account
