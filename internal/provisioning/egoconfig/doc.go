// Package egoconfig renders the Symphony environment on a node: the login
// profile, the local ego.conf and, where this node owns the EGO install, the
// cluster host list and resource groups.
package egoconfig
