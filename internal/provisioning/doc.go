// Package provisioning provides shared types, interfaces, and orchestration for node bootstrap.
//
// # Subpackages
//
// Bootstrap runs them in this order after ValidationPhase:
//
//   - register/: publish this node to the cluster directory
//   - discovery/: resolve the cluster topology and persist the role files
//   - account/: cluster admin group, user, ssh keys and limits
//   - egoconfig/: profile script, ego.conf, ego.cluster and ResourceGroups.xml
//   - hostfactory/: HostFactory conf tree and service restart on the master
//   - schedule/: cron entries for autostart, cleanup and autostop
//
// # Core Types
//
// Context carries configuration, state, file store, command runner and observer.
// Phase defines a bootstrap step with Name() and Provision() methods.
// State accumulates results from each phase (topology, changed files, admin key).
package provisioning
