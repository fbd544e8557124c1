// Package directory implements the cluster directory backends that the
// topology resolver queries, and the matching registration side that lets a
// node announce itself and its roles.
//
// Backends:
//
//   - static: a YAML member list on local or shared storage
//   - hcloud: Hetzner Cloud servers carrying symphony.io/* labels
//   - ec2: EC2 instances carrying symphony.io/* tags
//   - s3: one JSON record per member in an S3-compatible bucket
//   - http: a cluster metadata service
//
// Every backend returns a fresh snapshot per Query. Errors that retrying
// cannot fix (bad credentials) are marked with retry.Fatal so discovery
// stops early.
package directory
