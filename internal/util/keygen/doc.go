// Package keygen generates the SSH key pair of the cluster admin user.
//
// The private key is PEM encoded (PKCS#1) and written as ~/.ssh/id_rsa; the
// public key is in authorized_keys format so the admin can reach every node.
package keygen
