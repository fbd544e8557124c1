package keygen

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA size used for the admin key.
const DefaultBits = 2048

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is one authorized_keys line, including the comment if set.
	PublicKey []byte
	// Fingerprint is the SHA256 fingerprint of the public key.
	Fingerprint string
}

// GenerateRSAKeyPair generates a key pair whose public line ends with comment
// (usually "<user>@<hostname>").
func GenerateRSAKeyPair(bits int, comment string) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pub, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	line := ssh.MarshalAuthorizedKey(pub)
	if comment != "" {
		line = append(bytes.TrimRight(line, "\n"), []byte(" "+comment+"\n")...)
	}

	return &KeyPair{
		PrivateKey:  privateKeyPEM,
		PublicKey:   line,
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, nil
}

// AppendAuthorizedKey returns authorizedKeys with pubLine appended unless a
// line with the same key material is already present.
func AppendAuthorizedKey(authorizedKeys, pubLine []byte) ([]byte, bool, error) {
	want, _, _, _, err := ssh.ParseAuthorizedKey(pubLine)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse public key: %w", err)
	}

	rest := authorizedKeys
	for len(bytes.TrimSpace(rest)) > 0 {
		var have ssh.PublicKey
		have, _, _, rest, err = ssh.ParseAuthorizedKey(rest)
		if err != nil {
			// Unparsable trailing lines are left untouched.
			break
		}
		if bytes.Equal(have.Marshal(), want.Marshal()) {
			return authorizedKeys, false, nil
		}
	}

	out := append([]byte(nil), authorizedKeys...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, pubLine...)
	if out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, true, nil
}
