package keyutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/ssh"
)

// IsPEM returns true if the data looks like PEM encoded block
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN "))
}

// LoadPrivateKey returns private key loaded from the file,
// decrypted with passphrase if it is protected
func LoadPrivateKey(file string, passphrase []byte) (crypto.Signer, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to load key file")
	}
	return ParsePrivateKeyPEM(raw, passphrase)
}

// ParsePrivateKeyPEM parses and returns a PEM-encoded private key.
// PKCS#1, PKCS#8, SEC1 and OpenSSH formats are supported;
// keys protected with a passphrase require a non-empty passphrase.
func ParsePrivateKeyPEM(keyPEM []byte, passphrase []byte) (crypto.Signer, error) {
	keyPEM = bytes.TrimSpace(keyPEM)
	if !IsPEM(keyPEM) {
		return nil, errors.New("key must be PEM encoded")
	}

	key, err := ssh.ParseRawPrivateKey(keyPEM)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if !errors.As(err, &missing) {
			// the reason is not included, to not leak any info about the key
			return nil, errors.New("unable to parse private key")
		}
		if len(passphrase) == 0 {
			return nil, errors.New("encrypted private key: passphrase required")
		}
		key, err = ssh.ParseRawPrivateKeyWithPassphrase(keyPEM, passphrase)
		if err != nil {
			if errors.Is(err, x509.IncorrectPasswordError) {
				return nil, errors.New("encrypted private key: incorrect passphrase")
			}
			return nil, errors.New("unable to decrypt private key")
		}
	}

	switch pk := key.(type) {
	case *rsa.PrivateKey:
		return pk, nil
	case *ecdsa.PrivateKey:
		return pk, nil
	case ed25519.PrivateKey:
		return pk, nil
	case *ed25519.PrivateKey:
		return *pk, nil
	}
	return nil, errors.Errorf("unsupported key: %T", key)
}

// ParseRSAPublicKeyFromPEM parses PEM encoded RSA public key,
// PKIX, PKCS#1 or the public key of a certificate
func ParseRSAPublicKeyFromPEM(key []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(bytes.TrimSpace(key))
	if block == nil {
		return nil, errors.New("key must be PEM encoded")
	}

	var parsed any
	var err error
	switch block.Type {
	case "RSA PUBLIC KEY":
		parsed, err = x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		var crt *x509.Certificate
		crt, err = x509.ParseCertificate(block.Bytes)
		if err == nil {
			parsed = crt.PublicKey
		}
	default:
		parsed, err = x509.ParsePKIXPublicKey(block.Bytes)
	}
	if err != nil {
		return nil, errors.New("unable to parse RSA Public Key")
	}

	pkey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not RSA Public Key")
	}
	return pkey, nil
}

// EncodePublicKeyToPEM returns PEM encoded public key
func EncodePublicKeyToPEM(pubKey crypto.PublicKey) ([]byte, error) {
	asn1Bytes, err := x509.MarshalPKIXPublicKey(pubKey)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: asn1Bytes,
	}), nil
}

// EncodePrivateKeyToPEM returns PEM encoded private key
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) (key []byte, err error) {
	switch priv := priv.(type) {
	case *rsa.PrivateKey:
		key = pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		})
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(priv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		key = pem.EncodeToMemory(&pem.Block{
			Type:  "EC PRIVATE KEY",
			Bytes: der,
		})
	default:
		return nil, errors.Errorf("unsupported key: %T", priv)
	}

	return
}
