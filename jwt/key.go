package jwt

import (
	"crypto"
	"crypto/rsa"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjwt/keyutil"
)

// Key is the key material to sign and verify tokens:
// a shared secret for HS* algorithms, or an RSA key for RS* algorithms.
// A Key is immutable and safe for concurrent use.
type Key struct {
	secret []byte
	signer crypto.Signer
	public *rsa.PublicKey
	// err is set for key material that could not be loaded,
	// such key fails on the first use
	err error
}

// NewSymmetricKey returns a shared secret key for HS* algorithms
func NewSymmetricKey(secret []byte) *Key {
	return &Key{secret: append([]byte(nil), secret...)}
}

// NewPrivateKey returns a key for RS* algorithms from RSA signer.
// The signer can be *rsa.PrivateKey, or any crypto.Signer backed by HSM or KMS.
func NewPrivateKey(signer crypto.Signer) *Key {
	if signer == nil {
		return &Key{}
	}
	pub, ok := signer.Public().(*rsa.PublicKey)
	if !ok {
		return invalidKey(errors.Errorf("RSA key required, got %T", signer.Public()))
	}
	return &Key{signer: signer, public: pub}
}

// NewPublicKey returns a verification only key for RS* algorithms
func NewPublicKey(pub *rsa.PublicKey) *Key {
	if pub == nil {
		return &Key{}
	}
	return &Key{public: pub}
}

// ParsePrivateKeyPEM returns a key for RS* algorithms from PEM encoded
// private key, decrypted with passphrase if it is protected
func ParsePrivateKeyPEM(keyPEM []byte, passphrase []byte) (*Key, error) {
	signer, err := keyutil.ParsePrivateKeyPEM(keyPEM, passphrase)
	if err != nil {
		return nil, wrapError(KindKeyInvalid, err, "invalid key")
	}
	key := NewPrivateKey(signer)
	if key.err != nil {
		return nil, wrapError(KindKeyInvalid, key.err, "invalid key")
	}
	return key, nil
}

// LoadPrivateKeyFile returns a key for RS* algorithms loaded from PEM file
func LoadPrivateKeyFile(file string, passphrase []byte) (*Key, error) {
	signer, err := keyutil.LoadPrivateKey(file, passphrase)
	if err != nil {
		return nil, wrapError(KindKeyInvalid, err, "invalid key: should be file path of private key")
	}
	key := NewPrivateKey(signer)
	if key.err != nil {
		return nil, wrapError(KindKeyInvalid, key.err, "invalid key")
	}
	return key, nil
}

// ParsePublicKeyPEM returns a verification only key from PEM encoded RSA public key
func ParsePublicKeyPEM(pubPEM []byte) (*Key, error) {
	pub, err := keyutil.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, wrapError(KindKeyInvalid, err, "invalid key")
	}
	return NewPublicKey(pub), nil
}

func invalidKey(err error) *Key {
	return &Key{err: err}
}

// Kind returns the kind of the key, or KeyNone for unusable key
func (k *Key) Kind() KeyKind {
	switch {
	case k == nil || k.err != nil:
		return KeyNone
	case len(k.secret) > 0:
		return KeySymmetric
	case k.public != nil:
		return KeyAsymmetric
	default:
		return KeyNone
	}
}

// IsEmpty returns true if the key has no material
func (k *Key) IsEmpty() bool {
	return k == nil || (k.err == nil && len(k.secret) == 0 && k.signer == nil && k.public == nil)
}

// CanSign returns true if the key can produce signatures
func (k *Key) CanSign() bool {
	switch k.Kind() {
	case KeySymmetric:
		return true
	case KeyAsymmetric:
		return k.signer != nil
	default:
		return false
	}
}

// Public returns the RSA public key, or nil for symmetric key
func (k *Key) Public() *rsa.PublicKey {
	if k == nil {
		return nil
	}
	return k.public
}

// Err returns the reason the key can not be used, if any
func (k *Key) Err() error {
	if k == nil {
		return nil
	}
	return k.err
}

// usableFor returns KeyInvalid error if the key can not be used with alg
func (k *Key) usableFor(alg Algorithm, signing bool) error {
	if k.Err() != nil {
		return wrapError(KindKeyInvalid, k.err, "invalid key")
	}
	kind := k.Kind()
	if kind != alg.KeyKind() {
		return newError(KindKeyInvalid, "invalid key: %s requires %s key, got %s", alg, alg.KeyKind(), kind)
	}
	if signing && !k.CanSign() {
		return newError(KindKeyInvalid, "invalid key: should be private key")
	}
	return nil
}
