package jwt

import (
	"crypto"
	_ "crypto/sha256" // register SHA-256
	_ "crypto/sha512" // register SHA-384 and SHA-512
)

// Algorithm is a JWS signing algorithm supported by this package
type Algorithm string

// Supported algorithms
const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
)

// KeyKind is the kind of key material an algorithm requires
type KeyKind int

// Key kinds
const (
	// KeyNone is the kind of an unusable key
	KeyNone KeyKind = iota
	// KeySymmetric is a shared secret, used by HS* algorithms
	KeySymmetric
	// KeyAsymmetric is an RSA key pair, used by RS* algorithms
	KeyAsymmetric
)

func (k KeyKind) String() string {
	switch k {
	case KeySymmetric:
		return "symmetric"
	case KeyAsymmetric:
		return "asymmetric"
	default:
		return "none"
	}
}

// Algorithms returns all supported algorithms
func Algorithms() []Algorithm {
	return []Algorithm{HS256, HS384, HS512, RS256, RS384, RS512}
}

// ParseAlgorithm returns the Algorithm with the given name
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(name)
	if !alg.Valid() {
		return "", newError(KindAlgoUnsupported, "unsupported algo %s", name)
	}
	return alg, nil
}

// Valid returns true for the supported algorithms
func (a Algorithm) Valid() bool {
	return a.KeyKind() != KeyNone
}

// String returns the algorithm name, as it appears in the `alg` header
func (a Algorithm) String() string {
	return string(a)
}

// Hash returns the digest function of the algorithm, or 0 when not supported
func (a Algorithm) Hash() crypto.Hash {
	switch a {
	case HS256, RS256:
		return crypto.SHA256
	case HS384, RS384:
		return crypto.SHA384
	case HS512, RS512:
		return crypto.SHA512
	default:
		return 0
	}
}

// KeyKind returns the kind of key the algorithm signs and verifies with
func (a Algorithm) KeyKind() KeyKind {
	switch a {
	case HS256, HS384, HS512:
		return KeySymmetric
	case RS256, RS384, RS512:
		return KeyAsymmetric
	default:
		return KeyNone
	}
}

// HashFunc implements crypto.SignerOpts
func (a Algorithm) HashFunc() crypto.Hash {
	return a.Hash()
}
