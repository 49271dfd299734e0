package jwt

import (
	"crypto/rsa"
	"encoding/json"

	jose "github.com/go-jose/go-jose/v3"
)

// ParseJWK returns the key and its kid from JSON Web Key.
// Supported key types are `oct` for HS* and `RSA` for RS* algorithms.
func ParseJWK(raw []byte) (string, *Key, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return "", nil, wrapError(KindKeyInvalid, err, "invalid JWK")
	}
	key, err := keyFromJWK(&jwk)
	if err != nil {
		return "", nil, err
	}
	return jwk.KeyID, key, nil
}

// ParseJWKSet returns the registry with signature keys from JSON Web Key Set.
// Keys with `enc` use are skipped, every other key must have kid.
func ParseJWKSet(raw []byte) (*KeyRegistry, error) {
	var keySet jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &keySet); err != nil {
		return nil, wrapError(KindKeyInvalid, err, "invalid JWKS")
	}

	r := NewKeyRegistry()
	for i := range keySet.Keys {
		jwk := &keySet.Keys[i]
		if jwk.Use == "enc" {
			continue
		}
		if jwk.KeyID == "" {
			return nil, newError(KindKeyInvalid, "invalid JWKS: key %d has no kid", i)
		}
		key, err := keyFromJWK(jwk)
		if err != nil {
			return nil, err
		}
		r.Register(jwk.KeyID, key)
	}
	return r, nil
}

func keyFromJWK(jwk *jose.JSONWebKey) (*Key, error) {
	switch k := jwk.Key.(type) {
	case []byte:
		if len(k) == 0 {
			return nil, newError(KindKeyEmpty, "signing key cannot be empty")
		}
		return NewSymmetricKey(k), nil
	case *rsa.PrivateKey:
		return NewPrivateKey(k), nil
	case *rsa.PublicKey:
		return NewPublicKey(k), nil
	default:
		return nil, newError(KindKeyInvalid, "invalid JWK: unsupported key type %T", jwk.Key)
	}
}
