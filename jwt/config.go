package jwt

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/xjwt/keyutil"
	"github.com/effective-security/xlog"
	"gopkg.in/yaml.v3"
)

// KeyConfig provides a key identified by kid
type KeyConfig struct {
	// ID of the key, matched against the `kid` header
	ID string `json:"kid" yaml:"kid"`
	// Key is PEM encoded RSA key, or the shared secret.
	// Supports file:// and env:// schemes.
	Key string `json:"key" yaml:"key"`
}

// Config provides the Codec configuration
type Config struct {
	// Algorithm specifies signing algorithm, HS256 by default
	Algorithm string `json:"alg" yaml:"alg" env:"ALG"`
	// Key specifies the shared secret for HS* algorithms,
	// or PEM encoded private key, or path to PEM file, for RS* algorithms.
	// Supports file:// and env:// schemes.
	Key string `json:"key" yaml:"key" env:"KEY"`
	// Passphrase for encrypted private key
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty" env:"PASSPHRASE"`
	// MaxAge specifies the token TTL in seconds
	MaxAge int64 `json:"max_age,omitempty" yaml:"max_age,omitempty" env:"MAX_AGE"`
	// Leeway specifies the clock skew in seconds
	Leeway int64 `json:"leeway,omitempty" yaml:"leeway,omitempty" env:"LEEWAY"`
	// Keys specifies the keys identified by kid
	Keys []*KeyConfig `json:"keys,omitempty" yaml:"keys,omitempty"`
	// JWKS specifies JSON Web Key Set with the keys identified by kid.
	// Supports file:// and env:// schemes.
	JWKS string `json:"jwks,omitempty" yaml:"jwks,omitempty" env:"JWKS"`
	// AllowedAlgorithms restricts the algorithms accepted on decode
	AllowedAlgorithms []string `json:"allowed_algs,omitempty" yaml:"allowed_algs,omitempty" env:"ALLOWED_ALGS" envSeparator:","`
}

// LoadConfig returns configuration loaded from a file
func LoadConfig(file string) (*Config, error) {
	if file == "" {
		return &Config{}, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var config Config
	if strings.HasSuffix(file, ".json") {
		err = json.Unmarshal(raw, &config)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to unmarshal JSON: %q", file)
		}
	} else {
		err = yaml.Unmarshal(raw, &config)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to unmarshal YAML: %q", file)
		}
	}
	return &config, nil
}

// ConfigFromEnv returns configuration from environment variables,
// named with prefix, for example JWT_ALG and JWT_KEY for prefix "JWT_"
func ConfigFromEnv(prefix string) (*Config, error) {
	var config Config
	err := env.ParseWithOptions(&config, env.Options{Prefix: prefix})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to parse environment")
	}
	return &config, nil
}

// Load returns new Codec with configuration loaded from a file
func Load(cfgfile string, opts ...Option) (*Codec, error) {
	cfg, err := LoadConfig(cfgfile)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig returns new Codec from configuration.
// The options are applied after the configured values.
func NewFromConfig(cfg *Config, opts ...Option) (*Codec, error) {
	name := cfg.Algorithm
	if name == "" {
		name = string(HS256)
	}
	alg, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}

	secret, err := configloader.ResolveValue(cfg.Key)
	if err != nil {
		return nil, wrapError(KindKeyInvalid, err, "unable to load key")
	}
	passphrase, err := configloader.ResolveValue(cfg.Passphrase)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load passphrase")
	}
	if secret == "" {
		return nil, newError(KindKeyEmpty, "signing key cannot be empty")
	}

	var key *Key
	if alg.KeyKind() == KeySymmetric {
		key = NewSymmetricKey([]byte(secret))
	} else {
		key = loadSigningKey(secret, []byte(passphrase))
	}

	registry := NewKeyRegistry()
	for _, kc := range cfg.Keys {
		val, err := configloader.ResolveValue(kc.Key)
		if err != nil {
			return nil, wrapError(KindKeyInvalid, err, "unable to load key %q", kc.ID)
		}
		k, err := parseKeyValue(val, []byte(passphrase))
		if err != nil {
			return nil, err
		}
		registry.Register(kc.ID, k)
	}

	if cfg.JWKS != "" {
		val, err := configloader.ResolveValue(cfg.JWKS)
		if err != nil {
			return nil, wrapError(KindKeyInvalid, err, "unable to load JWKS")
		}
		set, err := ParseJWKSet([]byte(val))
		if err != nil {
			return nil, err
		}
		for kid, k := range set.keys {
			registry.Register(kid, k)
		}
	}

	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}

	copts := []Option{
		WithMaxAge(maxAge),
		WithLeeway(cfg.Leeway),
		WithKeyRegistry(registry),
	}
	for _, name := range cfg.AllowedAlgorithms {
		a, err := ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		copts = append(copts, WithAllowedAlgorithms(a))
	}

	return New(alg, key, append(copts, opts...)...)
}

// loadSigningKey returns RSA key from PEM, or from PEM file path.
// Key that can not be loaded fails with KeyInvalid on the first use.
func loadSigningKey(val string, passphrase []byte) *Key {
	var (
		key *Key
		err error
	)
	if keyutil.IsPEM([]byte(val)) {
		key, err = ParsePrivateKeyPEM([]byte(val), passphrase)
	} else {
		key, err = LoadPrivateKeyFile(val, passphrase)
	}
	if err != nil {
		logger.KV(xlog.ERROR, "reason", "load_key", "err", err.Error())
		return invalidKey(err)
	}
	return key
}

// parseKeyValue returns RSA key for PEM value, or shared secret otherwise
func parseKeyValue(val string, passphrase []byte) (*Key, error) {
	if !keyutil.IsPEM([]byte(val)) {
		if val == "" {
			return nil, newError(KindKeyEmpty, "signing key cannot be empty")
		}
		return NewSymmetricKey([]byte(val)), nil
	}
	if strings.Contains(val, "PUBLIC KEY") || strings.Contains(val, "CERTIFICATE") {
		return ParsePublicKeyPEM([]byte(val))
	}
	return ParsePrivateKeyPEM([]byte(val), passphrase)
}
