package jwt

import (
	"time"

	"github.com/effective-security/xjwt/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjwt", "jwt")

const (
	// DefaultMaxAge is the default token TTL in seconds
	DefaultMaxAge = 3600
	// MaxLeeway is the maximum allowed clock skew in seconds
	MaxLeeway = 120
)

// Encoder specifies JWT encoder interface
type Encoder interface {
	// Encode returns signed token for the claims
	Encode(claims Claims, header map[string]any) (string, error)
}

// Decoder specifies JWT decoder interface
type Decoder interface {
	// Decode returns the claims of a valid token
	Decode(token string) (Claims, error)
}

// Provider specifies JWT provider interface
type Provider interface {
	Encoder
	Decoder
}

// Option configures the Codec
type Option func(*options)

type options struct {
	maxAge  int64
	leeway  int64
	clock   Clock
	keys    *KeyRegistry
	allowed []Algorithm
}

// WithMaxAge sets the token TTL in seconds, used to inject `exp` claim
// and to expire tokens by `iat` claim. Defaults to 3600.
func WithMaxAge(seconds int64) Option {
	return func(o *options) {
		o.maxAge = seconds
	}
}

// WithLeeway sets the grace period in seconds for clock skew, 0-120
func WithLeeway(seconds int64) Option {
	return func(o *options) {
		o.leeway = seconds
	}
}

// WithClock sets the time source, defaults to the wall clock
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithKey registers key for kid
func WithKey(kid string, key *Key) Option {
	return func(o *options) {
		if o.keys == nil {
			o.keys = NewKeyRegistry()
		}
		o.keys.Register(kid, key)
	}
}

// WithKeyRegistry registers all the keys from r
func WithKeyRegistry(r *KeyRegistry) Option {
	return func(o *options) {
		if o.keys == nil {
			o.keys = NewKeyRegistry()
		}
		if r != nil {
			for kid, key := range r.keys {
				o.keys.Register(kid, key)
			}
		}
	}
}

// WithAllowedAlgorithms restricts the algorithms accepted by Decode,
// by default all supported algorithms are accepted
func WithAllowedAlgorithms(algs ...Algorithm) Option {
	return func(o *options) {
		o.allowed = append(o.allowed, algs...)
	}
}

// Codec encodes and decodes tokens.
// Codec is immutable after New and safe for concurrent use.
type Codec struct {
	alg     Algorithm
	key     *Key
	maxAge  int64
	leeway  int64
	clock   Clock
	keys    *KeyRegistry
	allowed map[Algorithm]bool
}

// New returns Codec that signs with alg and key.
// Configuration errors are returned here, not on the first use.
func New(alg Algorithm, key *Key, opts ...Option) (*Codec, error) {
	o := &options{
		maxAge: DefaultMaxAge,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(o)
	}

	if key.IsEmpty() {
		return nil, newError(KindKeyEmpty, "signing key cannot be empty")
	}
	if !alg.Valid() {
		return nil, newError(KindAlgoUnsupported, "unsupported algo %s", alg)
	}
	if o.maxAge < 1 {
		return nil, newError(KindInvalidMaxAge, "invalid maxAge: should be greater than 0")
	}
	if o.maxAge > MaxNumericDate {
		return nil, newError(KindInvalidMaxAge, "invalid maxAge: should not exceed %d", MaxNumericDate)
	}
	if o.leeway < 0 || o.leeway > MaxLeeway {
		return nil, newError(KindInvalidLeeway, "invalid leeway: should be between 0-%d", MaxLeeway)
	}
	if o.clock == nil {
		o.clock = SystemClock
	}

	c := &Codec{
		alg:     alg,
		key:     key,
		maxAge:  o.maxAge,
		leeway:  o.leeway,
		clock:   o.clock,
		keys:    o.keys.Clone(),
		allowed: map[Algorithm]bool{},
	}

	if len(o.allowed) == 0 {
		o.allowed = Algorithms()
	}
	for _, a := range o.allowed {
		if !a.Valid() {
			return nil, newError(KindAlgoUnsupported, "unsupported algo %s", a)
		}
		c.allowed[a] = true
	}
	if !c.allowed[alg] {
		return nil, newError(KindAlgoUnsupported, "algo %s is not in the allowed list", alg)
	}

	if err := key.Err(); err != nil {
		logger.KV(xlog.WARNING, "reason", "invalid_key", "alg", alg, "err", err.Error())
	}
	return c, nil
}

// MustNew returns new Codec, or panics on configuration error
func MustNew(alg Algorithm, key *Key, opts ...Option) *Codec {
	c, err := New(alg, key, opts...)
	if err != nil {
		logger.Panicf("unable to create codec: %+v", err)
	}
	return c
}

// Algorithm returns the signing algorithm
func (c *Codec) Algorithm() Algorithm {
	return c.alg
}

// MaxAge returns the token TTL
func (c *Codec) MaxAge() time.Duration {
	return time.Duration(c.maxAge) * time.Second
}

// Now returns the current time of the Codec clock
func (c *Codec) Now() time.Time {
	return c.clock.Now()
}

// Leeway returns the clock skew grace period
func (c *Codec) Leeway() time.Duration {
	return time.Duration(c.leeway) * time.Second
}

// Encode returns signed token for the claims.
// The header always has `typ` and `alg` set by the Codec, extra header fields
// are merged in; a `kid` header selects the signing key when it is registered,
// otherwise the token is signed with the default key.
// If neither `exp` nor `iat` claim is present, `exp` is set to now + maxAge.
func (c *Codec) Encode(claims Claims, header map[string]any) (string, error) {
	defer metricskey.PerfJWTOperation.MeasureSince(time.Now(), c.alg.String(), "encode")

	h := make(map[string]any, len(header)+2)
	for k, v := range header {
		h[k] = v
	}
	h["typ"] = "JWT"
	h["alg"] = c.alg.String()

	kid, hasKid, err := keyIDFromHeader(h)
	if err != nil {
		return "", err
	}
	key := c.key
	if hasKid {
		if k, ok := c.keys.Get(kid); ok {
			key = k
		}
	}

	payload := claims.Clone()
	if !payload.Has(ClaimExpiresAt) && !payload.Has(ClaimIssuedAt) {
		payload[ClaimExpiresAt] = c.clock.Now().Unix() + c.maxAge
	}

	hseg, err := encodeJSONSegment(h)
	if err != nil {
		return "", err
	}
	pseg, err := encodeJSONSegment(payload)
	if err != nil {
		return "", err
	}

	input := hseg + "." + pseg
	sig, err := Sign(c.alg, key, []byte(input))
	if err != nil {
		return "", err
	}
	return input + "." + EncodeSegment(sig), nil
}

// Decode returns the claims of a token,
// once its structure, algorithm, signature and time claims are validated
func (c *Codec) Decode(token string) (Claims, error) {
	t, err := c.Parse(token)
	if err != nil {
		return nil, err
	}
	return t.Claims, nil
}

// Parse returns the validated token with its header and claims
func (c *Codec) Parse(token string) (*Token, error) {
	start := time.Now()
	v := c.newValidation(token)
	err := v.run()
	metricskey.PerfJWTOperation.MeasureSince(start, v.algTag(), "decode")
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", KindOf(err).String(), "alg", v.algTag(), "err", err.Error())
		return nil, err
	}
	return v.token, nil
}

// ParseUnverified returns the token header and claims without verifying
// its signature or time claims. The returned values must not be trusted:
// use it only to inspect a token, or when it was verified elsewhere.
func ParseUnverified(token string) (*Token, error) {
	parts, err := splitToken(token)
	if err != nil {
		return nil, err
	}
	header, err := decodeHeader(parts[0])
	if err != nil {
		return nil, err
	}
	claims, err := decodeClaims(parts[1])
	if err != nil {
		return nil, err
	}
	sig, err := DecodeSegment(parts[2])
	if err != nil {
		return nil, wrapError(KindTokenInvalid, err, "invalid token: signature segment")
	}

	alg, _ := header["alg"].(string)
	return &Token{
		Raw:       token,
		Algorithm: Algorithm(alg),
		Header:    header,
		Claims:    claims,
		Signature: sig,
	}, nil
}

// keyIDFromHeader returns the `kid` header; null is the same as absent
func keyIDFromHeader(header map[string]any) (string, bool, error) {
	v, ok := header["kid"]
	if !ok || v == nil {
		return "", false, nil
	}
	kid, ok := v.(string)
	if !ok {
		e := newError(KindUnknownKeyID, "invalid token: key ID must be a string")
		e.Claim = "kid"
		return "", false, e
	}
	return kid, true, nil
}
