package jwt

import (
	"strings"

	"github.com/effective-security/xlog"
)

// validation is the state of a single decode call.
// It is never shared, the Codec is only read.
type validation struct {
	codec *Codec
	raw   string
	now   int64

	parts []string
	token *Token
	key   *Key
}

func (c *Codec) newValidation(raw string) *validation {
	return &validation{
		codec: c,
		raw:   raw,
		now:   c.clock.Now().Unix(),
		token: &Token{Raw: raw},
	}
}

// run executes the stages in order, stopping at the first failure
func (v *validation) run() error {
	stages := []func() error{
		v.checkStructure,
		v.checkHeader,
		v.checkAlgorithm,
		v.resolveKey,
		v.verifySignature,
		v.decodePayload,
		v.checkTimes,
	}
	for _, stage := range stages {
		if err := stage(); err != nil {
			return err
		}
	}
	v.token.Valid = true
	return nil
}

func (v *validation) algTag() string {
	if v.token.Algorithm.Valid() {
		return v.token.Algorithm.String()
	}
	return "none"
}

func (v *validation) checkStructure() error {
	parts, err := splitToken(v.raw)
	if err != nil {
		return err
	}
	v.parts = parts
	return nil
}

func (v *validation) checkHeader() error {
	header, err := decodeHeader(v.parts[0])
	if err != nil {
		return err
	}
	v.token.Header = header
	return nil
}

func (v *validation) checkAlgorithm() error {
	val, ok := v.token.Header["alg"]
	if !ok || val == nil || val == "" {
		return newError(KindAlgoMissing, "invalid token: missing header algo")
	}
	name, ok := val.(string)
	if !ok {
		return newError(KindAlgoUnsupported, "invalid token: unsupported header algo")
	}
	alg := Algorithm(name)
	if !alg.Valid() || !v.codec.allowed[alg] {
		return newError(KindAlgoUnsupported, "invalid token: unsupported header algo %q", name)
	}
	v.token.Algorithm = alg
	return nil
}

func (v *validation) resolveKey() error {
	kid, hasKid, err := keyIDFromHeader(v.token.Header)
	if err != nil {
		return err
	}
	logger.KV(xlog.TRACE, "alg", v.token.Algorithm, "kid", kid)

	key, err := v.codec.keys.Resolve(kid, hasKid, v.codec.key)
	if err != nil {
		return err
	}
	if err = key.usableFor(v.token.Algorithm, false); err != nil {
		return err
	}
	v.key = key
	return nil
}

func (v *validation) verifySignature() error {
	sig, err := DecodeSegment(v.parts[2])
	if err != nil {
		return wrapError(KindSignatureFailed, err, "invalid token: signature failed")
	}
	input := v.parts[0] + "." + v.parts[1]
	if err = Verify(v.token.Algorithm, v.key, []byte(input), sig); err != nil {
		return err
	}
	v.token.Signature = sig
	return nil
}

func (v *validation) decodePayload() error {
	claims, err := decodeClaims(v.parts[1])
	if err != nil {
		return err
	}
	v.token.Claims = claims
	return nil
}

// checkTimes validates exp, iat and nbf claims; each check is skipped
// when its claim is absent, exp and iat are checked independently
func (v *validation) checkTimes() error {
	claims := v.token.Claims
	leeway := v.codec.leeway
	now := v.now

	exp, ok, err := claims.numericDate(ClaimExpiresAt, false)
	if err != nil {
		return wrapError(KindTokenInvalid, err, "invalid token")
	}
	if ok && now >= exp+leeway {
		return claimError(KindTokenExpired, "invalid token: expired", ClaimExpiresAt, exp+leeway, now)
	}

	iat, ok, err := claims.numericDate(ClaimIssuedAt, false)
	if err != nil {
		return wrapError(KindTokenInvalid, err, "invalid token")
	}
	if ok && now >= iat+v.codec.maxAge-leeway {
		return claimError(KindTokenExpired, "invalid token: expired", ClaimIssuedAt, iat+v.codec.maxAge-leeway, now)
	}

	nbf, ok, err := claims.numericDate(ClaimNotBefore, true)
	if err != nil {
		return wrapError(KindTokenInvalid, err, "invalid token")
	}
	if ok && now <= nbf-leeway {
		return claimError(KindTokenNotYetValid, "invalid token: not valid yet", ClaimNotBefore, nbf-leeway, now)
	}
	return nil
}

// splitToken returns exactly three non-empty segments
func splitToken(raw string) ([]string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, newError(KindTokenInvalid, "invalid token: incomplete segments")
	}
	for _, p := range parts {
		if p == "" {
			return nil, newError(KindTokenInvalid, "invalid token: empty segment")
		}
	}
	return parts, nil
}

// decodeHeader returns the header object; a JSON value
// that is not an object is returned as empty header
func decodeHeader(seg string) (map[string]any, error) {
	v, err := decodeJSONSegment(seg)
	if err != nil {
		return nil, err
	}
	header, ok := v.(map[string]any)
	if !ok {
		header = map[string]any{}
	}
	return header, nil
}

func decodeClaims(seg string) (Claims, error) {
	v, err := decodeJSONSegment(seg)
	if err != nil {
		return nil, err
	}
	claims, ok := v.(map[string]any)
	if !ok {
		return nil, newError(KindJSONError, "JSON failed: payload must be an object")
	}
	return Claims(claims), nil
}
