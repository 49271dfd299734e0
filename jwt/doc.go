// Package jwt provides encoding and decoding of JSON Web Tokens (RFC 7519)
// in JWS compact serialization.
//
// Supported algorithms are HS256, HS384 and HS512 with a shared secret,
// and RS256, RS384 and RS512 with an RSA key. The RSA private key can be
// any crypto.Signer, including keys backed by HSM or KMS.
//
// A Codec is created once with New, NewFromConfig or Load, and is safe for
// concurrent use. Decode verifies, in order, the token structure, the header
// algorithm, the key selected by the `kid` header, the signature, and the
// `exp`, `iat` and `nbf` claims with the configured leeway.
//
// Every error returned by this package is *Error with a Kind,
// use KindOf or errors.Is with the Err* values to classify failures.
package jwt
