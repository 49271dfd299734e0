package jwt

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
)

// Sign returns the signature of input, produced with key for alg.
// The key kind must match the algorithm: a secret for HS*, an RSA private key for RS*.
func Sign(alg Algorithm, key *Key, input []byte) ([]byte, error) {
	if !alg.Valid() {
		return nil, newError(KindAlgoUnsupported, "unsupported algo %s", alg)
	}
	if err := key.usableFor(alg, true); err != nil {
		return nil, err
	}

	switch alg.KeyKind() {
	case KeySymmetric:
		return hmacSum(alg.Hash(), key.secret, input), nil
	case KeyAsymmetric:
		// PKCS #1 v1.5, opts is not *rsa.PSSOptions
		sig, err := key.signer.Sign(rand.Reader, digest(alg.Hash(), input), alg)
		if err != nil {
			return nil, wrapError(KindKeyInvalid, err, "unable to sign")
		}
		return sig, nil
	}
	return nil, newError(KindAlgoUnsupported, "unsupported algo %s", alg)
}

// Verify returns nil if signature of input is valid for key and alg.
// HMAC signatures are compared in constant time.
func Verify(alg Algorithm, key *Key, input, signature []byte) error {
	if !alg.Valid() {
		return newError(KindAlgoUnsupported, "unsupported algo %s", alg)
	}
	if err := key.usableFor(alg, false); err != nil {
		return err
	}

	switch alg.KeyKind() {
	case KeySymmetric:
		expected := hmacSum(alg.Hash(), key.secret, input)
		if !hmac.Equal(expected, signature) {
			return ErrSignatureFailed
		}
		return nil
	case KeyAsymmetric:
		err := rsa.VerifyPKCS1v15(key.public, alg.Hash(), digest(alg.Hash(), input), signature)
		if err != nil {
			return wrapError(KindSignatureFailed, err, "invalid token: signature failed")
		}
		return nil
	}
	return newError(KindAlgoUnsupported, "unsupported algo %s", alg)
}

func hmacSum(hash crypto.Hash, secret, input []byte) []byte {
	h := hmac.New(hash.New, secret)
	h.Write(input)
	return h.Sum(nil)
}

func digest(hash crypto.Hash, input []byte) []byte {
	h := hash.New()
	h.Write(input)
	return h.Sum(nil)
}
