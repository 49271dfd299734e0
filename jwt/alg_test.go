package jwt_test

import (
	"crypto"
	"testing"

	"github.com/effective-security/xjwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithm(t *testing.T) {
	tcases := []struct {
		alg  jwt.Algorithm
		hash crypto.Hash
		kind jwt.KeyKind
	}{
		{jwt.HS256, crypto.SHA256, jwt.KeySymmetric},
		{jwt.HS384, crypto.SHA384, jwt.KeySymmetric},
		{jwt.HS512, crypto.SHA512, jwt.KeySymmetric},
		{jwt.RS256, crypto.SHA256, jwt.KeyAsymmetric},
		{jwt.RS384, crypto.SHA384, jwt.KeyAsymmetric},
		{jwt.RS512, crypto.SHA512, jwt.KeyAsymmetric},
	}
	for _, tc := range tcases {
		t.Run(tc.alg.String(), func(t *testing.T) {
			assert.True(t, tc.alg.Valid())
			assert.Equal(t, tc.hash, tc.alg.Hash())
			assert.Equal(t, tc.hash, tc.alg.HashFunc())
			assert.Equal(t, tc.kind, tc.alg.KeyKind())

			a, err := jwt.ParseAlgorithm(tc.alg.String())
			require.NoError(t, err)
			assert.Equal(t, tc.alg, a)
		})
	}
	assert.Len(t, jwt.Algorithms(), len(tcases))

	for _, name := range []string{"", "none", "hs256", "ES256", "PS256", "RS256 "} {
		_, err := jwt.ParseAlgorithm(name)
		requireKind(t, err, jwt.KindAlgoUnsupported)
		assert.False(t, jwt.Algorithm(name).Valid())
		assert.Equal(t, jwt.KeyNone, jwt.Algorithm(name).KeyKind())
	}

	assert.Equal(t, "symmetric", jwt.KeySymmetric.String())
	assert.Equal(t, "asymmetric", jwt.KeyAsymmetric.String())
	assert.Equal(t, "none", jwt.KeyNone.String())
}
