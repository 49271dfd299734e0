package jwt_test

import (
	"testing"
	"time"

	"github.com/effective-security/xjwt/jwt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteropGolangJWT(t *testing.T) {
	priv := testRSAKey(t, 0)
	secret := []byte("interop-secret")
	timeFunc := gojwt.WithTimeFunc(func() time.Time { return time.Unix(now, 0) })

	tcases := []struct {
		alg    jwt.Algorithm
		method gojwt.SigningMethod
		sign   any
		verify any
		key    *jwt.Key
	}{
		{jwt.HS256, gojwt.SigningMethodHS256, secret, secret, jwt.NewSymmetricKey(secret)},
		{jwt.HS384, gojwt.SigningMethodHS384, secret, secret, jwt.NewSymmetricKey(secret)},
		{jwt.HS512, gojwt.SigningMethodHS512, secret, secret, jwt.NewSymmetricKey(secret)},
		{jwt.RS256, gojwt.SigningMethodRS256, priv, &priv.PublicKey, jwt.NewPrivateKey(priv)},
		{jwt.RS384, gojwt.SigningMethodRS384, priv, &priv.PublicKey, jwt.NewPrivateKey(priv)},
		{jwt.RS512, gojwt.SigningMethodRS512, priv, &priv.PublicKey, jwt.NewPrivateKey(priv)},
	}

	for _, tc := range tcases {
		t.Run(tc.alg.String(), func(t *testing.T) {
			c := mustCodec(t, tc.alg, tc.key, clockAt(now))

			// decode a token issued by golang-jwt
			issued, err := gojwt.NewWithClaims(tc.method, gojwt.MapClaims{
				"sub": "interop",
				"exp": now + 60,
				"nbf": now - 60,
			}).SignedString(tc.sign)
			require.NoError(t, err)

			claims, err := c.Decode(issued)
			require.NoError(t, err)
			assert.Equal(t, "interop", claims["sub"])
			assert.Equal(t, now+60, claims["exp"])

			// golang-jwt verifies a token issued by the codec
			token := mustEncode(t, c, jwt.Claims{"sub": "codec"}, map[string]any{"kid": nil})
			parsed, err := gojwt.Parse(token, func(tk *gojwt.Token) (any, error) {
				return tc.verify, nil
			}, gojwt.WithValidMethods([]string{tc.alg.String()}), timeFunc)
			require.NoError(t, err)
			assert.True(t, parsed.Valid)

			sub, err := parsed.Claims.GetSubject()
			require.NoError(t, err)
			assert.Equal(t, "codec", sub)
			exp, err := parsed.Claims.GetExpirationTime()
			require.NoError(t, err)
			assert.Equal(t, now+3600, exp.Unix())

			// expired by the shared clock
			expired, err := gojwt.NewWithClaims(tc.method, gojwt.MapClaims{"exp": now}).SignedString(tc.sign)
			require.NoError(t, err)
			_, err = c.Decode(expired)
			requireKind(t, err, jwt.KindTokenExpired)
		})
	}
}
