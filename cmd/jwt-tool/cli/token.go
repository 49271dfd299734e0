package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjwt/jwt"
)

// EncodeCmd specifies flags for Encode command
type EncodeCmd struct {
	Claims string `help:"Claims JSON object, or - to read from stdin" default:"{}"`
	Header string `help:"Extra header JSON object, kid selects the signing key"`
	Iat    *bool  `help:"Set iat claim to the current time"`
}

// Run the command
func (a *EncodeCmd) Run(ctx *Cli) error {
	codec, err := ctx.Codec()
	if err != nil {
		return err
	}

	raw, err := ctx.ReadInput(a.Claims)
	if err != nil {
		return errors.WithMessage(err, "unable to read claims")
	}
	var claims jwt.Claims
	if err = unmarshalObject(raw, &claims); err != nil {
		return errors.WithMessage(err, "invalid claims")
	}

	var header map[string]any
	if a.Header != "" {
		if err = unmarshalObject([]byte(a.Header), &header); err != nil {
			return errors.WithMessage(err, "invalid header")
		}
	}

	if a.Iat != nil && *a.Iat {
		if claims == nil {
			claims = jwt.Claims{}
		}
		claims[jwt.ClaimIssuedAt] = codec.Now().Unix()
	}

	token, err := codec.Encode(claims, header)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), token)
	return nil
}

// DecodeCmd specifies flags for Decode command
type DecodeCmd struct {
	Token string `kong:"arg" required:"" help:"Token, or - to read from stdin"`
}

// Run the command
func (a *DecodeCmd) Run(ctx *Cli) error {
	codec, err := ctx.Codec()
	if err != nil {
		return err
	}
	token, err := readToken(ctx, a.Token)
	if err != nil {
		return err
	}

	t, err := codec.Parse(token)
	if err != nil {
		return err
	}
	return ctx.WriteJSON(tokenInfo(t))
}

// InspectCmd specifies flags for Inspect command
type InspectCmd struct {
	Token string `kong:"arg" required:"" help:"Token, or - to read from stdin"`
}

// Run the command
func (a *InspectCmd) Run(ctx *Cli) error {
	token, err := readToken(ctx, a.Token)
	if err != nil {
		return err
	}

	t, err := jwt.ParseUnverified(token)
	if err != nil {
		return err
	}
	return ctx.WriteJSON(tokenInfo(t))
}

func readToken(ctx *Cli, value string) (string, error) {
	raw, err := ctx.ReadInput(value)
	if err != nil {
		return "", errors.WithMessage(err, "unable to read token")
	}
	return strings.TrimSpace(string(raw)), nil
}

func tokenInfo(t *jwt.Token) map[string]any {
	return map[string]any{
		"header":   t.Header,
		"claims":   map[string]any(t.Claims),
		"verified": t.Valid,
	}
}

// unmarshalObject keeps the numbers as they are in the input
func unmarshalObject(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
