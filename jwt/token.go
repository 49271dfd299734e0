package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Token is a parsed JWT
type Token struct {
	Raw       string         // The raw token
	Algorithm Algorithm      // The algorithm from the header
	Header    map[string]any // The first segment of the token
	Claims    Claims         // The second segment of the token
	Signature []byte         // The decoded third segment of the token
	Valid     bool           // True when the signature and time claims were verified
}

// KeyID returns the `kid` header value, if present
func (t *Token) KeyID() string {
	kid, _ := t.Header["kid"].(string)
	return kid
}

// DecodeSegment JWT specific base64url encoding with padding stripped.
// The segment must be canonical: line breaks and non-zero trailing bits
// are rejected, so every segment has exactly one encoding.
func DecodeSegment(seg string) ([]byte, error) {
	if strings.ContainsAny(seg, "\r\n") {
		return nil, errors.New("illegal line break in segment")
	}
	return base64.RawURLEncoding.Strict().DecodeString(seg)
}

// EncodeSegment returns JWT specific base64url encoding with padding stripped
func EncodeSegment(seg []byte) string {
	return base64.RawURLEncoding.EncodeToString(seg)
}

// encodeJSONSegment serializes v as JSON and returns it base64url encoded
func encodeJSONSegment(v any) (string, error) {
	js, err := marshalJSON(v)
	if err != nil {
		return "", err
	}
	return EncodeSegment(js), nil
}

// decodeJSONSegment decodes base64url segment and parses it as JSON
func decodeJSONSegment(seg string) (any, error) {
	raw, err := DecodeSegment(seg)
	if err != nil {
		return nil, wrapError(KindJSONError, err, "JSON failed: invalid base64url segment")
	}
	return unmarshalJSON(raw)
}

// marshalJSON returns JSON with sorted map keys and without HTML escaping,
// so `/`, `<`, `>` and `&` are emitted as is.
func marshalJSON(v any) ([]byte, error) {
	if err := checkUTF8(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, wrapError(KindJSONError, err, "JSON failed")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// unmarshalJSON parses a single JSON value; numbers are returned as
// int64 when integral, float64 otherwise.
func unmarshalJSON(raw []byte) (any, error) {
	if !utf8.Valid(raw) {
		return nil, newError(KindJSONError, "JSON failed: malformed UTF-8 characters")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, wrapError(KindJSONError, err, "JSON failed")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(KindJSONError, "JSON failed: unexpected data after top-level value")
	}
	return normalizeNumbers(v)
}

func normalizeNumbers(v any) (any, error) {
	switch tv := v.(type) {
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return i, nil
		}
		f, err := tv.Float64()
		if err != nil {
			return nil, wrapError(KindJSONError, err, "JSON failed: invalid number %s", tv.String())
		}
		return f, nil
	case map[string]any:
		for k, val := range tv {
			n, err := normalizeNumbers(val)
			if err != nil {
				return nil, err
			}
			tv[k] = n
		}
		return tv, nil
	case []any:
		for i, val := range tv {
			n, err := normalizeNumbers(val)
			if err != nil {
				return nil, err
			}
			tv[i] = n
		}
		return tv, nil
	default:
		return v, nil
	}
}

// maxCheckDepth stops the walk on cyclic values, json.Marshal reports those
const maxCheckDepth = 1000

// checkUTF8 rejects strings that are not valid UTF-8;
// encoding/json would otherwise replace the bytes with U+FFFD.
func checkUTF8(v reflect.Value, depth int) error {
	if depth > maxCheckDepth {
		return nil
	}
	depth++
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return newError(KindJSONError, "JSON failed: malformed UTF-8 characters, possibly incorrectly encoded")
		}
	case reflect.Interface, reflect.Pointer:
		if !v.IsNil() {
			return checkUTF8(v.Elem(), depth)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkUTF8(iter.Key(), depth); err != nil {
				return err
			}
			if err := checkUTF8(iter.Value(), depth); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		// []byte is encoded as base64
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkUTF8(v.Index(i), depth); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() {
				if err := checkUTF8(v.Field(i), depth); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
