package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Registered time claims
const (
	ClaimExpiresAt = "exp"
	ClaimIssuedAt  = "iat"
	ClaimNotBefore = "nbf"
)

// MaxNumericDate is the largest accepted time claim, 9999-12-31T23:59:59Z.
// Time claims outside of [-MaxNumericDate, MaxNumericDate] are invalid.
const MaxNumericDate int64 = 253402300799

// Claims provides generic claims on map
type Claims map[string]any

// Add new claims to the map
func (c Claims) Add(val ...any) error {
	for _, i := range val {
		if i == nil {
			continue
		}
		switch m := i.(type) {
		case map[string]any:
			c.merge(m)
		case Claims:
			c.merge(m)
		default:
			if reflect.Indirect(reflect.ValueOf(i)).Kind() == reflect.Struct {
				m, err := normalize(i)
				if err != nil {
					return errors.WithStack(err)
				}
				c.merge(m)
			} else {
				return errors.Errorf("unsupported claims interface")
			}
		}
	}
	return nil
}

// To converts the claims to the value pointed to by v.
func (c Claims) To(val any) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.WithStack(err)
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	if err := d.Decode(val); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Marshal returns JSON encoded string
func (c Claims) Marshal() string {
	raw, _ := marshalJSON(c)
	return string(raw)
}

// Clone returns a shallow copy of the claims
func (c Claims) Clone() Claims {
	cp := make(Claims, len(c)+1)
	cp.merge(c)
	return cp
}

// Has returns true if the claim is present and not null
func (c Claims) Has(k string) bool {
	v, ok := c[k]
	return ok && v != nil
}

func (c Claims) merge(m map[string]any) {
	for k, v := range m {
		c[k] = v
	}
}

func normalize(i any) (map[string]any, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	v, err := unmarshalJSON(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("claims must be JSON object")
	}
	return m, nil
}

// String will return the named claim as a string,
// if the underlying type is not a string,
// it will try and co-oerce it to a string.
func (c Claims) String(k string) string {
	v := c[k]
	if v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Bool will return the named claim as Bool
func (c Claims) Bool(k string) bool {
	tv, _ := c[k].(bool)
	return tv
}

// Int will return the named claim as an int
func (c Claims) Int(k string) int {
	v := c[k]
	if v == nil {
		return 0
	}
	switch tv := v.(type) {
	case int:
		return tv
	case int32:
		return int(tv)
	case int64:
		return int(tv)
	case uint:
		return int(tv)
	case uint32:
		return int(tv)
	case uint64:
		return int(tv)
	case float64:
		return int(tv)
	case json.Number:
		i, err := tv.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(tv)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Time will return the named claim as Time
func (c Claims) Time(k string) *time.Time {
	v := c[k]
	if v == nil {
		return nil
	}
	switch tv := v.(type) {
	case time.Time:
		return &tv
	case *time.Time:
		return tv
	case string:
		if len(tv) > 20 {
			t, err := time.Parse("2006-01-02T15:04:05.000-0700", tv)
			if err != nil {
				return nil
			}
			return &t
		}
		unix, err := strconv.ParseInt(tv, 10, 64)
		if err != nil {
			return nil
		}
		t := time.Unix(unix, 0)
		return &t
	default:
		unix, ok, err := c.numericDate(k, false)
		if !ok || err != nil {
			return nil
		}
		t := time.Unix(unix, 0)
		return &t
	}
}

// numericDate returns the named claim as Unix seconds.
// Fractional values are rounded down, or up when roundUp is set.
// The claim is not present if it is missing or null.
func (c Claims) numericDate(k string, roundUp bool) (int64, bool, error) {
	v := c[k]
	if v == nil {
		return 0, false, nil
	}

	var f float64
	switch tv := v.(type) {
	case int:
		f = float64(tv)
	case int32:
		f = float64(tv)
	case int64:
		return checkNumericDate(k, tv)
	case uint:
		f = float64(tv)
	case uint32:
		f = float64(tv)
	case uint64:
		if tv > uint64(MaxNumericDate) {
			return 0, true, errors.Errorf("claim %s is out of range", k)
		}
		return checkNumericDate(k, int64(tv))
	case float32:
		f = float64(tv)
	case float64:
		f = tv
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return checkNumericDate(k, i)
		}
		var err error
		if f, err = tv.Float64(); err != nil {
			return 0, true, errors.Errorf("claim %s must be a number", k)
		}
	default:
		return 0, true, errors.Errorf("claim %s must be a number, got %T", k, v)
	}

	if math.IsNaN(f) || f > float64(MaxNumericDate) || f < -float64(MaxNumericDate) {
		return 0, true, errors.Errorf("claim %s is out of range", k)
	}
	if roundUp {
		return int64(math.Ceil(f)), true, nil
	}
	return int64(math.Floor(f)), true, nil
}

func checkNumericDate(k string, n int64) (int64, bool, error) {
	if n > MaxNumericDate || n < -MaxNumericDate {
		return 0, true, errors.Errorf("claim %s is out of range", k)
	}
	return n, true, nil
}
