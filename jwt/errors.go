package jwt

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies the class of a token error
type Kind int

// Error kinds
const (
	// KindUnknown is returned by KindOf for errors not produced by this package
	KindUnknown Kind = iota
	KindKeyEmpty
	KindKeyInvalid
	KindAlgoUnsupported
	KindAlgoMissing
	KindInvalidMaxAge
	KindInvalidLeeway
	KindJSONError
	KindTokenInvalid
	KindTokenExpired
	KindTokenNotYetValid
	KindSignatureFailed
	KindUnknownKeyID
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindKeyEmpty:         "key_empty",
	KindKeyInvalid:       "key_invalid",
	KindAlgoUnsupported:  "algo_unsupported",
	KindAlgoMissing:      "algo_missing",
	KindInvalidMaxAge:    "invalid_max_age",
	KindInvalidLeeway:    "invalid_leeway",
	KindJSONError:        "json_error",
	KindTokenInvalid:     "token_invalid",
	KindTokenExpired:     "token_expired",
	KindTokenNotYetValid: "token_not_yet_valid",
	KindSignatureFailed:  "signature_failed",
	KindUnknownKeyID:     "unknown_kid",
}

// String returns the snake case name of the kind, suitable for logs and metrics
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every failing operation of this package.
// Claim, Boundary and Now are populated for time claim failures.
type Error struct {
	Kind Kind
	// Claim is the name of the claim or header field that failed, if any
	Claim string
	// Boundary is the Unix time the claim was compared against
	Boundary int64
	// Now is the clock reading used for the comparison
	Now int64

	msg   string
	cause error
}

// Error implements error
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if e.Claim != "" && (e.Kind == KindTokenExpired || e.Kind == KindTokenNotYetValid) {
		fmt.Fprintf(&sb, ": %s boundary=%d now=%d", e.Claim, e.Boundary, e.Now)
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports errors of the same Kind as equal, so that
// errors.Is(err, ErrTokenExpired) holds for any expired token.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel errors, one per Kind, for use with errors.Is
var (
	ErrKeyEmpty         = &Error{Kind: KindKeyEmpty, msg: "signing key cannot be empty"}
	ErrKeyInvalid       = &Error{Kind: KindKeyInvalid, msg: "invalid key"}
	ErrAlgoUnsupported  = &Error{Kind: KindAlgoUnsupported, msg: "unsupported algorithm"}
	ErrAlgoMissing      = &Error{Kind: KindAlgoMissing, msg: "invalid token: missing header algorithm"}
	ErrInvalidMaxAge    = &Error{Kind: KindInvalidMaxAge, msg: "invalid maxAge: should be greater than 0"}
	ErrInvalidLeeway    = &Error{Kind: KindInvalidLeeway, msg: "invalid leeway: should be between 0-120"}
	ErrJSON             = &Error{Kind: KindJSONError, msg: "JSON failed"}
	ErrTokenInvalid     = &Error{Kind: KindTokenInvalid, msg: "invalid token"}
	ErrTokenExpired     = &Error{Kind: KindTokenExpired, msg: "invalid token: expired"}
	ErrTokenNotYetValid = &Error{Kind: KindTokenNotYetValid, msg: "invalid token: not valid yet"}
	ErrSignatureFailed  = &Error{Kind: KindSignatureFailed, msg: "invalid token: signature failed"}
	ErrUnknownKeyID     = &Error{Kind: KindUnknownKeyID, msg: "invalid token: unknown key ID"}
)

// KindOf returns the Kind of err, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

func claimError(kind Kind, msg, claim string, boundary, now int64) *Error {
	return &Error{Kind: kind, msg: msg, Claim: claim, Boundary: boundary, Now: now}
}
