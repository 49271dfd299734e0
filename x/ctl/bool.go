package ctl

import (
	"reflect"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
)

// boolPtrMapper sets *bool flag, the flag without a value is true
type boolPtrMapper struct{}

func (boolPtrMapper) Decode(ctx *kong.DecodeContext, target reflect.Value) error {
	val := true
	if ctx.Scan.Peek().Type == kong.FlagValueToken {
		token := ctx.Scan.Pop()
		switch v := token.Value.(type) {
		case bool:
			val = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Errorf("expected bool value but got %q", v)
			}
			val = b
		default:
			return errors.Errorf("expected bool but got %q (%T)", token.Value, token.Value)
		}
	}
	target.Set(reflect.ValueOf(&val))
	return nil
}

func (boolPtrMapper) IsBool() bool { return true }

// BoolPtrMapper is an option to register a mapper to *bool type flag,
// so the command can tell an omitted flag from --flag=false
var BoolPtrMapper = kong.TypeMapper(reflect.TypeOf((*bool)(nil)), boolPtrMapper{})
