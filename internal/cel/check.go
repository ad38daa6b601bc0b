// Package cel compiles the value checks declared on properties.
//
// A check is a CEL expression over three string variables: value (the
// candidate value), property (the property name) and kind (the declared
// property type). It must evaluate to a bool, where false rejects the value,
// or to a string, where a non-empty result rejects the value with that text
// as the message.
package cel

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// ErrRejected wraps every value a check turns down.
var ErrRejected = errors.New("value rejected")

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func checkEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("value", cel.StringType),
			cel.Variable("property", cel.StringType),
			cel.Variable("kind", cel.StringType),
			celext.Strings(),
			celext.Encoders(),
			celext.Lists(),
			celext.Math(),
		)
	})
	return env, envErr
}

// Check is a compiled value check.
type Check struct {
	expr     string
	property string
	typ      string
	prg      cel.Program
}

// Compile parses and type checks expr for the given property.
func Compile(expr, property, typ string) (*Check, error) {
	e, err := checkEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(types.BoolType) && !out.IsExactType(types.StringType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("check must evaluate to bool or string, got %s", out)
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Check{expr: expr, property: property, typ: typ, prg: prg}, nil
}

// Expr returns the source expression.
func (c *Check) Expr() string { return c.expr }

// Validate runs the check against value.
func (c *Check) Validate(value string) error {
	res, _, err := c.prg.Eval(map[string]any{
		"value":    value,
		"property": c.property,
		"kind":     c.typ,
	})
	if err != nil {
		return fmt.Errorf("eval error: %w", err)
	}
	return verdict(res, value)
}

func verdict(res ref.Val, value string) error {
	switch v := res.(type) {
	case types.Bool:
		if v {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrRejected, value)
	case types.String:
		msg := strings.TrimSpace(string(v))
		if msg == "" {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	default:
		return fmt.Errorf("check returned %s, want bool or string", res.Type().TypeName())
	}
}

// Func compiles expr and returns its Validate method, ready to be set as a
// property's Validate hook.
func Func(expr, property, typ string) (func(string) error, error) {
	c, err := Compile(expr, property, typ)
	if err != nil {
		return nil, err
	}
	return c.Validate, nil
}
