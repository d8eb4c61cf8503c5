package hcl

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeArguments evaluates the check's arguments and populates the fields of
// input tagged `hcl:"name"` or `hcl:"name,optional"`. Fields left out of a
// check keep whatever value input already holds.
func (c *Converter) DecodeArguments(
	ctx context.Context,
	input any,
	args map[string]hcl.Expression,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting argument decoding.", "count", len(args))

	structVal := reflect.ValueOf(input)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("input must be a non-nil pointer to a struct, got %T", input)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	used := make(map[string]struct{}, len(args))
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		name, optional, ok := parseFieldTag(field)
		if !ok {
			continue
		}

		expr, provided := args[name]
		if !provided {
			if !optional {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}
		used[name] = struct{}{}

		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		if err := c.decode(ctx, val, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", name, err)
		}
	}

	var unknown []string
	for name := range args {
		if _, ok := used[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unsupported argument(s): %s", strings.Join(unknown, ", "))
	}

	logger.Debug("Finished argument decoding successfully.")
	return nil
}

// parseFieldTag reads a field's `hcl` tag. ok is false for untagged fields
// and fields tagged "-".
func parseFieldTag(field reflect.StructField) (name string, optional, ok bool) {
	tag := field.Tag.Get("hcl")
	if tag == "" || tag == "-" {
		return "", false, false
	}
	parts := strings.Split(tag, ",")
	for _, p := range parts[1:] {
		if p == "optional" {
			optional = true
		}
	}
	return parts[0], optional, true
}

// decode handles the conversion and decoding of a cty.Value into a Go pointer.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}
	if val.IsNull() {
		return nil
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(convertedVal.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", convertedVal.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(convertedVal, goVal)
}
