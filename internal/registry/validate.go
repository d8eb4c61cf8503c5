package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/gradegrid/internal/ctxlog"
)

// goInput is one tagged field of a delegate's input struct.
type goInput struct {
	field    string
	optional bool
}

// ValidateRegistry performs a strict parity check between manifests and Go
// code: both must declare the same inputs with the same optionality.
// Manifests without a Go delegate describe external checkers and are only
// logged.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(r.Manifests))
	for name := range r.Manifests {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := r.Manifests[name]
		c, ok := r.Checkers[name]
		if !ok {
			logger.Debug("Manifest has no Go delegate; treating it as external.", "checker", name, "file", def.File)
			continue
		}

		goInputs := inputsOf(c)
		for input, in := range goInputs {
			manifestInput, ok := def.Inputs[input]
			if !ok {
				errs = append(errs, fmt.Sprintf("checker '%s': Go struct has field '%s' for input '%s' which is not declared in manifest", name, in.field, input))
				continue
			}
			if manifestInput.Optional != in.optional {
				errs = append(errs, fmt.Sprintf("checker '%s', input '%s': manifest optional=%t but Go struct field '%s' optional=%t", name, input, manifestInput.Optional, in.field, in.optional))
			}
		}
		for input := range def.Inputs {
			if _, ok := goInputs[input]; !ok {
				errs = append(errs, fmt.Sprintf("checker '%s': manifest declares input '%s' which is not found in Go struct", name, input))
			}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func inputsOf(c *RegisteredChecker) map[string]goInput {
	inputs := make(map[string]goInput)
	inputType := c.InputType()
	for i := 0; i < inputType.NumField(); i++ {
		field := inputType.Field(i)
		if !field.IsExported() {
			continue
		}
		parts := strings.Split(field.Tag.Get("hcl"), ",")
		if parts[0] == "" || parts[0] == "-" {
			continue
		}
		in := goInput{field: field.Name}
		for _, p := range parts[1:] {
			if p == "optional" {
				in.optional = true
			}
		}
		inputs[parts[0]] = in
	}
	return inputs
}
