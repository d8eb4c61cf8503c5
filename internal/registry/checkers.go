package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/report"
)

var (
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	invocationType = reflect.TypeOf((*checker.Invocation)(nil))
	reportType     = reflect.TypeOf((*report.Report)(nil))
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// RegisteredChecker holds the compiled Go parts of a delegate.
type RegisteredChecker struct {
	Description string
	// NewInput returns a pointer to a fresh input struct holding its defaults.
	NewInput func() any
	// Fn is func(context.Context, *checker.Invocation, *Input) (*report.Report, error).
	Fn any

	inputType reflect.Type
}

// InputType is the struct type NewInput points to.
func (c *RegisteredChecker) InputType() reflect.Type {
	return c.inputType
}

// RegisterChecker registers a delegate under name. It panics when the name is
// taken or when Fn does not have the delegate signature.
func (r *Registry) RegisterChecker(name string, c *RegisteredChecker) {
	if _, exists := r.Checkers[name]; exists {
		panic(fmt.Sprintf("checker with name '%s' already registered", name))
	}
	if err := c.validate(); err != nil {
		panic(fmt.Sprintf("checker '%s': %v", name, err))
	}
	slog.Debug("Registering checker.", "name", name)
	r.Checkers[name] = c
}

func (c *RegisteredChecker) validate() error {
	if c.NewInput == nil || c.Fn == nil {
		return fmt.Errorf("NewInput and Fn are required")
	}
	inputPtr := reflect.TypeOf(c.NewInput())
	if inputPtr == nil || inputPtr.Kind() != reflect.Ptr || inputPtr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("NewInput must return a pointer to a struct, got %v", inputPtr)
	}

	fn := reflect.TypeOf(c.Fn)
	if fn.Kind() != reflect.Func || fn.NumIn() != 3 || fn.NumOut() != 2 {
		return fmt.Errorf("Fn must be func(context.Context, *checker.Invocation, %v) (*report.Report, error), got %v", inputPtr, fn)
	}
	if fn.In(0) != contextType || fn.In(1) != invocationType || fn.In(2) != inputPtr ||
		fn.Out(0) != reportType || fn.Out(1) != errorType {
		return fmt.Errorf("Fn must be func(context.Context, *checker.Invocation, %v) (*report.Report, error), got %v", inputPtr, fn)
	}
	c.inputType = inputPtr.Elem()
	return nil
}

// Call runs the delegate with a decoded input.
func (c *RegisteredChecker) Call(ctx context.Context, inv *checker.Invocation, input any) (*report.Report, error) {
	if reflect.TypeOf(input) != reflect.PointerTo(c.inputType) {
		return nil, fmt.Errorf("input must be %v, got %T", reflect.PointerTo(c.inputType), input)
	}
	out := reflect.ValueOf(c.Fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(inv),
		reflect.ValueOf(input),
	})
	if errVal := out[1].Interface(); errVal != nil {
		return nil, errVal.(error)
	}
	rep, _ := out[0].Interface().(*report.Report)
	if rep == nil {
		return nil, fmt.Errorf("checker returned neither a report nor an error")
	}
	return rep, nil
}
