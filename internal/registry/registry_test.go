package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/report"
)

type echoInput struct {
	Greeting string `hcl:"greeting"`
	Loud     bool   `hcl:"loud,optional"`
	internal string
}

func echo(_ context.Context, inv *checker.Invocation, in *echoInput) (*report.Report, error) {
	rep := inv.NewReport()
	rep.Add(in.Greeting)
	return rep, nil
}

func newEcho() *RegisteredChecker {
	return &RegisteredChecker{
		NewInput: func() any { return new(echoInput) },
		Fn:       echo,
	}
}

func TestRegisterChecker(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterChecker("echo", newEcho())

	c, ok := r.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, "echoInput", c.InputType().Name())
	assert.Equal(t, []string{"echo"}, r.Names())

	_, ok = r.Lookup("resolution")
	assert.False(t, ok)

	assert.PanicsWithValue(t, "checker with name 'echo' already registered", func() {
		r.RegisterChecker("echo", newEcho())
	})
}

func TestRegisterChecker_BadSignature(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		c    *RegisteredChecker
	}{
		{name: "missing fn", c: &RegisteredChecker{NewInput: func() any { return new(echoInput) }}},
		{name: "input not a pointer", c: &RegisteredChecker{NewInput: func() any { return echoInput{} }, Fn: echo}},
		{name: "not a func", c: &RegisteredChecker{NewInput: func() any { return new(echoInput) }, Fn: 42}},
		{
			name: "input mismatch",
			c: &RegisteredChecker{
				NewInput: func() any { return new(struct{}) },
				Fn:       echo,
			},
		},
		{
			name: "wrong result",
			c: &RegisteredChecker{
				NewInput: func() any { return new(echoInput) },
				Fn:       func(context.Context, *checker.Invocation, *echoInput) error { return nil },
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, func() { New().RegisterChecker("bad", tc.c) })
		})
	}
}

func TestRegisteredChecker_Call(t *testing.T) {
	t.Parallel()
	c := newEcho()
	New().RegisterChecker("echo", c)

	inv := checker.NewInvocation(&config.Check{Delegate: "echo", Name: "greet"}, nil)
	rep, err := c.Call(context.Background(), inv, &echoInput{Greeting: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "greet", rep.Check)
	require.Len(t, rep.Tests, 1)
	assert.Equal(t, "hi", rep.Tests[0].Name)

	_, err = c.Call(context.Background(), inv, &struct{}{})
	require.ErrorContains(t, err, "input must be")

	failing := &RegisteredChecker{
		NewInput: func() any { return new(echoInput) },
		Fn: func(context.Context, *checker.Invocation, *echoInput) (*report.Report, error) {
			return nil, errors.New("compiler missing")
		},
	}
	New().RegisterChecker("failing", failing)
	_, err = failing.Call(context.Background(), inv, new(echoInput))
	require.EqualError(t, err, "compiler missing")

	silent := &RegisteredChecker{
		NewInput: func() any { return new(echoInput) },
		Fn: func(context.Context, *checker.Invocation, *echoInput) (*report.Report, error) {
			return nil, nil
		},
	}
	New().RegisterChecker("silent", silent)
	_, err = silent.Call(context.Background(), inv, new(echoInput))
	require.ErrorContains(t, err, "neither a report nor an error")
}

func TestValidateRegistry(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		inputs   map[string]*config.InputDefinition
		wantErrs []string
	}{
		{
			name: "parity",
			inputs: map[string]*config.InputDefinition{
				"greeting": {Name: "greeting"},
				"loud":     {Name: "loud", Optional: true},
			},
		},
		{
			name: "missing in manifest",
			inputs: map[string]*config.InputDefinition{
				"greeting": {Name: "greeting"},
			},
			wantErrs: []string{"Go struct has field 'Loud' for input 'loud' which is not declared in manifest"},
		},
		{
			name: "extra in manifest and optional mismatch",
			inputs: map[string]*config.InputDefinition{
				"greeting": {Name: "greeting", Optional: true},
				"loud":     {Name: "loud", Optional: true},
				"colour":   {Name: "colour"},
			},
			wantErrs: []string{
				"manifest declares input 'colour' which is not found in Go struct",
				"input 'greeting': manifest optional=true but Go struct field 'Greeting' optional=false",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := New()
			r.RegisterChecker("echo", newEcho())
			model := config.NewModel()
			model.Manifests["echo"] = &config.CheckerManifest{Name: "echo", Inputs: tc.inputs}
			model.Manifests["resolution"] = &config.CheckerManifest{Name: "resolution"}
			r.PopulateManifestsFromModel(model)

			err := r.ValidateRegistry(context.Background())
			if len(tc.wantErrs) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tc.wantErrs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
