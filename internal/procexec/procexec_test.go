//go:build unix

package procexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CapturesStreams(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Argv:  []string{"sh", "-c", `read name; echo "Hello $name"; echo oops >&2; exit 3`},
		Stdin: "World\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello World\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestRun_Timeout(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Argv:    []string{"sh", "-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.True(t, res.TimedOut)
	assert.Less(t, res.Duration, 4*time.Second)
}

func TestRun_MissingProgram(t *testing.T) {
	_, err := Run(context.Background(), Command{Argv: []string{"/definitely/not/a/program"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")

	_, err = Run(context.Background(), Command{})
	require.Error(t, err)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, Command{Argv: []string{"sh", "-c", "sleep 5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Dialogue(t *testing.T) {
	s, err := Start(context.Background(), Command{
		Argv:    []string{"sh", "-c", `echo "name?"; read name; echo "Hello $name"; echo bye`},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	line, ok, err := s.ReadLine(2 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "name?", line)

	require.NoError(t, s.Send("Ada"))

	line, ok, err = s.ReadLine(2 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello Ada", line)

	res, rest, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, []string{"bye"}, rest)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestSession_LineTimeout(t *testing.T) {
	s, err := Start(context.Background(), Command{
		Argv:    []string{"sh", "-c", "read x; echo $x"},
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	_, _, err = s.ReadLine(50 * time.Millisecond)
	require.ErrorIs(t, err, ErrLineTimeout)

	_, rest, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, []string{""}, rest)
}

func TestSession_PromptWithoutNewline(t *testing.T) {
	s, err := Start(context.Background(), Command{
		Argv:    []string{"sh", "-c", `printf 'Name: '; read n; echo "Hi $n"`},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	line, ok, err := s.ReadLine(2 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Name: ", line)

	require.NoError(t, s.Send("Ada"))

	line, ok, err = s.ReadLine(2 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hi Ada", line)

	_, rest, err := s.Close()
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestSession_LineSplitAcrossWrites(t *testing.T) {
	s, err := Start(context.Background(), Command{
		Argv:    []string{"sh", "-c", `printf 'Hel'; sleep 0.02; printf 'lo\r\n'; printf 'tail'`},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	line, ok, err := s.ReadLine(2 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello", line)

	_, rest, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, []string{"tail"}, rest)
}
