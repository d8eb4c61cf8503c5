package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrLineTimeout is returned by ReadLine when the program produced no line in
// time.
var ErrLineTimeout = errors.New("timed out waiting for output")

// PromptIdle is how long output without a trailing newline must stay
// unchanged before ReadLine hands it out as a line. Programs print prompts
// such as "Name: " and then block on input.
const PromptIdle = 100 * time.Millisecond

// Session is a running program driven line by line, as an interactive
// protocol needs.
type Session struct {
	cmd     *exec.Cmd
	argv0   string
	stdin   io.WriteCloser
	out     *output
	stderr  *lockedBuffer
	done    chan error
	start   time.Time
	timeout time.Duration

	closeOnce sync.Once
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// output splits stdout into lines and keeps the unterminated tail around so
// that prompts can be read.
type output struct {
	mu        sync.Mutex
	lines     []string
	partial   []byte
	lastWrite time.Time
	closed    bool

	// changed holds a pending wake-up for a reader; eof is closed with the
	// stream.
	changed chan struct{}
	eof     chan struct{}
}

func newOutput() *output {
	return &output{changed: make(chan struct{}, 1), eof: make(chan struct{})}
}

func (o *output) write(p []byte) {
	o.mu.Lock()
	o.partial = append(o.partial, p...)
	for {
		i := bytes.IndexByte(o.partial, '\n')
		if i < 0 {
			break
		}
		o.lines = append(o.lines, strings.TrimSuffix(string(o.partial[:i]), "\r"))
		o.partial = o.partial[i+1:]
	}
	if len(o.partial) == 0 {
		o.partial = nil
	}
	o.lastWrite = time.Now()
	o.mu.Unlock()
	o.signal()
}

func (o *output) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	close(o.eof)
	o.signal()
}

func (o *output) signal() {
	select {
	case o.changed <- struct{}{}:
	default:
	}
}

// next returns the next line if one is ready. Otherwise it returns how long
// the caller may wait before asking again.
func (o *output) next(deadline time.Time) (line string, ok, ready bool, wait time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.lines) > 0 {
		line = o.lines[0]
		o.lines = o.lines[1:]
		return line, true, true, 0
	}
	now := time.Now()
	if len(o.partial) > 0 {
		idle := o.lastWrite.Add(PromptIdle)
		if o.closed || !now.Before(idle) || !now.Before(deadline) {
			return o.takePartial(), true, true, 0
		}
		wait = idle.Sub(now)
		if d := deadline.Sub(now); d < wait {
			wait = d
		}
		return "", false, false, wait
	}
	if o.closed {
		return "", false, true, 0
	}
	return "", false, false, deadline.Sub(now)
}

// rest returns every line nobody read, including an unterminated tail.
func (o *output) rest() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	rest := o.lines
	o.lines = nil
	if len(o.partial) > 0 {
		rest = append(rest, o.takePartial())
	}
	return rest
}

func (o *output) takePartial() string {
	line := strings.TrimSuffix(string(o.partial), "\r")
	o.partial = nil
	return line
}

// Start launches the command with piped stdin and stdout. The command's
// Stdin field is ignored; input is sent with Send.
func Start(ctx context.Context, c Command) (*Session, error) {
	cmd, err := c.build()
	if err != nil {
		return nil, err
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin of %q: %w", c.Argv[0], err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout of %q: %w", c.Argv[0], err)
	}
	s := &Session{
		cmd:     cmd,
		argv0:   c.Argv[0],
		stdin:   stdin,
		out:     newOutput(),
		stderr:  &lockedBuffer{},
		done:    make(chan error, 1),
		timeout: c.timeout(),
	}
	cmd.Stderr = s.stderr

	s.start = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", c.Argv[0], err)
	}

	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				s.out.write(buf[:n])
			}
			if err != nil {
				s.out.close()
				return
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			killProcessGroup(cmd)
		case <-s.done:
		}
	}()

	return s, nil
}

// Send writes one line to the program's stdin.
func (s *Session) Send(line string) error {
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("failed to write to %q: %w", s.argv0, err)
	}
	return nil
}

// ReadLine waits for the next stdout line. Output that stops without a
// newline for PromptIdle, or is still pending when timeout expires, counts as
// a line. ok is false once the program has closed its output.
func (s *Session) ReadLine(timeout time.Duration) (line string, ok bool, err error) {
	deadline := time.Now().Add(timeout)
	for {
		line, ok, ready, wait := s.out.next(deadline)
		if ready {
			return line, ok, nil
		}
		if wait <= 0 {
			return "", false, ErrLineTimeout
		}
		timer := time.NewTimer(wait)
		select {
		case <-s.out.changed:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// Close ends the session: stdin is closed, the program gets the rest of the
// session timeout to exit, and every line it printed that was never read is
// returned in rest.
func (s *Session) Close() (res *Result, rest []string, err error) {
	_ = s.stdin.Close()

	deadline := time.NewTimer(s.timeout - time.Since(s.start))
	defer deadline.Stop()

	timedOut := false
	select {
	case <-s.out.eof:
	case <-deadline.C:
		timedOut = true
		killProcessGroup(s.cmd)
		<-s.out.eof
	}
	rest = s.out.rest()

	waitErr := s.cmd.Wait()
	s.closeOnce.Do(func() { close(s.done) })

	res = &Result{
		Stderr:   s.stderr.String(),
		ExitCode: s.cmd.ProcessState.ExitCode(),
		TimedOut: timedOut,
		Duration: time.Since(s.start),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !timedOut {
			return nil, rest, fmt.Errorf("failed waiting for %q: %w", s.argv0, waitErr)
		}
	}
	return res, rest, nil
}
