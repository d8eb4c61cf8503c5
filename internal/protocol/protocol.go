// Package protocol reads interactive transcripts.
//
// A transcript lists the exchange between the grader and the program, one
// line at a time:
//
//	# comment
//	> What is your name?
//	< Ada
//	> Hello Ada
//
// Lines starting with '<' are sent to the program's stdin, lines starting
// with '>' are expected on its stdout. A single space after the marker is
// part of the syntax, not of the text. Blank lines and '#' comments are
// skipped.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Direction tells which side of the exchange a step belongs to.
type Direction int

const (
	// Input is sent to the program.
	Input Direction = iota
	// Output is expected from the program.
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Step is one transcript line.
type Step struct {
	Direction Direction
	Text      string
	// Line is the 1-based line number in the transcript.
	Line int
}

// Protocol is a parsed transcript.
type Protocol struct {
	Path  string
	Steps []Step
}

// Parse reads a transcript.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var dir Direction
		switch raw[0] {
		case '<':
			dir = Input
		case '>':
			dir = Output
		default:
			return nil, fmt.Errorf("line %d: expected '<', '>' or '#', got %q", lineNo, raw)
		}
		text := raw[1:]
		text = strings.TrimPrefix(text, " ")
		steps = append(steps, Step{Direction: dir, Text: text, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// Load parses the transcript stored at path.
func Load(path string) (*Protocol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open protocol: %w", err)
	}
	defer f.Close()

	steps, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("protocol %s: %w", path, err)
	}
	return &Protocol{Path: path, Steps: steps}, nil
}
