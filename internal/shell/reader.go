package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrInputTooLong is returned when a line exceeds the reader's limit. The
// whole line has been consumed when it is returned.
var ErrInputTooLong = errors.New("input is too long")

// ErrInterrupted is returned when the user presses Ctrl-C at the prompt.
var ErrInterrupted = errors.New("interrupted")

// LineReader prints prompt and reads one line without its terminator.
// At end of input it returns io.EOF.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a liner-backed reader when in and out are both the
// process terminal, and a bounded bufio reader otherwise. historyPath may be
// empty to disable persisted history.
func NewLineReader(in io.Reader, out io.Writer, maxInput int, historyPath string) LineReader {
	if isTerminal(in) && isTerminal(out) {
		return NewLinerReader(maxInput, historyPath)
	}
	return NewBufioReader(in, out, maxInput)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ---------------------------------------------------------------------------
// Bounded bufio reader
// ---------------------------------------------------------------------------

// BufioReader reads lines from a plain stream, rejecting lines over Max bytes.
type BufioReader struct {
	br  *bufio.Reader
	out io.Writer
	max int
}

// NewBufioReader returns a BufioReader. maxInput <= 0 means unbounded.
func NewBufioReader(in io.Reader, out io.Writer, maxInput int) *BufioReader {
	return &BufioReader{br: bufio.NewReader(in), out: out, max: maxInput}
}

// ReadLine implements LineReader.
func (r *BufioReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}

	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := r.br.ReadLine()
		if err != nil {
			return "", err
		}
		if !tooLong {
			if r.max > 0 && len(buf)+len(chunk) > r.max {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", fmt.Errorf("%w (limit %d bytes)", ErrInputTooLong, r.max)
	}
	return string(buf), nil
}

// Close implements LineReader.
func (r *BufioReader) Close() error { return nil }

// ---------------------------------------------------------------------------
// Terminal reader
// ---------------------------------------------------------------------------

// LinerReader provides line editing and history on an interactive terminal.
type LinerReader struct {
	line        *liner.State
	max         int
	historyPath string
}

// NewLinerReader puts the terminal in raw mode and loads history from
// historyPath when it exists.
func NewLinerReader(maxInput int, historyPath string) *LinerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LinerReader{line: line, max: maxInput, historyPath: historyPath}
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

// ReadLine implements LineReader.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}
	if r.max > 0 && len(input) > r.max {
		return "", fmt.Errorf("%w (limit %d bytes)", ErrInputTooLong, r.max)
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (r *LinerReader) Close() error {
	if r.historyPath != "" {
		if f, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = r.line.WriteHistory(f)
			_ = f.Close()
		}
	}
	return r.line.Close()
}
