// Package shell implements the interactive read-dispatch loop: it prompts,
// tokenizes each line, runs one command against the session state and prints
// results or a single error line.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-ports/whois/internal/directory"
	"github.com/go-ports/whois/internal/models"
	"github.com/go-ports/whois/internal/query"
	"github.com/go-ports/whois/internal/session"
)

// Phase is the shell's position in its read-dispatch cycle.
type Phase int

const (
	AwaitingInput Phase = iota
	Dispatching
	Terminated
)

// Service is the lookup core the shell drives.
type Service interface {
	Lookup(ctx context.Context, conn directory.Searcher, q string) (models.LookupResult, error)
	Remote(subject *models.Subject) (string, error)
}

// Shell owns one session. It is not safe for concurrent use.
type Shell struct {
	svc   Service
	state *session.State
	in    LineReader
	out   io.Writer
	phase Phase

	errStyle   lipgloss.Style
	labelStyle lipgloss.Style
	noteStyle  lipgloss.Style
}

// New returns a Shell reading from in and writing to out.
func New(svc Service, state *session.State, in LineReader, out io.Writer) *Shell {
	r := lipgloss.NewRenderer(out)
	return &Shell{
		svc:        svc,
		state:      state,
		in:         in,
		out:        out,
		errStyle:   r.NewStyle().Foreground(lipgloss.Color("9")),
		labelStyle: r.NewStyle().Bold(true),
		noteStyle:  r.NewStyle().Faint(true),
	}
}

// Phase returns the current phase.
func (s *Shell) Phase() Phase { return s.phase }

// Terminated reports whether quit has run.
func (s *Shell) Terminated() bool { return s.phase == Terminated }

// Prompt returns "(<account>) > " when the current subject has an account
// name, otherwise "> ".
func (s *Shell) Prompt() string {
	if subj, ok := s.state.Subject(); ok && subj.AccountName != "" {
		return "(" + subj.AccountName + ") > "
	}
	return "> "
}

// Run reads and executes lines until quit, end of input or Ctrl-C. Each of
// those releases the directory connection and returns nil.
func (s *Shell) Run(ctx context.Context) error {
	for !s.Terminated() {
		if ctx.Err() != nil {
			s.quit()
			return nil
		}

		line, err := s.readLine(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrInputTooLong):
			s.printError(err)
			continue
		case errors.Is(err, io.EOF), errors.Is(err, ErrInterrupted), ctx.Err() != nil:
			fmt.Fprintln(s.out)
			s.quit()
			return nil
		default:
			s.quit()
			return fmt.Errorf("shell.Run: read input: %w", err)
		}

		s.Execute(ctx, line)
	}
	return nil
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line, returning ctx.Err() as soon as ctx is done. A
// cancelled read leaves its goroutine blocked in the reader; the process is
// about to exit when that happens.
func (s *Shell) readLine(ctx context.Context) (string, error) {
	prompt := s.Prompt()
	done := make(chan readResult, 1)
	go func() {
		line, err := s.in.ReadLine(prompt)
		done <- readResult{line: line, err: err}
	}()

	select {
	case r := <-done:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Execute tokenizes line and dispatches it. Blank lines are ignored. Errors are
// printed, never returned.
func (s *Shell) Execute(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 || s.Terminated() {
		return
	}

	s.phase = Dispatching
	defer func() {
		if s.phase == Dispatching {
			s.phase = AwaitingInput
		}
	}()

	args := fields[1:]
	var err error
	switch ParseCommand(fields[0]) {
	case CmdHelp:
		s.help(args)
	case CmdSearch:
		err = s.search(ctx, args)
	case CmdInfo:
		err = s.info()
	case CmdRemote:
		err = s.remote()
	case CmdQuit:
		s.quit()
	case CmdUnknown:
		s.help(nil)
	}
	if err != nil {
		s.printError(err)
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (s *Shell) help(args []string) {
	if len(args) > 0 {
		if spec, ok := Lookup(args[0]); ok {
			fmt.Fprintln(s.out, spec.Usage())
			return
		}
	}
	fmt.Fprintln(s.out, "Available commands:")
	for _, spec := range Commands {
		fmt.Fprintln(s.out, spec.Usage())
	}
}

func (s *Shell) search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if strings.TrimSpace(q) == "" {
		return query.ErrEmptyQuery
	}

	res, err := s.svc.Lookup(ctx, s.state.Conn(), q)
	if err != nil {
		return err
	}
	s.state.SetSubject(res.Subject)

	if res.Matches > 1 {
		fmt.Fprintln(s.out, s.noteStyle.Render(fmt.Sprintf("%d matches, showing the first", res.Matches)))
	}
	s.render(res.Subject)
	return nil
}

func (s *Shell) info() error {
	subj, err := s.state.RequireSubject()
	if err != nil {
		return err
	}
	s.render(subj)
	return nil
}

func (s *Shell) remote() error {
	var subject *models.Subject
	if subj, ok := s.state.Subject(); ok {
		subject = &subj
	}
	host, err := s.svc.Remote(subject)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Starting remote session to %s\n", host)
	return nil
}

func (s *Shell) quit() {
	if err := s.state.Release(); err != nil {
		slog.Debug("shell: release connection", "err", err)
	}
	s.phase = Terminated
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

const emptyValue = "(none)"

func (s *Shell) render(subj models.Subject) {
	fmt.Fprintln(s.out)
	for _, f := range subj.Fields() {
		v := f.Value
		if v == "" {
			v = emptyValue
		}
		fmt.Fprintf(s.out, "%s %s\n", s.labelStyle.Render(f.Label+":"), v)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) printError(err error) {
	fmt.Fprintln(s.out, s.errStyle.Render("Error: "+err.Error()))
}
