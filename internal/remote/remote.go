// Package remote derives a remote-control target from a subject's description
// and launches the configured viewer against it.
package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/go-ports/whois/internal/models"
	"github.com/go-ports/whois/internal/session"
)

var (
	// ErrMissingDescription is returned when the subject has no description.
	ErrMissingDescription = errors.New("no description found")
	// ErrMarkerNotFound is returned when the description does not carry a
	// "Last Logon: <host> at <time>" annotation.
	ErrMarkerNotFound = errors.New("description has no last logon host")
	// ErrLaunch is returned when the viewer process cannot be started.
	ErrLaunch = errors.New("could not launch remote viewer")
)

const (
	hostMarker = "Last Logon: "
	timeMarker = " at "
	hostArg    = "{host}"
)

// Resolve returns the remote target for subject. A nil subject means no
// subject is selected.
func Resolve(subject *models.Subject) (string, error) {
	if subject == nil {
		return "", session.ErrNoSubjectSelected
	}
	if subject.Description == "" {
		return "", ErrMissingDescription
	}
	return TargetFromDescription(subject.Description)
}

// TargetFromDescription extracts the host between "Last Logon: " and the
// following " at ". The host is returned verbatim.
func TargetFromDescription(desc string) (string, error) {
	start := strings.Index(desc, hostMarker)
	if start < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMarkerNotFound, hostMarker)
	}
	rest := desc[start+len(hostMarker):]
	end := strings.Index(rest, timeMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMarkerNotFound, timeMarker)
	}
	if end == 0 {
		return "", fmt.Errorf("%w: empty host", ErrMarkerNotFound)
	}
	return rest[:end], nil
}

// Launcher starts a remote session against host.
type Launcher interface {
	Launch(host string) error
}

// ProcessLauncher starts Path with Args, replacing "{host}" in each argument.
// The child is not waited on beyond reaping it.
type ProcessLauncher struct {
	Path string
	Args []string
}

// Command builds the exec.Cmd for host without starting it.
func (l ProcessLauncher) Command(host string) *exec.Cmd {
	args := make([]string, 0, len(l.Args))
	for _, a := range l.Args {
		args = append(args, strings.ReplaceAll(a, hostArg, host))
	}
	if len(l.Args) == 0 {
		args = append(args, host)
	}
	return exec.Command(l.Path, args...) // #nosec G204 -- viewer path and args come from the operator's config
}

// Launch implements Launcher.
func (l ProcessLauncher) Launch(host string) error {
	if l.Path == "" {
		return fmt.Errorf("%w: no viewer configured", ErrLaunch)
	}
	cmd := l.Command(host)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	slog.Debug("remote: viewer started", "path", l.Path, "host", host, "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("remote: viewer exited", "host", host, "err", err)
		}
	}()
	return nil
}
