// Package service implements the lookup orchestrator shared by the interactive
// shell and the MCP server. It wires together configuration, query
// classification, directory search, the remote launcher and the audit log.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-ports/whois/internal/audit"
	"github.com/go-ports/whois/internal/config"
	"github.com/go-ports/whois/internal/directory"
	"github.com/go-ports/whois/internal/models"
	"github.com/go-ports/whois/internal/query"
	"github.com/go-ports/whois/internal/remote"
)

// Service orchestrates lookups and remote launches.
type Service struct {
	Home   string
	Config *config.Config

	classifier query.Classifier
	launcher   remote.Launcher
	store      *audit.Store
	sessionID  string
	mu         sync.Mutex
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.GetHome. An audit database that
// cannot be opened is logged and auditing is disabled for the process.
func New(home string) (*Service, error) {
	if home == "" {
		home = config.GetHome()
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	cfg, err := config.LoadHome(home)
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}

	var store *audit.Store
	if cfg.Audit.Enabled {
		store, err = audit.Open(cfg.AuditPath(home))
		if err != nil {
			slog.Warn("audit log unavailable", "err", err)
			store = nil
		}
	}

	svc := NewWith(cfg, store, remote.ProcessLauncher{Path: cfg.Remote.Viewer, Args: cfg.Remote.Args})
	svc.Home = home
	return svc, nil
}

// NewWith builds a Service from already-constructed parts. store may be nil.
func NewWith(cfg *config.Config, store *audit.Store, launcher remote.Launcher) *Service {
	return &Service{
		Config: cfg,
		classifier: query.Classifier{
			Strict:    cfg.Directory.StrictFiltering,
			MaxLength: cfg.Shell.MaxQuery,
		},
		launcher:  launcher,
		store:     store,
		sessionID: audit.NewSessionID(),
	}
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// SessionID identifies this process in the audit log.
func (s *Service) SessionID() string { return s.sessionID }

// Connect dials the configured directory through dial.
func (s *Service) Connect(ctx context.Context, dial directory.DialFunc) (directory.Conn, error) {
	if dial == nil {
		dial = directory.Dial
	}
	conn, err := dial(ctx, s.Config.Directory)
	if err != nil {
		return nil, fmt.Errorf("service.Connect: %w", err)
	}
	return conn, nil
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// Lookup classifies q, searches conn and maps the first entry.
// Zero entries yields directory.ErrNoResults. Directory access is serialized
// across callers and bounded by directory.timeout.
func (s *Service) Lookup(ctx context.Context, conn directory.Searcher, q string) (models.LookupResult, error) {
	cls, err := s.classifier.Classify(q)
	if err != nil {
		return models.LookupResult{}, err
	}

	entries, err := s.search(ctx, conn, cls.Filter)
	if err == nil && len(entries) == 0 {
		err = directory.ErrNoResults
	}
	if err != nil {
		s.record(audit.Event{
			Command:  "search",
			Query:    cls.Query,
			Strategy: cls.Strategy.String(),
		}, err)
		return models.LookupResult{}, err
	}

	subject := directory.MapEntry(entries[0])
	s.record(audit.Event{
		Command:  "search",
		Query:    cls.Query,
		Strategy: cls.Strategy.String(),
		Account:  subject.AccountName,
	}, nil)

	slog.Debug("lookup", "strategy", cls.Strategy.String(), "matches", len(entries))
	return models.LookupResult{
		Subject:  subject,
		Strategy: cls.Strategy,
		Filter:   cls.Filter,
		Matches:  len(entries),
	}, nil
}

func (s *Service) search(ctx context.Context, conn directory.Searcher, filter string) ([]directory.Entry, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: not connected", directory.ErrSearch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout := s.Config.Directory.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	entries, err := conn.Search(ctx, filter)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, directory.ErrTimeout) {
		err = fmt.Errorf("%w: %v", directory.ErrTimeout, err)
	}
	return entries, err
}

// ---------------------------------------------------------------------------
// Remote
// ---------------------------------------------------------------------------

// RemoteTarget resolves the remote-control host for subject without launching.
func (s *Service) RemoteTarget(subject *models.Subject) (string, error) {
	return remote.Resolve(subject)
}

// Remote resolves the target host for subject and launches the viewer.
func (s *Service) Remote(subject *models.Subject) (string, error) {
	host, err := remote.Resolve(subject)
	if err != nil {
		return "", err
	}

	err = s.launcher.Launch(host)
	s.record(audit.Event{
		Command: "remote",
		Account: subject.AccountName,
		Target:  host,
	}, err)
	return host, err
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

// Recent returns the newest audit events. It returns nil when auditing is off.
func (s *Service) Recent(limit int, account string) ([]audit.Event, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Recent(limit, account)
}

// AuditEnabled reports whether events are being recorded.
func (s *Service) AuditEnabled() bool { return s.store != nil }

// record writes ev with the outcome derived from err. Failures are logged and
// never surface to the caller.
func (s *Service) record(ev audit.Event, err error) {
	if s.store == nil {
		return
	}
	ev.SessionID = s.sessionID
	ev.Outcome, ev.Error = outcome(err)
	if _, werr := s.store.Record(ev); werr != nil {
		slog.Warn("failed to record audit event", "command", ev.Command, "err", werr)
	}
}

func outcome(err error) (status, message string) {
	if err == nil {
		return audit.OutcomeOK, ""
	}
	return audit.OutcomeError, err.Error()
}
