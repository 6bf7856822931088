package importers

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/progress"
)

// AuditLog records knowledge changes. *audit.Store implements it.
type AuditLog interface {
	Log(ctx context.Context, entry audit.Entry) error
}

// Importer teaches catalog files into the user layer of the knowledge
// base.
type Importer struct {
	knowledge *knowledge.Store
	store     *Store
	audit     AuditLog
	reporter  progress.Reporter
	logger    *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithStore records every imported file.
func WithStore(s *Store) Option {
	return func(i *Importer) { i.store = s }
}

// WithAudit writes one catalog_imported entry per imported file.
func WithAudit(a AuditLog) Option {
	return func(i *Importer) { i.audit = a }
}

// WithReporter shows per-file progress.
func WithReporter(r progress.Reporter) Option {
	return func(i *Importer) { i.reporter = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewImporter creates an importer writing into kb.
func NewImporter(kb *knowledge.Store, opts ...Option) *Importer {
	i := &Importer{
		knowledge: kb,
		reporter:  progress.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import expands patterns and teaches every entry found on behalf of
// user. A file that fails to parse is recorded as failed and the run
// continues; only a failure to persist the knowledge base aborts it.
func (i *Importer) Import(ctx context.Context, patterns []string, user string) (*Result, error) {
	files, err := Expand(patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if user == "" {
		user = knowledge.SystemAuthor
	}

	res := &Result{}
	i.reporter.Start(len(files))
	defer i.reporter.Finish()

	for n, path := range files {
		i.reporter.Update(n+1, filepath.Base(path))

		src := Source{Path: path, Status: StatusCompleted}
		entries, format, err := ParseFile(path)
		src.Format = format
		if err != nil {
			src.Status = StatusFailed
			src.Error = err.Error()
			res.Failures = append(res.Failures, err.Error())
			i.logger.Warn("catalog import failed", zap.String("path", path), zap.Error(err))
		} else {
			taught, err := i.knowledge.TeachAll(ctx, entries, user)
			src.Entries = taught
			res.Entries += taught
			if err != nil {
				return res, fmt.Errorf("importing %s: %w", path, err)
			}
			res.Files++
			i.logger.Info("catalog imported", zap.String("path", path), zap.Int("entries", taught))
			i.recordAudit(ctx, path, user, taught)
		}

		if src.Format == "" {
			// The row needs a valid format; unknown files are only reported.
			continue
		}
		if rec := i.recordSource(ctx, src); rec != nil {
			res.Sources = append(res.Sources, *rec)
		}
	}
	return res, nil
}

func (i *Importer) recordSource(ctx context.Context, src Source) *Source {
	if i.store == nil {
		return &src
	}
	rec, err := i.store.Record(ctx, src)
	if err != nil {
		i.logger.Warn("recording import", zap.String("path", src.Path), zap.Error(err))
		return &src
	}
	return rec
}

func (i *Importer) recordAudit(ctx context.Context, path, user string, n int) {
	if i.audit == nil || n == 0 {
		return
	}
	actor := audit.ActorUser
	if user == knowledge.SystemAuthor {
		actor = audit.ActorSystem
	}
	err := i.audit.Log(ctx, audit.Entry{
		ActorType: actor,
		ActorID:   user,
		Action:    audit.ActionCatalogImported,
		Summary:   fmt.Sprintf("Imported %d entries from %s", n, path),
		NewValue:  path,
	})
	if err != nil {
		i.logger.Warn("writing audit entry", zap.Error(err))
	}
}

// LoadCatalog reads catalog files for the default knowledge layer.
// Unreadable files are logged and skipped.
func LoadCatalog(patterns []string, logger *zap.Logger) ([]knowledge.CatalogEntry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := Expand(patterns)
	if err != nil {
		return nil, err
	}
	var out []knowledge.CatalogEntry
	for _, path := range files {
		entries, _, err := ParseFile(path)
		if err != nil {
			logger.Warn("skipping catalog file", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Debug("loaded catalog file", zap.String("path", path), zap.Int("entries", len(entries)))
		out = append(out, entries...)
	}
	return out, nil
}
