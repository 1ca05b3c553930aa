package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/internal/kvstore"
)

// Storage keys.
const (
	KeyProjects = "workflow-form-builder-projects"
	KeyForms    = "workflow-form-builder-saved-forms"
)

// DefaultDebounce is the quiet period before a scheduled write runs.
const DefaultDebounce = 500 * time.Millisecond

// Persister writes snapshots to a key-value store, coalescing bursts of
// changes into one write after a quiet period.
type Persister struct {
	kv       kvstore.Store
	debounce time.Duration
	logger   *slog.Logger

	// serializes writes so a later write always sees the newer snapshot
	writeMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	source  func() Snapshot
	pending bool
	running bool
	closed  bool
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithPersisterLogger sets the logger used for swallowed failures.
func WithPersisterLogger(logger *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPersister returns a persister over kv. The caller keeps ownership of kv.
func NewPersister(kv kvstore.Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		kv:       kv,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Load reads the persisted state. Missing keys load as empty. A read or
// decode failure on either key is logged and both load as empty. migrated
// reports whether legacy data was converted.
func (p *Persister) Load(ctx context.Context) (snap Snapshot, migrated bool) {
	empty := Snapshot{Tree: newTree(), Forms: map[string]SavedForm{}}

	treeData, err := p.get(ctx, KeyProjects)
	if err != nil {
		p.logger.Warn("project: load tree failed, starting empty", "error", err)
		return empty, false
	}
	formData, err := p.get(ctx, KeyForms)
	if err != nil {
		p.logger.Warn("project: load forms failed, starting empty", "error", err)
		return empty, false
	}
	tree, treeMigrated, err := decodeTree(treeData)
	if err != nil {
		p.logger.Warn("project: stored tree is corrupt, starting empty", "error", err)
		return empty, false
	}
	forms, formsMigrated, err := decodeForms(formData)
	if err != nil {
		p.logger.Warn("project: stored forms are corrupt, starting empty", "error", err)
		return empty, false
	}
	return Snapshot{Tree: tree, Forms: forms}, treeMigrated || formsMigrated
}

func (p *Persister) get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// Save writes snap immediately.
func (p *Persister) Save(ctx context.Context, snap Snapshot) error {
	tree, err := json.Marshal(snap.Tree)
	if err != nil {
		return fmt.Errorf("project: encode tree: %w", err)
	}
	forms := snap.Forms
	if forms == nil {
		forms = map[string]SavedForm{}
	}
	formData, err := json.Marshal(forms)
	if err != nil {
		return fmt.Errorf("project: encode forms: %w", err)
	}
	if err := p.kv.Set(ctx, KeyProjects, tree); err != nil {
		return fmt.Errorf("project: save tree: %w", err)
	}
	if err := p.kv.Set(ctx, KeyForms, formData); err != nil {
		return fmt.Errorf("project: save forms: %w", err)
	}
	return nil
}

// Schedule records that state changed. After the quiet period the latest
// snapshot from source is written. Each call restarts the period.
func (p *Persister) Schedule(source func() Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = source
	p.pending = true
	if p.closed {
		return
	}
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.onTimer)
		return
	}
	p.timer.Reset(p.debounce)
}

func (p *Persister) onTimer() {
	p.mu.Lock()
	if !p.pending || p.running || p.closed {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.running = true
	source := p.source
	p.mu.Unlock()

	if err := p.write(context.Background(), source); err != nil {
		p.logger.Error("project: save failed", "error", err)
	}

	p.mu.Lock()
	p.running = false
	// changes that arrived during the write get their own pass
	if p.pending && !p.closed {
		p.timer.Reset(p.debounce)
	}
	p.mu.Unlock()
}

func (p *Persister) write(ctx context.Context, source func() Snapshot) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Save(ctx, source())
}

// Flush writes a scheduled change now instead of waiting.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	if !p.pending {
		p.mu.Unlock()
		return nil
	}
	p.pending = false
	source := p.source
	p.mu.Unlock()
	return p.write(ctx, source)
}

// Close flushes and stops scheduling further writes.
func (p *Persister) Close(ctx context.Context) error {
	err := p.Flush(ctx)
	p.mu.Lock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
	return err
}
