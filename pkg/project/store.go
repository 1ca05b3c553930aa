package project

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Snapshot is the full persisted state.
type Snapshot struct {
	Tree  Tree
	Forms map[string]SavedForm
}

// Store holds the node tree and saved forms. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	tree      Tree
	forms     map[string]SavedForm
	now       func() time.Time
	logger    *slog.Logger
	persister *Persister
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPersister schedules a write through p after every change.
func WithPersister(p *Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tree:   newTree(),
		forms:  map[string]SavedForm{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open loads the persisted state through p and returns a store that writes
// back through it. Migrated legacy state is rewritten in the new layout.
func Open(ctx context.Context, p *Persister, opts ...Option) *Store {
	snap, migrated := p.Load(ctx)
	s := New(append(opts, WithPersister(p))...)
	s.restore(snap)
	if migrated {
		s.logger.Info("project: migrated legacy layout", "nodes", len(s.tree.Nodes), "forms", len(s.forms))
		s.changed()
	}
	return s
}

func (s *Store) restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = snap.Tree.clone()
	s.forms = make(map[string]SavedForm, len(snap.Forms))
	for id, form := range snap.Forms {
		s.forms[id] = form.clone()
	}
	bound := map[string]bool{}
	for _, node := range s.tree.Nodes {
		if node.FormID != "" {
			bound[node.FormID] = true
		}
	}
	orphans := slices.Sorted(maps.Keys(s.forms))
	for _, id := range orphans {
		if !bound[id] {
			s.tree.insert(Node{ID: model.NewID(), Name: s.forms[id].Name, FormID: id}, -1)
		}
	}
}

func (s *Store) changed() {
	if s.persister != nil {
		s.persister.Schedule(s.Snapshot)
	}
}

// Flush writes any scheduled change immediately.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Flush(ctx)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	forms := make(map[string]SavedForm, len(s.forms))
	for id, form := range s.forms {
		forms[id] = form.clone()
	}
	return Snapshot{Tree: s.tree.clone(), Forms: forms}
}

// Tree returns a copy of the node tree.
func (s *Store) Tree() Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.clone()
}

// Node returns the node with id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.tree.Nodes[id]
	node.ChildIDs = slices.Clone(node.ChildIDs)
	return node, ok
}

// CreateFolder adds a folder at the end of parentID's children. An empty
// parentID adds a root folder.
func (s *Store) CreateFolder(name, parentID string) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{}, ErrEmptyName
	}
	s.mu.Lock()
	if err := s.tree.checkParent(parentID); err != nil {
		s.mu.Unlock()
		return Node{}, err
	}
	node := Node{ID: model.NewID(), Name: name, ParentID: parentID, ChildIDs: []string{}}
	s.tree.insert(node, -1)
	s.mu.Unlock()
	s.changed()
	return node, nil
}

// EnsureFolder walks a slash separated folder path from the root, creating
// missing folders, and returns the last folder's id. An empty path returns "".
func (s *Store) EnsureFolder(path string) (string, error) {
	parentID := ""
	for _, name := range strings.Split(path, "/") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s.mu.RLock()
		found := ""
		for _, id := range s.tree.siblings(parentID) {
			if node := s.tree.Nodes[id]; node.IsFolder() && node.Name == name {
				found = id
				break
			}
		}
		s.mu.RUnlock()
		if found == "" {
			node, err := s.CreateFolder(name, parentID)
			if err != nil {
				return "", err
			}
			found = node.ID
		}
		parentID = found
	}
	return parentID, nil
}

// Rename renames a node. Renaming a form node renames the form too.
func (s *Store) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	node, ok := s.tree.Nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if node.FormID != "" {
		s.renameFormLocked(node.FormID, name)
	} else {
		node.Name = name
		s.tree.Nodes[id] = node
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// Move places a node under parentID at index. A negative or out of range
// index appends.
func (s *Store) Move(id, parentID string, index int) error {
	s.mu.Lock()
	node, ok := s.tree.Nodes[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if err := s.tree.checkParent(parentID); err != nil {
		s.mu.Unlock()
		return err
	}
	if parentID != "" && s.tree.isDescendant(parentID, id) {
		s.mu.Unlock()
		return ErrCycle
	}
	s.tree.detach(id)
	node = s.tree.Nodes[id]
	node.ParentID = parentID
	s.tree.insert(node, index)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Delete removes a node with its descendants and the forms bound to them.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.tree.Nodes[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	ids := s.tree.subtree(id)
	s.tree.detach(id)
	for _, nodeID := range ids {
		if formID := s.tree.Nodes[nodeID].FormID; formID != "" {
			delete(s.forms, formID)
		}
		delete(s.tree.Nodes, nodeID)
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// SaveForm stores form as a new saved form under parentID. Raw is the
// imported schema text and may be nil.
func (s *Store) SaveForm(parentID string, form model.Form, raw []byte) (SavedForm, error) {
	if strings.TrimSpace(form.Name) == "" {
		return SavedForm{}, ErrEmptyName
	}
	schema, err := codec.Encode(form)
	if err != nil {
		return SavedForm{}, err
	}
	s.mu.Lock()
	if err := s.tree.checkParent(parentID); err != nil {
		s.mu.Unlock()
		return SavedForm{}, err
	}
	saved := SavedForm{
		ID:          model.NewID(),
		Name:        form.Name,
		Title:       form.Title,
		Description: form.Description,
		Schema:      schema,
		RawSchema:   string(raw),
		UpdatedAt:   s.now().UnixMilli(),
	}
	s.forms[saved.ID] = saved
	s.tree.insert(Node{ID: model.NewID(), Name: saved.Name, ParentID: parentID, FormID: saved.ID}, -1)
	s.mu.Unlock()
	s.changed()
	return saved.clone(), nil
}

// UpdateForm replaces a saved form's content. A nil raw keeps the stored raw
// schema.
func (s *Store) UpdateForm(formID string, form model.Form, raw []byte) (SavedForm, error) {
	if strings.TrimSpace(form.Name) == "" {
		return SavedForm{}, ErrEmptyName
	}
	schema, err := codec.Encode(form)
	if err != nil {
		return SavedForm{}, err
	}
	s.mu.Lock()
	saved, ok := s.forms[formID]
	if !ok {
		s.mu.Unlock()
		return SavedForm{}, ErrNotFound
	}
	saved.Title = form.Title
	saved.Description = form.Description
	saved.Schema = schema
	if raw != nil {
		saved.RawSchema = string(raw)
	}
	saved.UpdatedAt = s.now().UnixMilli()
	s.forms[formID] = saved
	s.renameFormLocked(formID, form.Name)
	saved = s.forms[formID]
	s.mu.Unlock()
	s.changed()
	return saved.clone(), nil
}

// RenameForm renames a saved form and the nodes bound to it.
func (s *Store) RenameForm(formID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	if _, ok := s.forms[formID]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.renameFormLocked(formID, name)
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Store) renameFormLocked(formID, name string) {
	if saved, ok := s.forms[formID]; ok {
		saved.Name = name
		s.forms[formID] = saved
	}
	for id, node := range s.tree.Nodes {
		if node.FormID == formID {
			node.Name = name
			s.tree.Nodes[id] = node
		}
	}
}

// DeleteForm removes a saved form and the nodes bound to it.
func (s *Store) DeleteForm(formID string) error {
	s.mu.Lock()
	if _, ok := s.forms[formID]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.forms, formID)
	for id, node := range s.tree.Nodes {
		if node.FormID == formID {
			s.tree.detach(id)
			delete(s.tree.Nodes, id)
		}
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// DuplicateForm copies a saved form next to the original, with "_copy"
// appended to the name and " (Copy)" to the title. The raw schema is not
// copied.
func (s *Store) DuplicateForm(formID string) (SavedForm, error) {
	s.mu.Lock()
	original, ok := s.forms[formID]
	if !ok {
		s.mu.Unlock()
		return SavedForm{}, ErrNotFound
	}
	var origin Node
	for _, node := range s.tree.Nodes {
		if node.FormID == formID {
			origin = node
			break
		}
	}
	if origin.ID == "" {
		s.mu.Unlock()
		return SavedForm{}, fmt.Errorf("%w: form %s has no node", ErrNotFound, formID)
	}
	dup := original.clone()
	dup.ID = model.NewID()
	dup.Name = original.Name + "_copy"
	dup.Title = original.Title + " (Copy)"
	dup.RawSchema = ""
	dup.UpdatedAt = s.now().UnixMilli()
	s.forms[dup.ID] = dup

	index := slices.Index(s.tree.siblings(origin.ParentID), origin.ID) + 1
	s.tree.insert(Node{ID: model.NewID(), Name: dup.Name, ParentID: origin.ParentID, FormID: dup.ID}, index)
	s.mu.Unlock()
	s.changed()
	return dup.clone(), nil
}

// Form returns the saved form with id.
func (s *Store) Form(formID string) (SavedForm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved, ok := s.forms[formID]
	return saved.clone(), ok
}

// Forms lists saved forms ordered by name.
func (s *Store) Forms() []SavedForm {
	s.mu.RLock()
	out := make([]SavedForm, 0, len(s.forms))
	for _, saved := range s.forms {
		out = append(out, saved.clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindFormByName returns the saved form whose name matches, ignoring case.
// Ties go to the most recently updated form.
func (s *Store) FindFormByName(name string) (SavedForm, bool) {
	name = strings.TrimSpace(name)
	var (
		best  SavedForm
		found bool
	)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, saved := range s.forms {
		if !strings.EqualFold(saved.Name, name) {
			continue
		}
		if !found || saved.UpdatedAt > best.UpdatedAt {
			best, found = saved, true
		}
	}
	return best.clone(), found
}

// FormByName resolves a task type against the saved forms. It returns the
// decoded form and the raw schema text when one was imported.
func (s *Store) FormByName(name string) (model.Form, []byte, bool) {
	saved, ok := s.FindFormByName(name)
	if !ok {
		return model.Form{}, nil, false
	}
	var raw []byte
	if saved.RawSchema != "" {
		raw = []byte(saved.RawSchema)
	}
	form, err := saved.Form()
	if err != nil {
		s.logger.Warn("project: stored form does not decode", "form", saved.Name, "error", err)
		return model.Form{Name: saved.Name}, raw, raw != nil
	}
	return form, raw, true
}
