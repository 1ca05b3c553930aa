// Package project keeps the folder tree of saved forms and persists it to a
// key-value store.
package project

import (
	"errors"
	"slices"
)

var (
	// ErrNotFound is returned for unknown node or form ids.
	ErrNotFound = errors.New("project: not found")
	// ErrNotFolder is returned when a form node is used as a parent.
	ErrNotFolder = errors.New("project: parent is not a folder")
	// ErrCycle is returned when a node would be moved below itself.
	ErrCycle = errors.New("project: cannot move a node below itself")
	// ErrEmptyName is returned for blank names.
	ErrEmptyName = errors.New("project: name is required")
)

// Node is a folder, or a form entry when FormID is set.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parentId,omitempty"`
	ChildIDs []string `json:"childIds"`
	FormID   string   `json:"formId,omitempty"`
}

// IsFolder reports whether the node can hold children.
func (n Node) IsFolder() bool { return n.FormID == "" }

// Tree is the persisted node tree.
type Tree struct {
	Nodes   map[string]Node `json:"nodes"`
	RootIDs []string        `json:"rootIds"`
}

func newTree() Tree {
	return Tree{Nodes: map[string]Node{}, RootIDs: []string{}}
}

func (t Tree) clone() Tree {
	out := Tree{Nodes: make(map[string]Node, len(t.Nodes)), RootIDs: slices.Clone(t.RootIDs)}
	if out.RootIDs == nil {
		out.RootIDs = []string{}
	}
	for id, node := range t.Nodes {
		node.ChildIDs = slices.Clone(node.ChildIDs)
		if node.ChildIDs == nil {
			node.ChildIDs = []string{}
		}
		out.Nodes[id] = node
	}
	return out
}

// siblings returns the ordered child list that holds parentID's children.
func (t *Tree) siblings(parentID string) []string {
	if parentID == "" {
		return t.RootIDs
	}
	return t.Nodes[parentID].ChildIDs
}

func (t *Tree) setSiblings(parentID string, ids []string) {
	if parentID == "" {
		t.RootIDs = ids
		return
	}
	node := t.Nodes[parentID]
	node.ChildIDs = ids
	t.Nodes[parentID] = node
}

func (t *Tree) checkParent(parentID string) error {
	if parentID == "" {
		return nil
	}
	parent, ok := t.Nodes[parentID]
	if !ok {
		return ErrNotFound
	}
	if !parent.IsFolder() {
		return ErrNotFolder
	}
	return nil
}

func (t *Tree) insert(node Node, index int) {
	node.ChildIDs = slices.Clone(node.ChildIDs)
	if node.ChildIDs == nil {
		node.ChildIDs = []string{}
	}
	t.Nodes[node.ID] = node
	ids := slices.Clone(t.siblings(node.ParentID))
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	t.setSiblings(node.ParentID, slices.Insert(ids, index, node.ID))
}

func (t *Tree) detach(id string) {
	node := t.Nodes[id]
	ids := slices.DeleteFunc(slices.Clone(t.siblings(node.ParentID)), func(s string) bool { return s == id })
	t.setSiblings(node.ParentID, ids)
}

// subtree lists id and every descendant, parents first.
func (t *Tree) subtree(id string) []string {
	out := []string{id}
	for i := 0; i < len(out); i++ {
		out = append(out, t.Nodes[out[i]].ChildIDs...)
	}
	return out
}

func (t *Tree) isDescendant(id, ancestor string) bool {
	for cur := id; cur != ""; cur = t.Nodes[cur].ParentID {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Entry is one row of a depth-first outline.
type Entry struct {
	Depth int
	Node  Node
}

// Outline lists the tree depth first in child order.
func (t Tree) Outline() []Entry {
	var out []Entry
	var visit func(ids []string, depth int)
	visit = func(ids []string, depth int) {
		for _, id := range ids {
			node, ok := t.Nodes[id]
			if !ok {
				continue
			}
			out = append(out, Entry{Depth: depth, Node: node})
			visit(node.ChildIDs, depth+1)
		}
	}
	visit(t.RootIDs, 0)
	return out
}
