package project

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// The legacy layout nests forms three levels deep: project, child project,
// category. Each level may also hold loose form references.
type legacyFormRef struct {
	ID     string `json:"id"`
	FormID string `json:"formId"`
	Name   string `json:"name"`
}

type legacyCategory struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	FormRefs []legacyFormRef `json:"formRefs"`
}

type legacyChild struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Categories    []legacyCategory `json:"categories"`
	Uncategorized []legacyFormRef  `json:"uncategorizedForms"`
}

type legacyProject struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Children      []legacyChild   `json:"children"`
	Uncategorized []legacyFormRef `json:"uncategorizedForms"`
}

// decodeTree reads a persisted tree. A JSON array is the legacy layout and is
// migrated; migrated reports whether that happened.
func decodeTree(data []byte) (tree Tree, migrated bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return newTree(), false, nil
	}
	if data[0] == '[' {
		var projects []legacyProject
		if err := json.Unmarshal(data, &projects); err != nil {
			return Tree{}, false, fmt.Errorf("project: decode legacy tree: %w", err)
		}
		return migrateLegacy(projects), true, nil
	}
	tree = newTree()
	if err := json.Unmarshal(data, &tree); err != nil {
		return Tree{}, false, fmt.Errorf("project: decode tree: %w", err)
	}
	return tree.clone(), false, nil
}

// migrateLegacy flattens the fixed hierarchy into folders and form nodes,
// keeping ids, names and form bindings.
func migrateLegacy(projects []legacyProject) Tree {
	tree := newTree()
	folder := func(id, name, parentID string) string {
		if id == "" {
			id = model.NewID()
		}
		tree.insert(Node{ID: id, Name: name, ParentID: parentID}, -1)
		return id
	}
	forms := func(refs []legacyFormRef, parentID string) {
		for _, ref := range refs {
			if ref.FormID == "" {
				continue
			}
			id := ref.ID
			if id == "" {
				id = model.NewID()
			}
			tree.insert(Node{ID: id, Name: ref.Name, ParentID: parentID, FormID: ref.FormID}, -1)
		}
	}

	for _, p := range projects {
		projectID := folder(p.ID, p.Name, "")
		for _, child := range p.Children {
			childID := folder(child.ID, child.Name, projectID)
			for _, cat := range child.Categories {
				catID := folder(cat.ID, cat.Name, childID)
				forms(cat.FormRefs, catID)
			}
			forms(child.Uncategorized, childID)
		}
		forms(p.Uncategorized, projectID)
	}
	return tree
}
