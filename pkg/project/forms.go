package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SavedForm is a stored form. Schema holds the encoded schema document;
// RawSchema keeps the text the form was imported from, if any.
type SavedForm struct {
	ID          string          `json:"id"`
	Name        string          `json:"formName"`
	Title       string          `json:"formTitle"`
	Description string          `json:"formDescription"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	RawSchema   string          `json:"rawSchema,omitempty"`
	UpdatedAt   int64           `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.
func (f SavedForm) Updated() time.Time {
	return time.UnixMilli(f.UpdatedAt)
}

// Form decodes the stored schema. The stored name, title and description take
// precedence over the document's.
func (f SavedForm) Form() (model.Form, error) {
	var (
		form model.Form
		err  error
	)
	switch {
	case len(f.Schema) > 0:
		form, err = codec.Decode(f.Schema)
	case strings.TrimSpace(f.RawSchema) != "":
		form, err = codec.Decode([]byte(f.RawSchema))
	}
	if err != nil {
		return model.Form{}, fmt.Errorf("project: form %q: %w", f.Name, err)
	}
	form.Name = f.Name
	if f.Title != "" {
		form.Title = f.Title
	}
	if f.Description != "" {
		form.Description = f.Description
	}
	return form, nil
}

func (f SavedForm) clone() SavedForm {
	f.Schema = bytes.Clone(f.Schema)
	return f
}

// decodeForms reads the saved form map. Entries written before schemas were
// stored get one from their raw schema when it still decodes.
func decodeForms(data []byte) (map[string]SavedForm, bool, error) {
	out := map[string]SavedForm{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]SavedForm{}, false, fmt.Errorf("project: decode forms: %w", err)
	}
	migrated := false
	for id, form := range out {
		if form.ID == "" {
			form.ID = id
		}
		if len(form.Schema) == 0 && strings.TrimSpace(form.RawSchema) != "" {
			if doc, err := codec.Decode([]byte(form.RawSchema)); err == nil {
				if schema, err := codec.Encode(doc); err == nil {
					form.Schema = schema
					migrated = true
				}
			}
		}
		out[id] = form
	}
	return out, migrated, nil
}
