package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// IDField identifies a reference in the references listing
	IDField = "id"
	// NotesCountField holds the number of annotations attached to a reference
	NotesCountField = "f1000NotesCount"
	// NotesField is added to exported references that have annotations
	NotesField = "notes"
)

// Project is an entry of the projects listing
type Project struct {
	Name string
	ID   int64
}

func (p Project) String() string {
	return fmt.Sprintf("%s (%d)", p.Name, p.ID)
}

// ProjectIndex maps the 1-based ordinals shown to the user to projects.
// Ordinals follow the order of the listing response and are only stable
// for one run.
type ProjectIndex map[int]Project

// Lookup returns the project for an ordinal and whether it exists
func (idx ProjectIndex) Lookup(ordinal int) (Project, bool) {
	p, ok := idx[ordinal]
	return p, ok
}

// Reference is a bibliographic record as returned by the remote service.
// Fields other than id and the notes count are kept opaque.
type Reference map[string]any

// ID returns the reference id as a lookup key, or "" when absent
func (r Reference) ID() string {
	switch v := r[IDField].(type) {
	case nil:
		return ""
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// HasNotes reports whether the annotation count is present and truthy
func (r Reference) HasNotes() bool {
	switch v := r[NotesCountField].(type) {
	case nil:
		return false
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// AnnotationSet is the raw notes payload for one reference
type AnnotationSet = any

// ReferenceWithNotes is a reference as written to the export file.
// The source Reference is never modified; Notes is added on output.
type ReferenceWithNotes struct {
	Reference Reference
	Notes     AnnotationSet
	HasNotes  bool
}

// Fields returns a new map holding the reference fields plus notes when set
func (r ReferenceWithNotes) Fields() map[string]any {
	out := make(map[string]any, len(r.Reference)+1)
	for k, v := range r.Reference {
		out[k] = v
	}
	if r.HasNotes {
		out[NotesField] = r.Notes
	}
	return out
}

// MarshalJSON writes the reference with keys sorted and without escaping
// <, > and &
func (r ReferenceWithNotes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Fields()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
