package export

import (
	"context"
	"fmt"

	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/models"
	"github.com/takak2166/sciwheel-export/internal/sciwheel"
)

// Annotated returns the ids of references whose notes count is truthy, in
// listing order and without duplicates
func Annotated(refs []models.Reference) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, ref := range refs {
		if !ref.HasNotes() {
			continue
		}
		id := ref.ID()
		if id == "" {
			logger.Warn("Skipping annotated reference without id", nil)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FetchNotes requests the notes of each id one after another. The first
// failure aborts the whole fetch.
func FetchNotes(ctx context.Context, api sciwheel.API, ids []string) (map[string]models.AnnotationSet, error) {
	notes := make(map[string]models.AnnotationSet, len(ids))
	for _, id := range ids {
		logger.Debug("Fetching notes", map[string]interface{}{
			"reference_id": id,
		})
		set, err := api.Notes(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch notes for reference %s: %w", id, err)
		}
		notes[id] = set
	}
	return notes, nil
}

// Merge pairs every reference with its notes, keeping order and count
func Merge(refs []models.Reference, notes map[string]models.AnnotationSet) []models.ReferenceWithNotes {
	out := make([]models.ReferenceWithNotes, 0, len(refs))
	for _, ref := range refs {
		item := models.ReferenceWithNotes{Reference: ref}
		if set, ok := notes[ref.ID()]; ok {
			item.Notes = set
			item.HasNotes = true
		}
		out = append(out, item)
	}
	return out
}
