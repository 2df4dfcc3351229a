// Package review holds the state transitions of the confirm-details page.
// Every function returns new values and leaves its inputs untouched.
package review

import (
	"errors"
	"fmt"
	"strings"

	"kycreview/pkg/types"
)

var (
	ErrDocumentIndex = errors.New("document index out of range")
	ErrUnknownField  = errors.New("field not present on document")
)

const (
	MessageSaved      = "Successfully saved!"
	MessageSaveFailed = "Error saving data. Try again."
)

// Edit is one submitted field value.
type Edit struct {
	DocIndex int
	Key      string
	Value    string
}

// EditField sets an existing key on one document. Any string is accepted.
func EditField(docs types.Documents, docIndex int, key, value string) (types.Documents, error) {
	if docIndex < 0 || docIndex >= len(docs) {
		return docs, fmt.Errorf("edit field %q: %w", key, ErrDocumentIndex)
	}
	if !docs[docIndex].Has(key) {
		return docs, fmt.Errorf("edit field %q on document %d: %w", key, docIndex, ErrUnknownField)
	}

	out := docs.Clone()
	out[docIndex] = out[docIndex].Set(key, &value)
	return out, nil
}

// ApplyEdits applies every edit whose value differs from what the page
// rendered for that field. A null the user left blank stays null.
func ApplyEdits(docs types.Documents, edits []Edit) (types.Documents, error) {
	out := docs
	for _, e := range edits {
		if e.DocIndex < 0 || e.DocIndex >= len(out) {
			return docs, fmt.Errorf("apply edit %q: %w", e.Key, ErrDocumentIndex)
		}

		current, ok := out[e.DocIndex].Value(e.Key)
		if !ok {
			return docs, fmt.Errorf("apply edit %q on document %d: %w", e.Key, e.DocIndex, ErrUnknownField)
		}
		if current == nil && e.Value == "" {
			continue
		}
		if current != nil && *current == e.Value {
			continue
		}

		var err error
		out, err = EditField(out, e.DocIndex, e.Key, e.Value)
		if err != nil {
			return docs, err
		}
	}
	return out, nil
}

// AddField inserts or overwrites key on the target document. It reports
// false, with docs unchanged, when the trimmed key is blank.
func AddField(docs types.Documents, docIndex int, key, value string) (types.Documents, bool, error) {
	if docIndex < 0 || docIndex >= len(docs) {
		return docs, false, fmt.Errorf("add field %q: %w", key, ErrDocumentIndex)
	}
	if strings.TrimSpace(key) == "" {
		return docs, false, nil
	}

	out := docs.Clone()
	out[docIndex] = out[docIndex].Set(key, &value)
	return out, true, nil
}

// DeleteField removes key from the target document. Removing an absent key
// is a no-op.
func DeleteField(docs types.Documents, docIndex int, key string) (types.Documents, error) {
	if docIndex < 0 || docIndex >= len(docs) {
		return docs, fmt.Errorf("delete field %q: %w", key, ErrDocumentIndex)
	}
	if !docs[docIndex].Has(key) {
		return docs, nil
	}

	out := docs.Clone()
	out[docIndex] = out[docIndex].Without(key)
	return out, nil
}

// HasNameConflict reports whether the documents carry more than one distinct
// name once trimmed and lower-cased. Missing or blank names are ignored.
func HasNameConflict(docs types.Documents) bool {
	names := make(map[string]struct{})
	for _, d := range docs {
		name := strings.ToLower(strings.TrimSpace(d.StringValue(types.NameKey)))
		if name == "" {
			continue
		}
		names[name] = struct{}{}
	}
	return len(names) > 1
}

// ResultFor converts the outcome of a save call into the dialog to show.
func ResultFor(err error) *types.ResultDialog {
	if err != nil {
		return &types.ResultDialog{
			Open:    true,
			Success: false,
			Message: MessageSaveFailed,
			Type:    types.ResultError,
		}
	}
	return &types.ResultDialog{
		Open:    true,
		Success: true,
		Message: MessageSaved,
		Type:    types.ResultSave,
	}
}

// Dismiss closes the result dialog and reports whether the page should
// navigate back to the root route.
func Dismiss(result *types.ResultDialog) (*types.ResultDialog, bool) {
	if result == nil {
		return nil, false
	}
	navigate := result.Success && result.Type == types.ResultSave
	return nil, navigate
}
