package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestDocumentJSONKeepsKeyOrder(t *testing.T) {
	input := `[{"zeta":"1","alpha":null,"document_type":"PAN"},{"name":"John Doe"}]`

	var docs Documents
	require.NoError(t, json.Unmarshal([]byte(input), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, []string{"zeta", "alpha", "document_type"}, docs[0].Keys())

	v, ok := docs[0].Value("alpha")
	assert.True(t, ok)
	assert.Nil(t, v)

	out, err := json.Marshal(docs)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestDocumentUnmarshalScalars(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"age": 42, "verified": true, "address": {"city": "Pune", "pin": 411001}, "dup": "a", "dup": "b"}`), &doc)
	require.NoError(t, err)

	assert.Equal(t, "42", doc.StringValue("age"))
	assert.Equal(t, "true", doc.StringValue("verified"))
	assert.Equal(t, `{"city":"Pune","pin":411001}`, doc.StringValue("address"))
	assert.Equal(t, []string{"age", "verified", "address", "dup"}, doc.Keys())
	assert.Equal(t, "b", doc.StringValue("dup"))
}

func TestDocumentUnmarshalRejectsNonObject(t *testing.T) {
	var doc Document
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &doc))

	var docs Documents
	require.NoError(t, json.Unmarshal([]byte(`[null]`), &docs))
	assert.Nil(t, docs[0])
}

func TestDocumentSetAndWithoutDoNotMutate(t *testing.T) {
	doc := Document{{Key: "name", Value: str("John")}, {Key: "dob", Value: nil}}

	updated := doc.Set("name", str("Jane"))
	assert.Equal(t, "John", doc.StringValue("name"))
	assert.Equal(t, "Jane", updated.StringValue("name"))
	assert.Equal(t, []string{"name", "dob"}, updated.Keys())

	appended := doc.Set("gender", str("F"))
	assert.Equal(t, []string{"name", "dob", "gender"}, appended.Keys())
	assert.Len(t, doc, 2)

	removed := doc.Without("name")
	assert.Equal(t, []string{"dob"}, removed.Keys())
	assert.True(t, doc.Has("name"))

	clone := doc.Clone()
	*clone[0].Value = "changed"
	assert.Equal(t, "John", doc.StringValue("name"))
}

func TestFirstDocumentType(t *testing.T) {
	docs := Documents{
		{{Key: "name", Value: str("John")}},
		{{Key: DocumentTypeKey, Value: str("  ")}},
		{{Key: DocumentTypeKey, Value: str(" Passport ")}},
		{{Key: DocumentTypeKey, Value: str("PAN")}},
	}
	assert.Equal(t, "Passport", docs.FirstDocumentType())
	assert.Equal(t, "", Documents{}.FirstDocumentType())
}

func TestLinkFromRecord(t *testing.T) {
	link, ok := LinkFromRecord(Document{
		{Key: "file_name", Value: str("pan.png")},
		{Key: "href", Value: str("https://files.example.com/pan.png")},
	})
	require.True(t, ok)
	assert.Equal(t, Link{Label: "pan.png", URL: "https://files.example.com/pan.png"}, link)

	link, ok = LinkFromRecord(Document{{Key: "signed_url", Value: str("s3://bucket/key")}})
	require.True(t, ok)
	assert.Equal(t, "s3://bucket/key", link.Label)

	_, ok = LinkFromRecord(Document{{Key: "label", Value: str("no url")}})
	assert.False(t, ok)
}

func TestReviewDraftClone(t *testing.T) {
	draft := &ReviewDraft{
		ID:            "d1",
		CustID:        str("C-1"),
		UploadedFiles: []string{"a.png"},
		Documents:     Documents{{{Key: "name", Value: str("John")}}},
		Result:        &ResultDialog{Open: true, Success: true, Type: ResultSave},
	}

	clone := draft.Clone()
	*clone.CustID = "C-2"
	clone.UploadedFiles[0] = "b.png"
	clone.Result.Open = false

	assert.Equal(t, "C-1", draft.CustomerID())
	assert.Equal(t, "a.png", draft.UploadedFiles[0])
	assert.True(t, draft.Result.Open)
	assert.Nil(t, (*ReviewDraft)(nil).Clone())
}
