package review

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/utils"
	"kycreview/pkg/types"
)

func sampleDocuments() types.Documents {
	return types.Documents{
		{
			{Key: "document_type", Value: utils.StringPtr("Aadhaar")},
			{Key: "name", Value: utils.StringPtr("John Doe")},
			{Key: "dob", Value: utils.StringPtr("1990-01-01")},
			{Key: "address", Value: nil},
		},
		{
			{Key: "document_type", Value: utils.StringPtr("PAN")},
			{Key: "name", Value: utils.StringPtr("john doe ")},
			{Key: "pan_number", Value: utils.StringPtr("ABCDE1234F")},
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestEditField(t *testing.T) {
	t.Run("updates only the targeted key", func(t *testing.T) {
		docs := sampleDocuments()
		before := mustJSON(t, docs)

		out, err := EditField(docs, 0, "dob", "1991-02-02")
		require.NoError(t, err)

		assert.Equal(t, "1991-02-02", out[0].StringValue("dob"))
		assert.Equal(t, before, mustJSON(t, docs), "input must not be mutated")
		assert.Equal(t, mustJSON(t, docs[1]), mustJSON(t, out[1]))
		for _, key := range []string{"document_type", "name", "address"} {
			want, _ := docs[0].Value(key)
			got, _ := out[0].Value(key)
			assert.Equal(t, want, got, key)
		}
		assert.Equal(t, docs[0].Keys(), out[0].Keys())
	})

	t.Run("accepts empty string", func(t *testing.T) {
		out, err := EditField(sampleDocuments(), 1, "name", "")
		require.NoError(t, err)

		v, ok := out[1].Value("name")
		require.True(t, ok)
		require.NotNil(t, v)
		assert.Equal(t, "", *v)
	})

	t.Run("rejects bad index and unknown key", func(t *testing.T) {
		docs := sampleDocuments()

		_, err := EditField(docs, 2, "name", "x")
		assert.True(t, errors.Is(err, ErrDocumentIndex))

		_, err = EditField(docs, 0, "missing", "x")
		assert.True(t, errors.Is(err, ErrUnknownField))
	})
}

func TestApplyEdits(t *testing.T) {
	docs := sampleDocuments()

	out, err := ApplyEdits(docs, []Edit{
		{DocIndex: 0, Key: "name", Value: "John Doe"},
		{DocIndex: 0, Key: "address", Value: ""},
		{DocIndex: 1, Key: "pan_number", Value: "ZZZZZ9999Z"},
	})
	require.NoError(t, err)

	addr, ok := out[0].Value("address")
	require.True(t, ok)
	assert.Nil(t, addr, "untouched null stays null")
	assert.Equal(t, "ZZZZZ9999Z", out[1].StringValue("pan_number"))
	assert.Equal(t, "ABCDE1234F", docs[1].StringValue("pan_number"))

	t.Run("unknown key leaves state unchanged", func(t *testing.T) {
		out, err := ApplyEdits(docs, []Edit{
			{DocIndex: 0, Key: "name", Value: "Jane"},
			{DocIndex: 0, Key: "nope", Value: "x"},
		})
		require.Error(t, err)
		assert.Equal(t, mustJSON(t, docs), mustJSON(t, out))
	})
}

func TestAddField(t *testing.T) {
	t.Run("blank key is a no-op", func(t *testing.T) {
		for _, key := range []string{"", "   ", "\t\n"} {
			docs := sampleDocuments()
			out, added, err := AddField(docs, 0, key, "value")
			require.NoError(t, err)
			assert.False(t, added)
			assert.Equal(t, docs[0].Keys(), out[0].Keys())
		}
	})

	t.Run("inserts new key at the end", func(t *testing.T) {
		docs := sampleDocuments()
		out, added, err := AddField(docs, 1, "father_name", "Richard Doe")
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, []string{"document_type", "name", "pan_number", "father_name"}, out[1].Keys())
		assert.Equal(t, "Richard Doe", out[1].StringValue("father_name"))
		assert.False(t, docs[1].Has("father_name"))
	})

	t.Run("overwrites existing key in place", func(t *testing.T) {
		out, added, err := AddField(sampleDocuments(), 0, "dob", "2000-12-31")
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, sampleDocuments()[0].Keys(), out[0].Keys())
		assert.Equal(t, "2000-12-31", out[0].StringValue("dob"))
	})

	t.Run("bad index", func(t *testing.T) {
		_, _, err := AddField(sampleDocuments(), -1, "k", "v")
		assert.ErrorIs(t, err, ErrDocumentIndex)
	})
}

func TestDeleteField(t *testing.T) {
	t.Run("removes exactly that key", func(t *testing.T) {
		docs := sampleDocuments()
		out, err := DeleteField(docs, 0, "dob")
		require.NoError(t, err)
		assert.Equal(t, []string{"document_type", "name", "address"}, out[0].Keys())
		assert.True(t, docs[0].Has("dob"))
		assert.Equal(t, mustJSON(t, docs[1]), mustJSON(t, out[1]))
	})

	t.Run("nonexistent key is a no-op", func(t *testing.T) {
		docs := sampleDocuments()
		out, err := DeleteField(docs, 1, "does_not_exist")
		require.NoError(t, err)
		assert.Equal(t, mustJSON(t, docs), mustJSON(t, out))
	})
}

func TestHasNameConflict(t *testing.T) {
	named := func(names ...*string) types.Documents {
		docs := make(types.Documents, 0, len(names))
		for _, n := range names {
			docs = append(docs, types.Document{{Key: "name", Value: n}})
		}
		return docs
	}

	tests := []struct {
		name string
		docs types.Documents
		want bool
	}{
		{name: "no documents", docs: nil, want: false},
		{name: "single document", docs: named(utils.StringPtr("John Doe")), want: false},
		{name: "case and whitespace insensitive", docs: named(utils.StringPtr("John Doe"), utils.StringPtr("john doe ")), want: false},
		{name: "two distinct names", docs: named(utils.StringPtr("John Doe"), utils.StringPtr("Jane Doe")), want: true},
		{name: "null and blank ignored", docs: named(utils.StringPtr("John Doe"), nil, utils.StringPtr("  ")), want: false},
		{name: "documents without name key", docs: types.Documents{{{Key: "dob", Value: utils.StringPtr("x")}}, {}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasNameConflict(tt.docs))
		})
	}

	assert.False(t, HasNameConflict(sampleDocuments()))
}

func TestResultDialog(t *testing.T) {
	t.Run("success navigates home on dismiss", func(t *testing.T) {
		result := ResultFor(nil)
		assert.True(t, result.Open)
		assert.True(t, result.Success)
		assert.Equal(t, types.ResultSave, result.Type)

		closed, navigate := Dismiss(result)
		assert.Nil(t, closed)
		assert.True(t, navigate)
	})

	t.Run("failure stays on page", func(t *testing.T) {
		result := ResultFor(errors.New("connection refused"))
		assert.False(t, result.Success)
		assert.Equal(t, types.ResultError, result.Type)
		assert.Equal(t, MessageSaveFailed, result.Message)

		_, navigate := Dismiss(result)
		assert.False(t, navigate)
	})
}
