package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, NanoidSize)
	assert.True(t, IsNanoID(id))

	assert.False(t, IsNanoID(""))
	assert.False(t, IsNanoID("short"))
	assert.False(t, IsNanoID("../../../../../../../etc/passwd.."))
}

func TestStructTagValues(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		Skipped string `db:"-"`
		NoTag   string
		hidden  string `db:"hidden"`
	}
	_ = row{}.hidden

	assert.Equal(t, []string{"id", "name"}, StructTagValues(row{}))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(&row{}))
	assert.Panics(t, func() { StructTagValues("not a struct") })
}
