package uuid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsVersion7(t *testing.T) {
	id := New()
	assert.NotEqual(t, Nil, id)
	assert.True(t, IsUUIDv7(id))

	id2, err := NewRandom()
	require.NoError(t, err)
	assert.True(t, IsUUIDv7(id2))
	assert.NotEqual(t, id, id2)
}

func TestParse(t *testing.T) {
	s := "0190f3a2-7c1e-7b35-9d2c-6f1c0a4b5e21"
	id, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, id.String())

	_, err = Parse("not-a-session-id")
	assert.Error(t, err)
}

func TestCreatedAtAndCompare(t *testing.T) {
	before := time.Now().Add(-time.Second)
	a := New()
	time.Sleep(2 * time.Millisecond)
	b := New()

	assert.True(t, CreatedAt(a).After(before))
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
}
