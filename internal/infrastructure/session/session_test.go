package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData_Flashes(t *testing.T) {
	d := &Data{}
	d.AddFlash("one")
	d.AddFlash("two")
	assert.Equal(t, []string{"one", "two"}, d.PopFlashes())
	assert.Empty(t, d.PopFlashes())
}

func TestData_EnsureCSRFToken(t *testing.T) {
	d := &Data{}
	tok, err := d.EnsureCSRFToken()
	require.NoError(t, err)
	assert.Len(t, tok, 43)

	again, err := d.EnsureCSRFToken()
	require.NoError(t, err)
	assert.Equal(t, tok, again)
}

func TestData_HasTable(t *testing.T) {
	var nilData *Data
	assert.False(t, nilData.HasTable())
	assert.False(t, (&Data{}).HasTable())
	assert.True(t, (&Data{Table: sampleTable}).HasTable())
}

func TestData_SetTableStampsGeneration(t *testing.T) {
	d := &Data{}
	assert.True(t, d.IsCurrent(""))

	first := d.SetTable(sampleTable)
	require.NotEmpty(t, first)
	assert.Equal(t, first, d.Generation)
	assert.True(t, d.IsCurrent(first))
	assert.True(t, d.IsCurrent(""))

	second := d.SetTable(sampleTable[:1])
	assert.NotEqual(t, first, second)
	assert.False(t, d.IsCurrent(first))
	assert.True(t, d.IsCurrent(second))
}

func TestData_GenerationSurvivesEncoding(t *testing.T) {
	d := &Data{}
	gen := d.SetTable(sampleTable)

	b, err := encode(d)
	require.NoError(t, err)
	out, err := decode(b)
	require.NoError(t, err)
	assert.Equal(t, gen, out.Generation)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("../../etc/passwd"))
	assert.False(t, ValidID("{00000000-0000-0000-0000-000000000000}"))
}
