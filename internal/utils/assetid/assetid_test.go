package assetid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidvault/internal/utils/assetid"
)

func TestNewProducesValidIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := assetid.New()
		assert.True(t, assetid.IsValid(id), "generated id %q must be valid", id)
		assert.False(t, seen[id], "ids must be unique")
		seen[id] = true
	}
}

func TestIsValid(t *testing.T) {
	valid := assetid.New()
	assert.True(t, assetid.IsValid(valid))

	assert.False(t, assetid.IsValid(""))
	assert.False(t, assetid.IsValid("vid_"))
	assert.False(t, assetid.IsValid("vid_not-a-ulid"))
	assert.False(t, assetid.IsValid("img_01HV3Q0000000000000000000"))
}

func TestParseRoundTrip(t *testing.T) {
	id := assetid.New()
	ulid, err := assetid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, "vid_"+strings.ToLower(ulid.String()))
}

func TestParseRejectsWrongPrefix(t *testing.T) {
	_, err := assetid.Parse("usr_01HV3Q0000000000000000000")
	assert.Error(t, err)
}
