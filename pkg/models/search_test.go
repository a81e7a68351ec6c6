package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexListUnmarshalArray(t *testing.T) {
	var list IndexList
	require.NoError(t, json.Unmarshal([]byte(`[4, 0, 7]`), &list))
	assert.Equal(t, IndexList{4, 0, 7}, list)
}

func TestIndexListUnmarshalEncodedString(t *testing.T) {
	var list IndexList
	require.NoError(t, json.Unmarshal([]byte(`"[4, 0, 7]"`), &list))
	assert.Equal(t, IndexList{4, 0, 7}, list)
}

func TestIndexListUnmarshalEmpty(t *testing.T) {
	cases := map[string]string{
		"null":         `null`,
		"empty string": `""`,
		"empty array":  `[]`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var list IndexList
			require.NoError(t, json.Unmarshal([]byte(payload), &list))
			assert.Empty(t, list)
		})
	}
}

func TestIndexListUnmarshalGarbage(t *testing.T) {
	var list IndexList
	assert.Error(t, json.Unmarshal([]byte(`"not a list"`), &list))
}

func TestIndexListInsideSearch(t *testing.T) {
	payload := `{"id": "s1", "shortlisted_indices": "[2,5,9]", "candidate_count": 3}`

	var search Search
	require.NoError(t, json.Unmarshal([]byte(payload), &search))
	assert.Equal(t, IndexList{2, 5, 9}, search.ShortlistedIndices)
}

func TestNormalizeTriState(t *testing.T) {
	assert.Equal(t, "Yes", NormalizeTriState("yes"))
	assert.Equal(t, "Yes", NormalizeTriState("TRUE"))
	assert.Equal(t, "Yes", NormalizeTriState(" 1 "))
	assert.Equal(t, "No", NormalizeTriState("no"))
	assert.Equal(t, "No", NormalizeTriState("false"))
	assert.Equal(t, "No", NormalizeTriState("0"))
	assert.Equal(t, "", NormalizeTriState(""))
	assert.Equal(t, "", NormalizeTriState("maybe"))
}

func TestSharedFieldsIsZero(t *testing.T) {
	assert.True(t, SharedFields{}.IsZero())
	assert.False(t, SharedFields{Company: "Acme"}.IsZero())
}
