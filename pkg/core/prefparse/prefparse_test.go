package prefparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmerida/courtplan/pkg/core/model"
)

func testTranslation() Translation {
	return Translation{
		TimeBlocks: map[string][]string{
			"Saturday morning":   {"T1", "T2"},
			"Saturday afternoon": {"T3"},
		},
		Scores: map[string]int{
			"Yes please": 2,
			"If needed":  1,
			"No":         -1,
		},
	}
}

func TestParse_ExpandsColumnsIntoTimeBlocks(t *testing.T) {
	raw := []map[string]string{
		{
			"player_id":          "p1",
			"name":               "Ada",
			"Saturday morning":   "Yes please",
			"Saturday afternoon": "No",
		},
	}

	preferences, err := Parse(raw, testTranslation())
	require.NoError(t, err)

	assert.Equal(t, []model.Preference{
		{PlayerID: "p1", TimeBlockID: "T3", Score: -1},
		{PlayerID: "p1", TimeBlockID: "T1", Score: 2},
		{PlayerID: "p1", TimeBlockID: "T2", Score: 2},
	}, preferences)
}

func TestParse_UnknownAnswerIsNeutral(t *testing.T) {
	raw := []map[string]string{
		{"player_id": "p1", "Saturday afternoon": "Maybe, who knows"},
	}

	preferences, err := Parse(raw, testTranslation())
	require.NoError(t, err)

	require.Len(t, preferences, 1)
	assert.Equal(t, 0, preferences[0].Score)
}

func TestParse_MissingPlayerID(t *testing.T) {
	raw := []map[string]string{
		{"name": "Ada", "Saturday morning": "Yes please"},
	}

	_, err := Parse(raw, testTranslation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "player_id")
}

func TestParse_UnmappedColumn(t *testing.T) {
	raw := []map[string]string{
		{"player_id": "p1", "Sunday evening": "Yes please"},
	}

	_, err := Parse(raw, testTranslation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no time block mapping for column "Sunday evening"`)
}

func TestParse_EmptyInput(t *testing.T) {
	preferences, err := Parse(nil, testTranslation())
	require.NoError(t, err)
	assert.Empty(t, preferences)
}
