package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/core/scheduler"
)

func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWrite_SchedulesWorkbook(t *testing.T) {
	ada := &model.Player{ID: "p1", Name: "Ada", Division: "Open", Ranking: 1, Seed: true,
		Preferences: []model.Preference{{PlayerID: "p1", TimeBlockID: "T1", Score: 2}}}
	ben := &model.Player{ID: "p2", Name: "Ben", Division: "Open", Ranking: 2,
		Preferences: []model.Preference{{PlayerID: "p2", TimeBlockID: "T1", Score: -1}}}
	cleo := &model.Player{ID: "p3", Name: "Cleo", Division: "Open", Ranking: 3, Seed: true}
	dan := &model.Player{ID: "p4", Name: "Dan", Division: "Open", Ranking: 4}

	match1 := &model.Match{ID: "Open-1-1", Player1: ada, Player2: ben, GroupID: "Open-1", Division: "Open"}
	match2 := &model.Match{ID: "Open-2-1", Player1: cleo, Player2: dan, GroupID: "Open-2", Division: "Open"}

	result := &scheduler.Result{
		Groups: []*model.Group{
			{ID: "Open-1", Division: "Open", Players: []*model.Player{ada, ben}, Matches: []*model.Match{match1}},
			{ID: "Open-2", Division: "Open", Players: []*model.Player{cleo, dan}, Matches: []*model.Match{match2}},
		},
		Assignments: []model.Assignment{
			{Match: match2, Slot: &model.Slot{CourtID: "C1", TimeBlockID: "T2"}},
			{Match: match1, Slot: &model.Slot{CourtID: "D1", TimeBlockID: "T1", IsDummy: true}},
		},
	}
	tournament := &model.Tournament{TimeBlockRanking: map[string]int{"T1": 1, "T2": 2}}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path, result, tournament))

	groups := readRows(t, path, "groups")
	require.Len(t, groups, 5)
	assert.Equal(t, []string{"division_id", "group_id", "player", "seed"}, groups[0])
	assert.Equal(t, []string{"Open", "Open-1", "Ada", markFlag}, groups[1])
	// Non-seeds leave the marker column blank, which trims to a short row.
	assert.Equal(t, []string{"Open", "Open-1", "Ben"}, groups[2])

	byGroup := readRows(t, path, "matches_by_group")
	require.Len(t, byGroup, 3)
	// Sorted by group, not by the order assignments came in.
	assert.Equal(t, "Open-1-1", byGroup[1][2])
	assert.Equal(t, "Open-2-1", byGroup[2][2])
	// Both players declared a preference for T1: one positive, one negative.
	assert.Equal(t, markPreferred+"|"+"|"+markUndesired, byGroup[1][8])
	assert.Equal(t, markFlag, byGroup[1][9])

	byBlock := readRows(t, path, "matches_by_time_block")
	require.Len(t, byBlock, 3)
	// Sorted by time block ranking.
	assert.Equal(t, "T1", byBlock[1][6])
	assert.Equal(t, "T2", byBlock[2][6])
}

func TestWriteParsedPreferences(t *testing.T) {
	preferences := []model.Preference{
		{PlayerID: "p1", TimeBlockID: "T1", Score: 2},
		{PlayerID: "p2", TimeBlockID: "T2", Score: -1},
	}

	path := filepath.Join(t.TempDir(), "prefs.xlsx")
	require.NoError(t, WriteParsedPreferences(path, preferences))

	rows := readRows(t, path, "parsed_preferences")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"player_id", "time_block_id", "preference"}, rows[0])
	assert.Equal(t, []string{"p1", "T1", "2"}, rows[1])
	assert.Equal(t, []string{"p2", "T2", "-1"}, rows[2])
}
