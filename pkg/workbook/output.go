package workbook

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/core/scheduler"
)

// Markers used in the output workbook.
const (
	markPreferred   = "✅"
	markIndifferent = "➖"
	markUndesired   = "❌"
	markFlag        = "**"
)

// Write produces the output workbook: a groups sheet plus the assignments
// sorted by group and by time block.
func Write(path string, result *scheduler.Result, t *model.Tournament) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeGroupsSheet(f, result.Groups); err != nil {
		return err
	}
	if err := writeAssignmentSheets(f, result.Assignments, t); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteParsedPreferences writes the translated preference rows produced by
// the preference-parsing mode.
func WriteParsedPreferences(path string, preferences []model.Preference) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]interface{}, len(preferences))
	for i, pref := range preferences {
		rows[i] = []interface{}{pref.PlayerID, pref.TimeBlockID, pref.Score}
	}
	headers := []string{"player_id", "time_block_id", "preference"}
	if err := writeSheet(f, "parsed_preferences", headers, rows); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeGroupsSheet(f *excelize.File, groups []*model.Group) error {
	rows := make([][]interface{}, 0)
	for _, group := range groups {
		for _, player := range group.Players {
			seed := ""
			if player.Seed {
				seed = markFlag
			}
			rows = append(rows, []interface{}{group.Division, group.ID, player.Name, seed})
		}
	}
	return writeSheet(f, "groups", []string{"division_id", "group_id", "player", "seed"}, rows)
}

// assignmentRow is one line of the assignment sheets.
type assignmentRow struct {
	division      string
	groupID       string
	matchID       string
	player1       string
	player2       string
	courtID       string
	timeBlockID   string
	blockRanking  int
	preferredSlot string
	dummySlot     string
}

func writeAssignmentSheets(f *excelize.File, assignments []model.Assignment, t *model.Tournament) error {
	rows := make([]assignmentRow, 0, len(assignments))
	for _, assignment := range assignments {
		match, slot := assignment.Match, assignment.Slot

		dummy := ""
		if slot.IsDummy {
			dummy = markFlag
		}
		rows = append(rows, assignmentRow{
			division:      match.Division,
			groupID:       match.GroupID,
			matchID:       match.ID,
			player1:       match.Player1.Name,
			player2:       match.Player2.Name,
			courtID:       slot.CourtID,
			timeBlockID:   slot.TimeBlockID,
			blockRanking:  t.TimeBlockRanking[slot.TimeBlockID],
			preferredSlot: preferenceMarkers(match, slot.TimeBlockID),
			dummySlot:     dummy,
		})
	}

	byGroup := make([]assignmentRow, len(rows))
	copy(byGroup, rows)
	sort.SliceStable(byGroup, func(i, j int) bool {
		if byGroup[i].division != byGroup[j].division {
			return byGroup[i].division < byGroup[j].division
		}
		if byGroup[i].groupID != byGroup[j].groupID {
			return byGroup[i].groupID < byGroup[j].groupID
		}
		return byGroup[i].matchID < byGroup[j].matchID
	})

	byTimeBlock := make([]assignmentRow, len(rows))
	copy(byTimeBlock, rows)
	sort.SliceStable(byTimeBlock, func(i, j int) bool {
		if byTimeBlock[i].blockRanking != byTimeBlock[j].blockRanking {
			return byTimeBlock[i].blockRanking < byTimeBlock[j].blockRanking
		}
		return byTimeBlock[i].courtID < byTimeBlock[j].courtID
	})

	headers := []string{
		"division_id", "group_id", "match_id", "player1", "player2",
		"court_id", "time_block_id", "time_block_ranking", "preferred_slot", "dummy_slot",
	}
	if err := writeSheet(f, "matches_by_group", headers, assignmentCells(byGroup)); err != nil {
		return err
	}
	return writeSheet(f, "matches_by_time_block", headers, assignmentCells(byTimeBlock))
}

func assignmentCells(rows []assignmentRow) [][]interface{} {
	cells := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells[i] = []interface{}{
			row.division, row.groupID, row.matchID, row.player1, row.player2,
			row.courtID, row.timeBlockID, row.blockRanking, row.preferredSlot, row.dummySlot,
		}
	}
	return cells
}

// preferenceMarkers renders both players' declared preferences for the
// assigned time block, player1 markers on the left of the bar and player2
// markers on the right.
func preferenceMarkers(match *model.Match, timeBlockID string) string {
	markers := ""
	for _, pref := range match.Player1.Preferences {
		if pref.TimeBlockID != timeBlockID {
			continue
		}
		markers += scoreMarker(pref.Score) + "|"
	}
	for _, pref := range match.Player2.Preferences {
		if pref.TimeBlockID != timeBlockID {
			continue
		}
		markers += "|" + scoreMarker(pref.Score)
	}
	return markers
}

func scoreMarker(score int) string {
	switch {
	case score > 0:
		return markPreferred
	case score < 0:
		return markUndesired
	}
	return markIndifferent
}

// writeSheet creates a sheet and fills it with a header row plus data rows.
func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to name header cell: %w", err)
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to name cell: %w", err)
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("failed to write sheet %q row %d: %w", name, rowIdx+2, err)
			}
		}
	}
	return nil
}
