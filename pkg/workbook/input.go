// Package workbook loads tournament input from an xlsx workbook and writes
// the solved schedule back out.
package workbook

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/dmerida/courtplan/pkg/core/model"
)

// Sheet names expected in the input workbook.
const (
	sheetPlayers              = "players"
	sheetSlots                = "slots"
	sheetPlayerPreferences    = "player_preferences"
	sheetDivisionAvailability = "division_availability"
	sheetTimeBlockRanking     = "time_block_ranking"
	sheetPlayerDemands        = "player_demands"
	sheetRawPreferences       = "raw_preferences"
)

// Load reads and validates the input workbook. Missing required sheets or
// fields fail fast; no partial tournament is built. In parse-only mode just
// the raw_preferences sheet is read.
func Load(path string, parseOnly bool) (*model.Tournament, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if parseOnly {
		raw, err := sheetRecords(f, sheetRawPreferences)
		if err != nil {
			return nil, err
		}
		return &model.Tournament{RawPreferences: raw}, nil
	}

	t := &model.Tournament{
		PlayersByID:          make(map[string]*model.Player),
		PlayersByDivision:    make(map[string][]*model.Player),
		SlotsByTimeBlock:     make(map[string][]*model.Slot),
		DivisionAvailability: make(map[string][]string),
		TimeBlockRanking:     make(map[string]int),
		DemandsByPlayer:      make(map[string][]string),
	}

	if err := loadPlayers(f, t); err != nil {
		return nil, err
	}
	if err := loadSlots(f, t); err != nil {
		return nil, err
	}
	if err := loadPreferences(f, t); err != nil {
		return nil, err
	}
	if err := loadDivisionAvailability(f, t); err != nil {
		return nil, err
	}
	if err := loadTimeBlockRanking(f, t); err != nil {
		return nil, err
	}
	if err := loadPlayerDemands(f, t); err != nil {
		return nil, err
	}

	for _, player := range t.PlayersByID {
		player.IndexPreferences()
	}

	// The raw sheet is only needed for preference parsing; tolerate its
	// absence in solve mode.
	if raw, err := sheetRecords(f, sheetRawPreferences); err == nil {
		t.RawPreferences = raw
	}

	return t, nil
}

func loadPlayers(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetPlayers)
	if err != nil {
		return err
	}

	for i, record := range records {
		id, err := requireField(sheetPlayers, i, record, "player_id")
		if err != nil {
			return err
		}
		name, err := requireField(sheetPlayers, i, record, "name")
		if err != nil {
			return err
		}
		division, err := requireField(sheetPlayers, i, record, "division_id")
		if err != nil {
			return err
		}
		ranking, err := requireIntField(sheetPlayers, i, record, "ranking")
		if err != nil {
			return err
		}

		player := &model.Player{
			ID:       id,
			Name:     name,
			Division: division,
			Ranking:  ranking,
		}
		t.PlayersByID[player.ID] = player
		t.PlayersByDivision[player.Division] = append(t.PlayersByDivision[player.Division], player)
	}
	return nil
}

func loadSlots(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetSlots)
	if err != nil {
		return err
	}

	for i, record := range records {
		court, err := requireField(sheetSlots, i, record, "court_id")
		if err != nil {
			return err
		}
		timeBlock, err := requireField(sheetSlots, i, record, "time_block_id")
		if err != nil {
			return err
		}

		slot := &model.Slot{
			CourtID:     court,
			TimeBlockID: timeBlock,
			IsDummy:     record["is_dummy"] == "yes",
		}
		t.Slots = append(t.Slots, slot)
		t.SlotsByTimeBlock[slot.TimeBlockID] = append(t.SlotsByTimeBlock[slot.TimeBlockID], slot)
	}
	return nil
}

func loadPreferences(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetPlayerPreferences)
	if err != nil {
		return err
	}

	for i, record := range records {
		playerID, err := requireField(sheetPlayerPreferences, i, record, "player_id")
		if err != nil {
			return err
		}
		timeBlock, err := requireField(sheetPlayerPreferences, i, record, "time_block_id")
		if err != nil {
			return err
		}
		score, err := requireIntField(sheetPlayerPreferences, i, record, "preference")
		if err != nil {
			return err
		}

		player, ok := t.PlayersByID[playerID]
		if !ok {
			return fmt.Errorf("sheet %q row %d: unknown player %q", sheetPlayerPreferences, i+2, playerID)
		}
		player.Preferences = append(player.Preferences, model.Preference{
			PlayerID:    playerID,
			TimeBlockID: timeBlock,
			Score:       score,
		})
	}
	return nil
}

func loadDivisionAvailability(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetDivisionAvailability)
	if err != nil {
		return err
	}

	for i, record := range records {
		division, err := requireField(sheetDivisionAvailability, i, record, "division_id")
		if err != nil {
			return err
		}
		timeBlock, err := requireField(sheetDivisionAvailability, i, record, "time_block_id")
		if err != nil {
			return err
		}
		t.DivisionAvailability[division] = append(t.DivisionAvailability[division], timeBlock)
	}
	return nil
}

func loadTimeBlockRanking(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetTimeBlockRanking)
	if err != nil {
		return err
	}

	for i, record := range records {
		timeBlock, err := requireField(sheetTimeBlockRanking, i, record, "time_block_id")
		if err != nil {
			return err
		}
		ranking, err := requireIntField(sheetTimeBlockRanking, i, record, "ranking")
		if err != nil {
			return err
		}
		t.TimeBlockRanking[timeBlock] = ranking
	}
	return nil
}

func loadPlayerDemands(f *excelize.File, t *model.Tournament) error {
	records, err := sheetRecords(f, sheetPlayerDemands)
	if err != nil {
		return err
	}

	for i, record := range records {
		playerID, err := requireField(sheetPlayerDemands, i, record, "player_id")
		if err != nil {
			return err
		}
		timeBlock, err := requireField(sheetPlayerDemands, i, record, "time_block_id")
		if err != nil {
			return err
		}
		t.DemandsByPlayer[playerID] = append(t.DemandsByPlayer[playerID], timeBlock)
	}
	return nil
}

// sheetRecords reads a sheet into one map per data row, keyed by the header
// row. Fully empty rows are skipped.
func sheetRecords(f *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		empty := true
		for col, header := range headers {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			if value != "" {
				empty = false
			}
			record[header] = value
		}
		if !empty {
			records = append(records, record)
		}
	}
	return records, nil
}

// requireField returns the named field or a fail-fast error. Row numbers in
// errors are 1-based workbook rows, counting the header.
func requireField(sheet string, row int, record map[string]string, field string) (string, error) {
	value := record[field]
	if value == "" {
		return "", fmt.Errorf("sheet %q row %d: missing required field %q", sheet, row+2, field)
	}
	return value, nil
}

func requireIntField(sheet string, row int, record map[string]string, field string) (int, error) {
	raw, err := requireField(sheet, row, record, field)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("sheet %q row %d: field %q is not an integer: %w", sheet, row+2, field, err)
	}
	return value, nil
}
