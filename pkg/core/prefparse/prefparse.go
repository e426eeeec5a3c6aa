// Package prefparse translates raw form-response rows into the
// (player, time block, score) preference format the scheduler consumes.
package prefparse

import (
	"fmt"
	"sort"

	"github.com/dmerida/courtplan/pkg/core/model"
)

// Translation maps the raw form layout onto scheduling time blocks. It is
// supplied through the configuration file since the raw column labels and
// answer wording change per tournament.
type Translation struct {
	// TimeBlocks maps a raw response column to the scheduling time blocks
	// that column covers.
	TimeBlocks map[string][]string `yaml:"timeBlocks"`

	// Scores maps a raw answer label to a preference score. Labels not in
	// the map translate to neutral 0.
	Scores map[string]int `yaml:"scores"`
}

// Columns carried over from the raw sheet without translation.
const (
	columnPlayerID = "player_id"
	columnName     = "name"
)

// Parse expands each raw response row into one preference per covered time
// block. A response column with no time block mapping fails fast. Rows and
// columns are processed in deterministic order.
func Parse(raw []map[string]string, translation Translation) ([]model.Preference, error) {
	preferences := make([]model.Preference, 0)

	for i, record := range raw {
		playerID := record[columnPlayerID]
		if playerID == "" {
			return nil, fmt.Errorf("raw preference row %d: missing required field %q", i+2, columnPlayerID)
		}

		columns := make([]string, 0, len(record))
		for column := range record {
			if column == columnPlayerID || column == columnName {
				continue
			}
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			timeBlocks, ok := translation.TimeBlocks[column]
			if !ok {
				return nil, fmt.Errorf("raw preference row %d: no time block mapping for column %q", i+2, column)
			}

			// Unknown answer labels are treated as indifferent.
			score := translation.Scores[record[column]]

			for _, timeBlockID := range timeBlocks {
				preferences = append(preferences, model.Preference{
					PlayerID:    playerID,
					TimeBlockID: timeBlockID,
					Score:       score,
				})
			}
		}
	}

	return preferences, nil
}
