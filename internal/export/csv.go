package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pable/crickmetrics/internal/model"
)

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []model.InningsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("write csv row %s: %w", rows[i].ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	ID           string `json:"id"`
	Year         int    `json:"year"`
	Venue        string `json:"venue"`
	TeamA        string `json:"team_A"`
	TeamB        string `json:"team_B"`
	PPRuns       int    `json:"Runs_in_Powerplay"`
	PPWickets    int    `json:"Wickets_lost_in_Powerplay"`
	MidRuns      int    `json:"Runs_in_middle_overs"`
	MidWickets   int    `json:"Wickets_lost_in_middle_overs"`
	DeathRuns    int    `json:"Runs_in_Death_overs"`
	DeathWickets int    `json:"Wickets_lost_in_death_overs"`
	TotalRuns    int    `json:"Total_Score_A"`
	TotalWickets int    `json:"Total_Wicket_A"`
	City         string `json:"city"`
	Event        string `json:"event,omitempty"`
	TossWinner   string `json:"toss_winner"`
	TossDecision string `json:"toss_decision"`
	Winner       string `json:"winner"`
	MatchID      string `json:"match_id"`
	Innings      string `json:"innings_number"`
}

// WriteJSONLines writes one JSON object per row.
func WriteJSONLines(w io.Writer, rows []model.InningsRow) error {
	enc := json.NewEncoder(w)
	for i := range rows {
		r := &rows[i]
		err := enc.Encode(jsonRow{
			ID:           r.ID,
			Year:         r.Year,
			Venue:        r.Venue,
			TeamA:        r.BattingTeam,
			TeamB:        r.BowlingTeam,
			PPRuns:       r.Powerplay.Runs,
			PPWickets:    r.Powerplay.Wickets,
			MidRuns:      r.Middle.Runs,
			MidWickets:   r.Middle.Wickets,
			DeathRuns:    r.Death.Runs,
			DeathWickets: r.Death.Wickets,
			TotalRuns:    r.TotalRuns(),
			TotalWickets: r.TotalWickets(),
			City:         r.City,
			Event:        r.Event,
			TossWinner:   r.TossWinner,
			TossDecision: r.TossDecision,
			Winner:       r.Winner,
			MatchID:      r.MatchID,
			Innings:      r.Innings.Tag(),
		})
		if err != nil {
			return fmt.Errorf("encode row %s: %w", r.ID, err)
		}
	}
	return nil
}
