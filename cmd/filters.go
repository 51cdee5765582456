package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/storage"
)

// filterFlags are the match filters shared by the report commands.
type filterFlags struct {
	since int
	until int
	event string
	venue string
	teams string
	team  string
	vs    string
	limit int
}

func (f *filterFlags) addYears(cmd *cobra.Command, defaultSince int) {
	cmd.Flags().IntVar(&f.since, "since", defaultSince, "first year to include (0 = all)")
	cmd.Flags().IntVar(&f.until, "until", 0, "last year to include (0 = all)")
}

func (f *filterFlags) addEvent(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.event, "event", "", "only matches of this event, e.g. \"ICC Men's T20 World Cup\"")
}

func (f *filterFlags) filter() storage.Filter {
	return storage.Filter{
		SinceYear: f.since,
		UntilYear: f.until,
		Event:     f.event,
		Venue:     f.venue,
		Teams:     splitList(f.teams),
		Team:      f.team,
		Opponent:  f.vs,
		Limit:     f.limit,
	}
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
