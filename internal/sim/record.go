package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one leg of a train's journey: where and when it departed with
// which packages loaded, and where it next arrived with which packages
// unloaded. Arrival is empty while the leg is unfinished.
type Record struct {
	Time      int      `json:"time"`
	Train     string   `json:"train"`
	Departure string   `json:"departure"`
	Loaded    []string `json:"loaded"`
	Arrival   string   `json:"arrival"`
	Unloaded  []string `json:"unloaded"`
}

func (r Record) String() string {
	return fmt.Sprintf("W=%d, T=%s, N1=%s, P1=%s, N2=%s, P2=%s",
		r.Time, r.Train, r.Departure, quoteList(r.Loaded), r.Arrival, quoteList(r.Unloaded))
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// SortRecords orders records by time, keeping the input order on ties.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time < records[j].Time
	})
}
