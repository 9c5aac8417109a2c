// internal/stats/stats.go
package stats

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/loxasys/asterix/specmodel"
)

// MessageStats tracks per-category record counts across a decode run, plus
// how many records came back with format_ok == false (spec.md §4.3.5).
type MessageStats struct {
	Total     int
	BadFormat int
	perCat    map[specmodel.CategoryID]int
	StartTime time.Time
}

// NewMessageStats creates a new MessageStats struct.
func NewMessageStats() *MessageStats {
	return &MessageStats{
		perCat:    make(map[specmodel.CategoryID]int),
		StartTime: time.Now(),
	}
}

// Record tallies one decoded record.
func (s *MessageStats) Record(cat specmodel.CategoryID, formatOK bool) {
	s.Total++
	s.perCat[cat]++
	if !formatOK {
		s.BadFormat++
	}
}

// LogStats logs current statistics.
func (s *MessageStats) LogStats(logger *slog.Logger, final bool) {
	if s.Total == 0 {
		return
	}

	duration := time.Since(s.StartTime)
	var rate float64
	if duration.Seconds() > 0 {
		rate = float64(s.Total) / duration.Seconds()
	}

	cats := make([]specmodel.CategoryID, 0, len(s.perCat))
	for id := range s.perCat {
		cats = append(cats, id)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	args := []any{
		"duration", duration.Round(time.Second).String(),
		"total_records", s.Total,
		"bad_format", s.BadFormat,
		"rate", fmt.Sprintf("%.1f rec/s", rate),
	}
	for _, id := range cats {
		args = append(args, id.String(), s.perCat[id])
	}

	if final {
		logger.Info("Final Statistics", args...)
	} else {
		logger.Info("Statistics", args...)
	}
}
