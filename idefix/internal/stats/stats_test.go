package stats

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/loxasys/asterix/specmodel"
)

func TestRecordTallies(t *testing.T) {
	s := NewMessageStats()
	s.Record(specmodel.CategoryID(48), true)
	s.Record(specmodel.CategoryID(48), false)
	s.Record(specmodel.CategoryID(21), true)

	if s.Total != 3 {
		t.Errorf("got Total %d, want 3", s.Total)
	}
	if s.BadFormat != 1 {
		t.Errorf("got BadFormat %d, want 1", s.BadFormat)
	}
	if s.perCat[specmodel.CategoryID(48)] != 2 {
		t.Errorf("got cat48 count %d, want 2", s.perCat[specmodel.CategoryID(48)])
	}
}

func TestLogStatsSilentWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewMessageStats().LogStats(logger, true)
	if buf.Len() != 0 {
		t.Errorf("expected no output for zero records, got %q", buf.String())
	}
}

func TestLogStatsEmitsOnRecordedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewMessageStats()
	s.Record(specmodel.CategoryID(48), true)
	s.LogStats(logger, true)
	if buf.Len() == 0 {
		t.Error("expected log output once a record was tallied")
	}
}
