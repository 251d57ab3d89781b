package storage

import (
	"testing"
	"time"

	"media-etl/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPartitionFor(t *testing.T) {
	tests := []struct {
		month    time.Time
		wantName string
		wantFrom string
		wantTo   string
	}{
		{date(2025, time.March, 1), "user_interactions_2025_03", "2025-03-01", "2025-04-01"},
		{date(2025, time.December, 1), "user_interactions_2025_12", "2025-12-01", "2026-01-01"},
		{date(2024, time.January, 1), "user_interactions_2024_01", "2024-01-01", "2024-02-01"},
	}

	for _, tt := range tests {
		name, from, to := partitionFor(tt.month)
		if name != tt.wantName {
			t.Errorf("partitionFor(%v) name = %q; want %q", tt.month, name, tt.wantName)
		}
		if got := from.Format("2006-01-02"); got != tt.wantFrom {
			t.Errorf("partitionFor(%v) from = %s; want %s", tt.month, got, tt.wantFrom)
		}
		if got := to.Format("2006-01-02"); got != tt.wantTo {
			t.Errorf("partitionFor(%v) to = %s; want %s", tt.month, got, tt.wantTo)
		}
	}
}

func TestCoveredMonths(t *testing.T) {
	interactions := []*models.Interaction{
		{EventDate: date(2025, time.April, 2)},
		{EventDate: date(2025, time.March, 15)},
		{EventDate: date(2025, time.March, 31)},
		{EventDate: date(2025, time.April, 30)},
	}

	months := coveredMonths(interactions)
	if len(months) != 2 {
		t.Fatalf("expected 2 distinct months, got %d", len(months))
	}
	if !months[0].Equal(date(2025, time.March, 1)) || !months[1].Equal(date(2025, time.April, 1)) {
		t.Errorf("months = %v; want [2025-03-01, 2025-04-01] ascending", months)
	}
}

func TestCoveredMonthsEmpty(t *testing.T) {
	if months := coveredMonths(nil); len(months) != 0 {
		t.Errorf("expected no months for no data, got %v", months)
	}
}
