package handlers

import (
	"testing"

	"github.com/tzachyh/telescan/internal/config"
)

func TestScanReportAlwaysCarriesCounts(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Messages.ScanCompleteFmt = "נסרק. נוספו %d / %d פריטים. חלון: %s–%s."

	h := scanHandler{HandlerDeps{Config: cfg, Window: fixedWindow()}}

	tests := []struct {
		name         string
		added, total int64
		want         string
	}{
		{"empty index", 0, 0, "נסרק. נוספו 0 / 0 פריטים. חלון: 2025-01-01–2025-01-07."},
		{"new posts", 3, 12, "נסרק. נוספו 3 / 12 פריטים. חלון: 2025-01-01–2025-01-07."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := h.report(tt.added, tt.total); got != tt.want {
				t.Errorf("report(%d, %d) = %q, want %q", tt.added, tt.total, got, tt.want)
			}
		})
	}
}
