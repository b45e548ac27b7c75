package quiz

import "testing"

func TestGrade_Boundaries(t *testing.T) {
	tests := []struct {
		score, total int
		wantPct      int
		wantBand     Band
	}{
		{10, 10, 100, BandExcellent},
		{8, 10, 80, BandExcellent},
		{7, 10, 70, BandGoodWork},
		{6, 10, 60, BandGoodWork},
		{5, 10, 50, BandKeepPractising},
		{0, 10, 0, BandKeepPractising},
		{0, 0, 0, BandKeepPractising},
		{3, 4, 75, BandGoodWork},
	}

	for _, tt := range tests {
		got := Grade(tt.score, tt.total)
		if got.Percentage != tt.wantPct || got.Band != tt.wantBand {
			t.Errorf("Grade(%d, %d) = %d%% %q, want %d%% %q",
				tt.score, tt.total, got.Percentage, got.Band, tt.wantPct, tt.wantBand)
		}
	}
}

func TestPercentage_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{1, 8, 13},  // 12.5
		{3, 8, 38},  // 37.5
		{1, 3, 33},  // 33.33
		{2, 3, 67},  // 66.67
		{1, 200, 1}, // 0.5
		{0, 5, 0},
		{5, 5, 100},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := Percentage(tt.part, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestGrade_NearBoundaryRounding(t *testing.T) {
	// 79.5% rounds to 80 and therefore grades Excellent.
	if got := Grade(159, 200); got.Percentage != 80 || got.Band != BandExcellent {
		t.Errorf("Grade(159, 200) = %+v, want 80%% Excellent", got)
	}
	// 59.4% rounds to 59.
	if got := Grade(297, 500); got.Percentage != 59 || got.Band != BandKeepPractising {
		t.Errorf("Grade(297, 500) = %+v, want 59%% Keep Practising", got)
	}
}
