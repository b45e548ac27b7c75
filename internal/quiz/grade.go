package quiz

// Band is the qualitative tier of a finished quiz.
type Band string

const (
	BandExcellent      Band = "Excellent"
	BandGoodWork       Band = "Good Work"
	BandKeepPractising Band = "Keep Practising"
)

// Outcome summarises a completed session.
type Outcome struct {
	Score      int  `json:"score"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Band       Band `json:"band"`
}

// Grade computes the percentage and band for score out of total.
func Grade(score, total int) Outcome {
	pct := Percentage(score, total)
	band := BandKeepPractising
	switch {
	case pct >= 80:
		band = BandExcellent
	case pct >= 60:
		band = BandGoodWork
	}
	return Outcome{Score: score, Total: total, Percentage: pct, Band: band}
}

// Percentage returns 100*part/total rounded half up, or 0 when total is not positive.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
