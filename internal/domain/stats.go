package domain

// SessionStats accumulates realized profit and loss for the session.
// PeakPL and MaxDrawdown are monotonically non-decreasing; the engine
// updates all three fields as one atomic unit per realized leg.
type SessionStats struct {
	RealizedPL  float64 // signed accumulator over realized legs
	PeakPL      float64 // high-water mark of RealizedPL
	MaxDrawdown float64 // max observed (PeakPL - RealizedPL)
}

// Apply folds one realized leg into the stats.
func (s *SessionStats) Apply(profit float64) {
	s.RealizedPL += profit
	if s.RealizedPL > s.PeakPL {
		s.PeakPL = s.RealizedPL
	}
	if dd := s.PeakPL - s.RealizedPL; dd > s.MaxDrawdown {
		s.MaxDrawdown = dd
	}
}

// CooldownState throttles entries and reversals after a losing leg.
type CooldownState struct {
	Active    bool
	Remaining int // evaluation cycles left before trading resumes
}
