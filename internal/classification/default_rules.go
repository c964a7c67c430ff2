package classification

import "github.com/Veraticus/punchclock/internal/model"

// Thresholds holds the hour limits used by the default plausibility rules.
type Thresholds struct {
	NightStartAfter  int // check-in hour strictly after this looks like a night shift
	NightEndBefore   int // check-out hour strictly before this looks like the next morning
	EarlyStartBefore int // check-in hour strictly before this is implausibly early
}

// DefaultThresholds are tuned for retail opening hours.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NightStartAfter:  18,
		NightEndBefore:   12,
		EarlyStartBefore: 6,
	}
}

// DefaultRules returns the built-in plausibility rules for the given thresholds.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		{
			Reason:   model.ReasonNightShiftSplit,
			Priority: 100,
			Check: func(in, out model.ClockTime) bool {
				return in.Hour() > th.NightStartAfter && out.Hour() < th.NightEndBefore
			},
		},
		{
			Reason:      model.ReasonInvertedOrder,
			Priority:    90,
			ExplainedBy: []model.AmbiguityReason{model.ReasonNightShiftSplit},
			Check: func(in, out model.ClockTime) bool {
				return in.Hour() > out.Hour()
			},
		},
		{
			Reason:   model.ReasonEarlyStart,
			Priority: 80,
			Check: func(in, _ model.ClockTime) bool {
				return in.Hour() < th.EarlyStartBefore
			},
		},
	}
}
