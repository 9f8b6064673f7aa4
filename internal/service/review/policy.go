package review

import (
	"time"

	"github.com/semenovdl/recallbot/internal/domain"
)

// Policy holds the interval growth factors and bounds. Pure value, copied
// from configuration at startup.
type Policy struct {
	MinInterval time.Duration
	MaxInterval time.Duration
	HardFactor  float64
	GoodFactor  float64
	EasyFactor  float64
}

// Schedule is the result of a scheduling calculation.
type Schedule struct {
	Interval  time.Duration
	NextDueAt time.Time
}

// InitialSchedule returns the schedule for a freshly registered card: the
// minimum interval, counted from now.
func InitialSchedule(p Policy, now time.Time) Schedule {
	return Schedule{
		Interval:  p.MinInterval,
		NextDueAt: now.Add(p.MinInterval),
	}
}

// NextSchedule is a pure function. No DB, no context, no randomness: the
// same inputs always produce the same schedule.
//
// AGAIN resets the interval to the minimum. Every other outcome multiplies
// the current interval by its factor and clamps to [MinInterval, MaxInterval],
// so a non-AGAIN review never shortens the interval.
func NextSchedule(p Policy, current time.Duration, outcome domain.ReviewOutcome, now time.Time) Schedule {
	if outcome == domain.ReviewOutcomeAgain {
		return Schedule{
			Interval:  p.MinInterval,
			NextDueAt: now.Add(p.MinInterval),
		}
	}

	next := time.Duration(float64(current) * factorFor(p, outcome))

	if next < current {
		next = current
	}
	if next < p.MinInterval {
		next = p.MinInterval
	}
	if next > p.MaxInterval {
		next = p.MaxInterval
	}

	return Schedule{
		Interval:  next,
		NextDueAt: now.Add(next),
	}
}

func factorFor(p Policy, outcome domain.ReviewOutcome) float64 {
	switch outcome {
	case domain.ReviewOutcomeHard:
		return p.HardFactor
	case domain.ReviewOutcomeEasy:
		return p.EasyFactor
	default:
		return p.GoodFactor
	}
}
