// Package srs implements the SM-2 spaced repetition schedule used for problem reviews.
package srs

import (
	"errors"
	"math"
)

// Recall quality bounds. Anything below PassingQuality resets the interval.
const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

var ErrQualityOutOfRange = errors.New("quality score must be an integer between 0 and 5")

// ValidateQuality checks that q is a recall grade in [0, 5].
func ValidateQuality(q int) error {
	if q < MinQuality || q > MaxQuality {
		return ErrQualityOutOfRange
	}
	return nil
}

// ComputeNextSchedule returns the ease factor and interval in days that follow
// a review graded with quality. attemptNumber is the 1-based count of the
// review being recorded; prevInterval is the interval scheduled by the prior one.
//
// The caller must validate quality first.
func ComputeNextSchedule(prevEase float64, prevInterval, attemptNumber, quality int) (float64, int) {
	miss := float64(MaxQuality - quality)
	ease := prevEase + (0.1 - miss*(0.08+miss*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	var interval int
	switch {
	case quality < PassingQuality:
		interval = 1
	case attemptNumber == 1:
		interval = 1
	case attemptNumber == 2:
		interval = 6
	default:
		interval = int(math.Round(float64(prevInterval) * ease))
	}
	return ease, interval
}
