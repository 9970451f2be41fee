package core

import (
	"errors"
	"fmt"
)

// RaiseBand applies Increment to every price strictly below Below.
type RaiseBand struct {
	Below     float64 `json:"below" mapstructure:"below"`
	Increment float64 `json:"increment" mapstructure:"increment"`
}

// RaiseSchedule maps a current price to the minimum normal increment.
// Bands are evaluated in ascending order and the first match wins; prices at or
// above the last threshold use Default.
type RaiseSchedule struct {
	Bands   []RaiseBand `json:"bands" mapstructure:"bands"`
	Default float64     `json:"default" mapstructure:"default"`
}

// DefaultRaiseSchedule returns the league's standard increments:
// 0.10 below 2.0, 0.25 below 20.0 and 0.50 above that.
func DefaultRaiseSchedule() RaiseSchedule {
	return RaiseSchedule{
		Bands: []RaiseBand{
			{Below: 2.0, Increment: 0.10},
			{Below: 20.0, Increment: 0.25},
		},
		Default: 0.50,
	}
}

// MinimumRaise returns the minimum normal increment at currentPrice.
func (s RaiseSchedule) MinimumRaise(currentPrice float64) float64 {
	for _, band := range s.Bands {
		if MoneyCmp(currentPrice, band.Below) < 0 {
			return band.Increment
		}
	}
	return s.Default
}

// Validate reports configuration errors: unordered thresholds and
// non-positive increments.
func (s RaiseSchedule) Validate() error {
	var errs []error
	if s.Default <= 0 {
		errs = append(errs, fmt.Errorf("default increment must be positive, got %.4f", s.Default))
	}
	for i, band := range s.Bands {
		if band.Increment <= 0 {
			errs = append(errs, fmt.Errorf("band %d: increment must be positive, got %.4f", i, band.Increment))
		}
		if i > 0 && band.Below <= s.Bands[i-1].Below {
			errs = append(errs, fmt.Errorf("band %d: threshold %.4f is not above %.4f", i, band.Below, s.Bands[i-1].Below))
		}
	}
	return errors.Join(errs...)
}
