package audio

// Drift controller bounds. Inside the dead band the ratio is left alone;
// outside it the correction grows linearly to MaxAdjust at 0% or 100%.
const (
	DeadBandLow  = 0.30
	DeadBandHigh = 0.70
	MaxAdjust    = 0.02
)

// RateAdjust maps a buffer fill fraction to a resampling step multiplier.
// Below the dead band the result is < 1 (produce more output), above it
// the result is > 1 (produce less).
func RateAdjust(fill float64) float64 {
	switch {
	case fill < DeadBandLow:
		urgency := (DeadBandLow - fill) / DeadBandLow
		if urgency > 1 {
			urgency = 1
		}
		return 1 - urgency*MaxAdjust
	case fill > DeadBandHigh:
		urgency := (fill - DeadBandHigh) / (1 - DeadBandHigh)
		if urgency > 1 {
			urgency = 1
		}
		return 1 + urgency*MaxAdjust
	}
	return 1
}
