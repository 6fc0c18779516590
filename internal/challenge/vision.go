package challenge

const (
	// ColorPlateCount is the number of pseudoisochromatic plates shown in the
	// color vision stage.
	ColorPlateCount = 4
	// AcuityLineCount is the number of acuity levels in the visual acuity
	// stage.
	AcuityLineCount = 7
)

// ColorBlindnessProbability is the ratio of missed plates to plates shown.
// The arithmetic is fixed: downstream consumers depend on this exact scale.
func ColorBlindnessProbability(wrongPlates int) float64 {
	return clampRatio(float64(wrongPlates) / float64(ColorPlateCount))
}

// VisionLossProbability maps the highest acuity line passed (0 = none,
// AcuityLineCount = all) to a probability on the same fixed ratio scale.
func VisionLossProbability(highestLinePassed int) float64 {
	return clampRatio(float64(AcuityLineCount-highestLinePassed) / float64(AcuityLineCount))
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
