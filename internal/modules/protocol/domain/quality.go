package domain

const (
	MinCompressionRate  = 100
	MaxCompressionRate  = 120
	MinCompressionDepth = 5.0
	MaxCompressionDepth = 6.0
)

type QualityFeedback struct {
	RateOK   bool
	DepthOK  bool
	Messages []string
}

func (q QualityFeedback) OK() bool { return q.RateOK && q.DepthOK }

// CheckCPRQuality compares a compression rate (per minute) and depth (cm)
// against the adult targets. A zero depth is treated as not measured.
func CheckCPRQuality(rate int, depthCm float64) QualityFeedback {
	fb := QualityFeedback{RateOK: true, DepthOK: true}
	switch {
	case rate < MinCompressionRate:
		fb.RateOK = false
		fb.Messages = append(fb.Messages, "compressions too slow, push 100-120/min")
	case rate > MaxCompressionRate:
		fb.RateOK = false
		fb.Messages = append(fb.Messages, "compressions too fast, slow to 100-120/min")
	}
	if depthCm > 0 {
		switch {
		case depthCm < MinCompressionDepth:
			fb.DepthOK = false
			fb.Messages = append(fb.Messages, "compressions too shallow, push 5-6 cm")
		case depthCm > MaxCompressionDepth:
			fb.DepthOK = false
			fb.Messages = append(fb.Messages, "compressions too deep, keep 5-6 cm")
		}
	}
	return fb
}
