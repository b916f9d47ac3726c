package emotion

import "github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"

// Feature thresholds on smoothed face parameters.
const (
	SmileWidth    = 0.6
	OpenMouth     = 0.3
	RaisedBrows   = 0.6
	FurrowedBrows = 0.35
	WideEyes      = 0.85
	SquintedEyes  = 0.5
)

// Happy valence starts at HappyValence and grows with smile intensity above
// SmileWidth.
const (
	HappyValence      = 0.7
	SmileValenceScale = 0.5
)

// features are the boolean cues the rules read.
type features struct {
	smile    bool
	open     bool
	raised   bool
	furrowed bool
	wide     bool
	squinted bool
}

func extract(d face.Data) features {
	brows := d.AvgEyebrowRaise()
	eyes := d.AvgEyeOpenness()
	return features{
		smile:    d.MouthWidth > SmileWidth,
		open:     d.MouthOpenness > OpenMouth,
		raised:   brows > RaisedBrows,
		furrowed: brows < FurrowedBrows,
		wide:     eyes > WideEyes,
		squinted: eyes < SquintedEyes,
	}
}

// Classify maps one smoothed frame to an emotion. Rules are checked in a
// fixed order and the first match wins: happy, surprised, angry, sad, then
// neutral.
func Classify(d face.Data) Data {
	if !d.FaceDetected {
		return Default()
	}

	f := extract(d)
	out := Data{Confidence: d.Confidence}

	switch {
	case f.smile && !f.furrowed:
		out.Primary = Happy
		out.Valence = HappyValence + (d.MouthWidth-SmileWidth)*SmileValenceScale
		out.Arousal = 0.6
	case f.raised && f.open && f.wide:
		out.Primary = Surprised
		out.Valence = 0.1
		out.Arousal = 0.9
	case f.furrowed && !f.smile:
		out.Primary = Angry
		out.Valence = -0.6
		out.Arousal = 0.7
		out.Secondary = append(out.Secondary, Secondary{Label: Frustrated, Confidence: 0.5})
	case !f.smile && !f.raised && f.squinted:
		out.Primary = Sad
		out.Valence = -0.5
		out.Arousal = 0.3
	default:
		out.Primary = Neutral
		out.Arousal = 0.4
		if d.IsSmiling {
			out.Valence = 0.2
		}
		if d.IsTalking {
			out.Arousal = 0.6
		}
		if f.raised {
			out.Secondary = append(out.Secondary, Secondary{Label: Curious, Confidence: 0.4})
		}
		if d.IsTalking {
			out.Secondary = append(out.Secondary, Secondary{Label: Engaged, Confidence: 0.6})
		}
	}

	out.Valence = clamp(out.Valence, -1, 1)
	out.Arousal = clamp(out.Arousal, 0, 1)
	out.Confidence = clamp(out.Confidence, 0, 1)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
