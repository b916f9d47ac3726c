// Package emotion classifies smoothed face parameters into a primary emotion
// with valence and arousal, and keeps a short history for trend queries.
package emotion

// Primary is the dominant emotion label of a frame.
type Primary string

const (
	Neutral   Primary = "neutral"
	Happy     Primary = "happy"
	Sad       Primary = "sad"
	Surprised Primary = "surprised"
	Angry     Primary = "angry"

	// Fearful and Disgusted are part of the vocabulary but no rule produces them.
	Fearful   Primary = "fearful"
	Disgusted Primary = "disgusted"
)

// Secondary tags.
const (
	Frustrated = "frustrated"
	Curious    = "curious"
	Engaged    = "engaged"
)

// Secondary is an additional emotion tag with its confidence.
type Secondary struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Data is the per-frame emotion estimate.
type Data struct {
	Primary    Primary     `json:"primary"`
	Confidence float64     `json:"confidence"`
	Valence    float64     `json:"valence"` // -1 unpleasant .. 1 pleasant
	Arousal    float64     `json:"arousal"` // 0 calm .. 1 excited
	Secondary  []Secondary `json:"secondary_emotions,omitempty"`
}

// Default is the estimate reported without a face.
func Default() Data {
	return Data{Primary: Neutral, Arousal: 0.4}
}

// Trend describes how valence moved across the retained history.
type Trend string

const (
	Improving Trend = "improving"
	Stable    Trend = "stable"
	Declining Trend = "declining"
)
