// facesignal-replay runs a JSON-lines landmark recording through the signal
// pipeline and prints the derived signals of every frame.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/emotion"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/gesture"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
)

type options struct {
	frameRate float64
	quiet     bool
	tuning    face.Tuning
}

// Summary describes a finished replay.
type Summary struct {
	Frames          int               `json:"frames"`
	FramesWithFace  int               `json:"frames_with_face"`
	Rejected        int               `json:"rejected"`
	Topology        string            `json:"topology,omitempty"`
	Blinks          int               `json:"blinks"`
	DominantEmotion emotion.Primary   `json:"dominant_emotion"`
	Trend           emotion.Trend     `json:"trend"`
	Gestures        []gesture.Gesture `json:"recent_gestures,omitempty"`
	SessionDuration float64           `json:"session_duration"`
}

func main() {
	fs := pflag.NewFlagSet("facesignal-replay", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: facesignal-replay [flags] [recording.jsonl]")
		fs.PrintDefaults()
	}

	var opts options
	opts.tuning = face.DefaultTuning()
	fs.Float64Var(&opts.frameRate, "fps", session.DefaultFrameRate, "Frame rate assumed for frames without timestamps")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Print only the summary")
	fs.Float64Var(&opts.tuning.SmoothingFactor, "smoothing", opts.tuning.SmoothingFactor, "EMA smoothing factor (0, 1]")
	fs.Float64Var(&opts.tuning.BlinkThreshold, "blink-threshold", opts.tuning.BlinkThreshold, "Eye openness below which a blink registers")
	fs.DurationVar(&opts.tuning.BlinkDebounce, "blink-debounce", opts.tuning.BlinkDebounce, "Minimum gap between blinks")
	logLevel := fs.String("log-level", "warn", "Log level")
	_ = fs.Parse(os.Args[1:])

	log.Init(*logLevel, "text")

	in := io.Reader(os.Stdin)
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "facesignal-replay: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sum, err := replay(ctx, in, os.Stdout, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "facesignal-replay: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sum)
}

// replay processes every frame of r and writes one JSON signals record per
// frame to w. The topology is taken from the first frame with a face.
func replay(ctx context.Context, r io.Reader, w io.Writer, opts options) (Summary, error) {
	if err := opts.tuning.Validate(); err != nil {
		return Summary{}, err
	}
	if opts.frameRate <= 0 {
		return Summary{}, fmt.Errorf("fps must be positive, got %v", opts.frameRate)
	}

	logger := log.For("replay")
	interval := time.Duration(float64(time.Second) / opts.frameRate)
	start := time.Now()
	enc := json.NewEncoder(w)

	var (
		sum      Summary
		pipeline = session.NewPipeline(landmark.FaceMeshRefined, opts.tuning)
		resolved bool
		last     session.Signals
	)

	err := landmark.ReadFrames(r, func(f landmark.Frame) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := f.Time
		if now.IsZero() {
			now = start.Add(time.Duration(sum.Frames) * interval)
		}
		sum.Frames++

		if f.HasFace() && !resolved {
			t, ok := landmark.TopologyForSize(len(f.Points))
			if !ok {
				sum.Rejected++
				logger.Warn("frame rejected", "frame", sum.Frames, "points", len(f.Points))
				return nil
			}
			// Frames before the first face carry no state worth keeping.
			pipeline = session.NewPipeline(t, opts.tuning)
			sum.Topology = t.Name
			resolved = true
		}

		sig, err := pipeline.Process(f, now)
		if err != nil {
			sum.Rejected++
			logger.Warn("frame rejected", "frame", sum.Frames, "error", err)
			return nil
		}
		last = sig
		if sig.Face.FaceDetected {
			sum.FramesWithFace++
		}
		if opts.quiet {
			return nil
		}
		return enc.Encode(sig)
	})
	if err != nil {
		return sum, err
	}

	sum.Blinks = pipeline.Blinks()
	sum.DominantEmotion = pipeline.Dominant()
	sum.Trend = pipeline.Trend()
	sum.Gestures = pipeline.GestureHistory()
	sum.SessionDuration = last.Presence.SessionDuration
	return sum, nil
}
