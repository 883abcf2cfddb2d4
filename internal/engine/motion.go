package engine

import (
	"fmt"
	"math"
	"time"

	"task-petri-flow/internal/models"
)

const (
	// DefaultFrameInterval is the nominal frame period the easing factor is expressed in
	DefaultFrameInterval = time.Second / 60
	// DefaultEasing is the share of the remaining distance covered per frame
	DefaultEasing = 0.1
	// DefaultSnapThreshold is the distance under which a token snaps to its target
	DefaultSnapThreshold = 2.0
)

// MotionConfig controls how in-flight tokens approach their target
type MotionConfig struct {
	FrameInterval time.Duration `json:"frameInterval" yaml:"frame_interval"`
	Easing        float64       `json:"easing" yaml:"easing"`
	SnapThreshold float64       `json:"snapThreshold" yaml:"snap_threshold"`
}

// DefaultMotionConfig returns the standard 60 fps, 10% easing, 2 unit snap settings
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		FrameInterval: DefaultFrameInterval,
		Easing:        DefaultEasing,
		SnapThreshold: DefaultSnapThreshold,
	}
}

// Validate checks that the configuration describes a terminating motion
func (c MotionConfig) Validate() error {
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", c.FrameInterval)
	}
	if c.Easing <= 0 || c.Easing > 1 {
		return fmt.Errorf("easing must be in (0, 1], got %g", c.Easing)
	}
	if c.SnapThreshold < 0 {
		return fmt.Errorf("snap threshold must not be negative, got %g", c.SnapThreshold)
	}
	return nil
}

// StepFor converts an elapsed duration into a motion step. A tick of exactly
// one frame moves by Easing; other durations compound the per-frame decay so
// the trajectory does not depend on the tick rate. dt <= 0 counts as one frame.
func (c MotionConfig) StepFor(dt time.Duration) MotionStep {
	fraction := c.Easing
	if dt > 0 && dt != c.FrameInterval {
		frames := float64(dt) / float64(c.FrameInterval)
		fraction = 1 - math.Pow(1-c.Easing, frames)
	}
	if fraction > 1 {
		fraction = 1
	}
	return MotionStep{Fraction: fraction, SnapThreshold: c.SnapThreshold}
}

// MotionStep is one application of the exponential easing rule
type MotionStep struct {
	Fraction      float64
	SnapThreshold float64
}

// Apply moves an animating token toward its target. Once the remaining distance
// is within the threshold the token snaps onto the target and stops animating;
// Apply then reports true. Non-animating tokens are left untouched.
func (s MotionStep) Apply(t *models.Token) bool {
	if !t.IsAnimating {
		return false
	}
	if t.Position.DistanceTo(t.TargetPosition) > s.SnapThreshold {
		delta := t.TargetPosition.Sub(t.Position)
		t.Position = t.Position.Add(delta.Scale(s.Fraction))
		return false
	}
	t.Position = t.TargetPosition
	t.IsAnimating = false
	return true
}
