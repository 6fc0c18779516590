package telemetry

import (
	"math"
	"testing"
)

func TestKinematicsNeutralDefaults(t *testing.T) {
	k := NewKinematics(Config{})

	m := k.Resolve()
	if m.Straightness != 1 || m.Smoothness != 1 || m.PathLength != 0 {
		t.Fatalf("empty gesture should yield neutral defaults, got %+v", m)
	}

	k.AddPoint(10, 10, 0)
	m = k.Resolve()
	if m.Points != 1 {
		t.Fatalf("expected 1 point, got %d", m.Points)
	}
	if m.Straightness != 1 || m.Smoothness != 1 || m.PathLength != 0 {
		t.Fatalf("single-point gesture should yield neutral defaults, got %+v", m)
	}
}

func TestKinematicsStraightLine(t *testing.T) {
	k := NewKinematics(Config{})
	// Constant-velocity straight sweep.
	for i := 0; i <= 10; i++ {
		k.AddPoint(float64(i*10), 0, float64(i*16))
	}

	m := k.Resolve()
	if math.Abs(m.PathLength-100) > 1e-9 {
		t.Errorf("expected path length 100, got %v", m.PathLength)
	}
	if math.Abs(m.Straightness-1) > 1e-9 {
		t.Errorf("straight line should have straightness 1, got %v", m.Straightness)
	}
	if math.Abs(m.Smoothness-1) > 1e-9 {
		t.Errorf("constant velocity should have smoothness 1, got %v", m.Smoothness)
	}
}

func TestKinematicsStraightnessBounds(t *testing.T) {
	k := NewKinematics(Config{})
	// A zigzag path: far from straight, still bounded.
	points := [][2]float64{{0, 0}, {50, 40}, {10, 80}, {60, 10}, {20, 90}}
	for i, p := range points {
		k.AddPoint(p[0], p[1], float64(i*20))
	}

	m := k.Resolve()
	if m.Straightness < 0 || m.Straightness > 1+1e-9 {
		t.Fatalf("straightness out of bounds: %v", m.Straightness)
	}
	if m.Straightness > 0.9 {
		t.Errorf("zigzag path should not be near-straight, got %v", m.Straightness)
	}
	if m.Smoothness <= 0 || m.Smoothness > 1 {
		t.Errorf("smoothness out of (0,1]: %v", m.Smoothness)
	}
}

func TestKinematicsResolveClearsGesture(t *testing.T) {
	k := NewKinematics(Config{})
	k.AddPoint(0, 0, 0)
	k.AddPoint(10, 0, 16)
	k.Resolve()

	if k.PointCount() != 0 {
		t.Fatalf("expected trajectory cleared after resolve, got %d points", k.PointCount())
	}

	m := k.Resolve()
	if m.Points != 0 || m.Overshoots != 0 {
		t.Fatalf("second resolve should be neutral, got %+v", m)
	}
}

func TestKinematicsOvershootDetection(t *testing.T) {
	k := NewKinematics(Config{})
	radius := 20.0

	// Approach, pass the target, recede: strictly decreasing then strictly
	// increasing with the turning point inside 4x radius.
	for _, d := range []float64{120, 60, 30} {
		k.TrackProximity(d, radius)
	}

	m := k.Resolve()
	if m.Overshoots != 1 {
		t.Fatalf("expected 1 overshoot, got %d", m.Overshoots)
	}
}

func TestKinematicsNoOvershootOutsideProximity(t *testing.T) {
	k := NewKinematics(Config{})
	radius := 10.0

	// Turning point at 200px is far outside 4x radius (40px).
	for _, d := range []float64{300, 200, 250} {
		k.TrackProximity(d, radius)
	}

	if m := k.Resolve(); m.Overshoots != 0 {
		t.Fatalf("expected no overshoot outside proximity threshold, got %d", m.Overshoots)
	}
}

func TestKinematicsOvershootWindowResets(t *testing.T) {
	k := NewKinematics(Config{})
	radius := 20.0

	// One overshoot, then a monotone approach: the reset window must not
	// double-count the first pattern.
	for _, d := range []float64{100, 40, 70, 65, 60, 55} {
		k.TrackProximity(d, radius)
	}

	if m := k.Resolve(); m.Overshoots != 1 {
		t.Fatalf("expected exactly 1 overshoot after window reset, got %d", m.Overshoots)
	}
}
