package telemetry

import "math"

// TrajectoryPoint is one raw position inside a single gesture, annotated with
// instantaneous velocity (px/s) and acceleration (px/s²) against the previous
// point. The set of points lives only between pointer-down and resolution.
type TrajectoryPoint struct {
	X            float64
	Y            float64
	TMs          float64
	Velocity     float64
	Acceleration float64
}

// GestureMetrics are the derived motion features for one resolved gesture.
// For degenerate gestures (fewer than 2 points) the neutral defaults are
// straightness=1, smoothness=1, pathLength=0.
type GestureMetrics struct {
	PathLength       float64 `json:"pathLength"`
	StraightDistance float64 `json:"straightDistance"`
	Straightness     float64 `json:"straightness"`
	Smoothness       float64 `json:"smoothness"`
	Points           int     `json:"points"`
	Overshoots       int     `json:"overshoots"`
}

// Kinematics accumulates one gesture's trajectory and detects overshoots
// (approach-then-recede near an active target). All computation is
// synchronous and O(window size), performed at resolution, not per sample.
type Kinematics struct {
	cap            int
	proximityScale float64

	points []TrajectoryPoint

	// Sliding 3-sample window of distance to the nearest active target,
	// with the target radius observed alongside each distance.
	distWindow   []float64
	radiusWindow []float64
	overshoots   int
}

// NewKinematics creates an analyzer retaining at most cfg.TrajectoryCap
// points per gesture.
func NewKinematics(cfg Config) *Kinematics {
	cfg = cfg.Normalize()
	return &Kinematics{
		cap:            cfg.TrajectoryCap,
		proximityScale: cfg.ProximityScale,
	}
}

// AddPoint appends one raw position to the current gesture, deriving velocity
// from the previous point and acceleration from the previous velocity.
func (k *Kinematics) AddPoint(x, y, tMs float64) {
	p := TrajectoryPoint{X: x, Y: y, TMs: tMs}
	if n := len(k.points); n > 0 {
		prev := k.points[n-1]
		dtSec := (tMs - prev.TMs) / 1000
		if dtSec > 0 {
			dx := x - prev.X
			dy := y - prev.Y
			p.Velocity = math.Sqrt(dx*dx+dy*dy) / dtSec
			p.Acceleration = (p.Velocity - prev.Velocity) / dtSec
		}
	}
	k.points = append(k.points, p)
	if len(k.points) > k.cap {
		k.points = k.points[len(k.points)-k.cap:]
	}
}

// TrackProximity feeds one distance-to-nearest-active-target observation into
// the overshoot window. An overshoot is flagged when the distance was
// strictly decreasing then strictly increasing while the turning point was
// within the proximity threshold (ProximityScale × target radius); the window
// then resets so the same overshoot is not counted twice.
func (k *Kinematics) TrackProximity(dist, targetRadius float64) {
	k.distWindow = append(k.distWindow, dist)
	k.radiusWindow = append(k.radiusWindow, targetRadius)
	if len(k.distWindow) > 3 {
		k.distWindow = k.distWindow[1:]
		k.radiusWindow = k.radiusWindow[1:]
	}
	if len(k.distWindow) < 3 {
		return
	}

	d0, d1, d2 := k.distWindow[0], k.distWindow[1], k.distWindow[2]
	if d1 < d0 && d2 > d1 && d1 <= k.proximityScale*k.radiusWindow[1] {
		k.overshoots++
		k.distWindow = k.distWindow[:0]
		k.radiusWindow = k.radiusWindow[:0]
	}
}

// Resolve computes the gesture metrics and clears the trajectory, ready for
// the next gesture. The overshoot count is consumed along with the points.
func (k *Kinematics) Resolve() GestureMetrics {
	m := GestureMetrics{
		Straightness: 1,
		Smoothness:   1,
		Points:       len(k.points),
		Overshoots:   k.overshoots,
	}

	if len(k.points) >= 2 {
		m.PathLength = pathLength(k.points)
		first, last := k.points[0], k.points[len(k.points)-1]
		dx := last.X - first.X
		dy := last.Y - first.Y
		m.StraightDistance = math.Sqrt(dx*dx + dy*dy)
		if m.PathLength > 0 {
			m.Straightness = m.StraightDistance / m.PathLength
		}
		m.Smoothness = smoothness(k.points)
	}

	k.points = nil
	k.distWindow = k.distWindow[:0]
	k.radiusWindow = k.radiusWindow[:0]
	k.overshoots = 0
	return m
}

// PointCount returns the number of points in the current gesture.
func (k *Kinematics) PointCount() int {
	return len(k.points)
}

func pathLength(points []TrajectoryPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// smoothness is an inverse function of velocity variance: 1/(1+cv) where cv
// is the coefficient of variation of the per-point velocities. Higher
// variance means lower smoothness; zero average velocity maps to 1.
func smoothness(points []TrajectoryPoint) float64 {
	velocities := make([]float64, 0, len(points)-1)
	for _, p := range points[1:] {
		velocities = append(velocities, p.Velocity)
	}
	if len(velocities) < 2 {
		return 1
	}

	var sum float64
	for _, v := range velocities {
		sum += v
	}
	avg := sum / float64(len(velocities))
	if avg <= 0 {
		return 1
	}

	var variance float64
	for _, v := range velocities {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(velocities) - 1)

	cv := math.Sqrt(variance) / avg
	return 1 / (1 + cv)
}
