// Package spline joins waypoints with quintic Hermite splines and samples them densely enough for
// arc length resampling.
package spline

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/pathgen/spatialmath"
)

// tangentScale multiplies the chord length to get the magnitude of the endpoint tangents.
const tangentScale = 1.2

// maxDepth bounds subdivision of a single spline.
const maxDepth = 20

// QuinticHermite is a spline between two poses whose endpoint tangents follow the pose headings
// and whose endpoint second derivatives are zero.
type QuinticHermite struct {
	start, end   spatialmath.Pose2D
	p0, p1       r2.Point
	tan0, tan1   r2.Point
	rotationDiff float64
}

// NewQuinticHermite creates the spline from start to end.
func NewQuinticHermite(start, end spatialmath.Pose2D) *QuinticHermite {
	scale := tangentScale * spatialmath.Distance(start, end)
	return &QuinticHermite{
		start:        start,
		end:          end,
		p0:           start.Position,
		p1:           end.Position,
		tan0:         r2.Point{X: math.Cos(start.Heading), Y: math.Sin(start.Heading)}.Mul(scale),
		tan1:         r2.Point{X: math.Cos(end.Heading), Y: math.Sin(end.Heading)}.Mul(scale),
		rotationDiff: spatialmath.AngleDiff(start.Rotation, end.Rotation),
	}
}

// Point returns the position at parameter t in [0, 1].
func (s *QuinticHermite) Point(t float64) r2.Point {
	t3 := t * t * t
	t4 := t3 * t
	t5 := t4 * t
	h0 := 1 - 10*t3 + 15*t4 - 6*t5
	h1 := t - 6*t3 + 8*t4 - 3*t5
	h4 := -4*t3 + 7*t4 - 3*t5
	h5 := 10*t3 - 15*t4 + 6*t5
	return s.p0.Mul(h0).Add(s.tan0.Mul(h1)).Add(s.tan1.Mul(h4)).Add(s.p1.Mul(h5))
}

// Velocity returns the derivative of Point with respect to t.
func (s *QuinticHermite) Velocity(t float64) r2.Point {
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	dh0 := -30*t2 + 60*t3 - 30*t4
	dh1 := 1 - 18*t2 + 32*t3 - 15*t4
	dh4 := -12*t2 + 28*t3 - 15*t4
	dh5 := 30*t2 - 60*t3 + 30*t4
	return s.p0.Mul(dh0).Add(s.tan0.Mul(dh1)).Add(s.tan1.Mul(dh4)).Add(s.p1.Mul(dh5))
}

// Heading returns the direction of travel at t. Where the spline has no direction the heading is
// interpolated between the endpoint headings.
func (s *QuinticHermite) Heading(t float64) float64 {
	v := s.Velocity(t)
	if v.Norm() < 1e-12 {
		return spatialmath.NormalizeAngle(s.start.Heading + spatialmath.AngleDiff(s.start.Heading, s.end.Heading)*t)
	}
	return math.Atan2(v.Y, v.X)
}

// Pose returns the pose at t. Rotation is interpolated by parameter.
func (s *QuinticHermite) Pose(t float64) spatialmath.Pose2D {
	return spatialmath.Pose2D{
		Position: s.Point(t),
		Heading:  s.Heading(t),
		Rotation: spatialmath.NormalizeAngle(s.start.Rotation + s.rotationDiff*t),
	}
}

// Limits bound the change between consecutive samples, measured in the frame of the earlier one.
type Limits struct {
	MaxDx     float64
	MaxDy     float64
	MaxDTheta float64
}

func (l Limits) validate() error {
	if !(l.MaxDx > 0) || !(l.MaxDy > 0) || !(l.MaxDTheta > 0) {
		return errors.Errorf("spline sampling limits must be positive, got %+v", l)
	}
	return nil
}

// Within returns whether moving from a to b stays inside the limits.
func (l Limits) Within(a, b spatialmath.Pose2D) bool {
	d := b.Position.Sub(a.Position)
	sin, cos := math.Sincos(a.Heading)
	dx := d.X*cos + d.Y*sin
	dy := -d.X*sin + d.Y*cos
	dTheta := spatialmath.AngleDiff(a.Heading, b.Heading)
	return math.Abs(dx) <= l.MaxDx && math.Abs(dy) <= l.MaxDy && math.Abs(dTheta) <= l.MaxDTheta
}

// Sample joins consecutive waypoints with splines and returns poses along them. The first pose is
// the first waypoint and each spline contributes poses up to and including its end. Coincident
// consecutive waypoints contribute only the later waypoint.
func Sample(waypoints []spatialmath.Pose2D, limits Limits) ([]spatialmath.Pose2D, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}
	if len(waypoints) == 0 {
		return nil, nil
	}
	poses := []spatialmath.Pose2D{waypoints[0]}
	for i := 1; i < len(waypoints); i++ {
		if spatialmath.Distance(waypoints[i-1], waypoints[i]) < 1e-9 {
			poses = append(poses, waypoints[i])
			continue
		}
		s := NewQuinticHermite(waypoints[i-1], waypoints[i])
		poses = s.subdivide(poses, 0, 1, s.Pose(0), s.Pose(1), limits, 0)
	}
	return poses, nil
}

// subdivide appends the samples of (t0, t1] to poses.
func (s *QuinticHermite) subdivide(
	poses []spatialmath.Pose2D,
	t0, t1 float64,
	p0, p1 spatialmath.Pose2D,
	limits Limits,
	depth int,
) []spatialmath.Pose2D {
	if depth >= maxDepth || limits.Within(p0, p1) {
		return append(poses, p1)
	}
	mid := (t0 + t1) / 2
	pm := s.Pose(mid)
	poses = s.subdivide(poses, t0, mid, p0, pm, limits, depth+1)
	return s.subdivide(poses, mid, t1, pm, p1, limits, depth+1)
}
