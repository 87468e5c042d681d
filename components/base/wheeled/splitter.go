// Package wheeled derives the wheel trajectories of a differential (tank) drive base.
package wheeled

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/trajectory"
)

// SplitTankDrive offsets every point of the center trajectory by half the track width to each
// side of its heading and differentiates the resulting wheel paths over the center's timestamps.
// Width must be in the same length units as the trajectory.
func SplitTankDrive(center *trajectory.Trajectory, width float64) (*trajectory.Trajectory, *trajectory.Trajectory, error) {
	if center == nil {
		return nil, nil, errors.New("cannot split a nil trajectory")
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, nil, errors.Errorf("track width must be positive, got %v", width)
	}

	n := center.Len()
	left := make([]trajectory.Point, n)
	right := make([]trajectory.Point, n)
	half := width / 2
	for i := 0; i < n; i++ {
		c := center.At(i)
		sin, cos := math.Sincos(c.Heading)
		offset := r2.Point{X: -half * sin, Y: half * cos}
		left[i] = wheelPoint(c, c.Pose2D.Position.Add(offset))
		right[i] = wheelPoint(c, c.Pose2D.Position.Sub(offset))
	}
	differentiateWheel(center, left)
	differentiateWheel(center, right)
	return trajectory.New(trajectory.Left, left), trajectory.New(trajectory.Right, right), nil
}

func wheelPoint(center trajectory.Point, pos r2.Point) trajectory.Point {
	return trajectory.Point{
		Pose2D: spatialmath.Pose2D{Position: pos, Heading: center.Heading, Rotation: center.Rotation},
		Time:   center.Time,
	}
}

// differentiateWheel fills position, velocity, acceleration, jerk and curvature from the wheel's
// positions and timestamps. The wheel velocity is the center velocity scaled by how far the wheel
// moved relative to the center over the same interval, so short or uneven intervals keep the
// wheel consistent with the center. A wheel that moves while the center does not falls back to
// its own distance over time.
func differentiateWheel(center *trajectory.Trajectory, points []trajectory.Point) {
	for i := 1; i < len(points); i++ {
		prev := &points[i-1]
		p := &points[i]
		ds := spatialmath.Distance(prev.Pose2D, p.Pose2D)
		p.Position = prev.Position + ds
		dt := p.Time - prev.Time
		if dt <= 0 {
			continue
		}
		c := center.At(i)
		centerDs := spatialmath.Distance(center.At(i-1).Pose2D, c.Pose2D)
		if centerDs > 0 {
			p.Velocity = c.Velocity * ds / centerDs
		} else {
			p.Velocity = ds / dt
		}
		p.Acceleration = (p.Velocity - prev.Velocity) / dt
		p.Jerk = (p.Acceleration - prev.Acceleration) / dt
	}
	for i := 1; i < len(points)-1; i++ {
		points[i].Curvature = spatialmath.Curvature(points[i-1].Pose2D, points[i].Pose2D, points[i+1].Pose2D)
	}
}
