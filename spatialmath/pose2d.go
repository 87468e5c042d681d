// Package spatialmath defines the planar poses used for path generation and the geometry
// operations on them.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/pathgen/utils"
)

// Pose2D is a position on the field together with the direction of travel (Heading) and an
// independent secondary rotation (Rotation), such as the facing of a swerve robot or a turret.
// Both angles are in radians.
type Pose2D struct {
	Position r2.Point
	Heading  float64
	Rotation float64
}

// NewPose2D creates a pose from a position and angles given in degrees.
func NewPose2D(x, y, headingDeg, rotationDeg float64) Pose2D {
	return Pose2D{
		Position: r2.Point{X: x, Y: y},
		Heading:  utils.DegToRad(headingDeg),
		Rotation: utils.DegToRad(rotationDeg),
	}
}

// X returns the x coordinate of the pose.
func (p Pose2D) X() float64 { return p.Position.X }

// Y returns the y coordinate of the pose.
func (p Pose2D) Y() float64 { return p.Position.Y }

func (p Pose2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f) heading %.2f° rotation %.2f°",
		p.Position.X, p.Position.Y, utils.RadToDeg(p.Heading), utils.RadToDeg(p.Rotation))
}

// Distance returns the euclidean distance between the positions of two poses.
func Distance(a, b Pose2D) float64 {
	return a.Position.Sub(b.Position).Norm()
}

// Interpolate returns the pose a fraction of the way from a to b. Headings and rotations take
// the shortest way around. by is clamped to [0, 1].
func Interpolate(a, b Pose2D, by float64) Pose2D {
	by = utils.Clamp(by, 0, 1)
	return Pose2D{
		Position: a.Position.Add(b.Position.Sub(a.Position).Mul(by)),
		Heading:  NormalizeAngle(a.Heading + AngleDiff(a.Heading, b.Heading)*by),
		Rotation: NormalizeAngle(a.Rotation + AngleDiff(a.Rotation, b.Rotation)*by),
	}
}

// NormalizeAngle wraps an angle in radians into (-pi, pi].
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	} else if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// AngleDiff returns the signed smallest rotation that takes from to to.
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// PoseAlmostEqual returns whether two poses are within epsilon of each other in position and angles.
func PoseAlmostEqual(a, b Pose2D, epsilon float64) bool {
	return Distance(a, b) < epsilon &&
		math.Abs(AngleDiff(a.Heading, b.Heading)) < epsilon &&
		math.Abs(AngleDiff(a.Rotation, b.Rotation)) < epsilon
}
