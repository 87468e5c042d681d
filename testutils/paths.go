// Package testutils provides helpers for building paths and fixtures in tests.
package testutils

import (
	"math"

	"go.viam.com/pathgen/spatialmath"
)

// StraightPoses returns the two endpoints of a straight path along +x of the given length.
func StraightPoses(length float64) []spatialmath.Pose2D {
	return []spatialmath.Pose2D{
		spatialmath.NewPose2D(0, 0, 0, 0),
		spatialmath.NewPose2D(length, 0, 0, 0),
	}
}

// ArcPoses returns n+1 poses evenly spaced on a counter clockwise circular arc of the given
// radius centered at the origin, starting at (radius, 0) and sweeping sweep radians. Headings
// are tangent to the arc.
func ArcPoses(radius, sweep float64, n int) []spatialmath.Pose2D {
	poses := make([]spatialmath.Pose2D, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := sweep * float64(i) / float64(n)
		pose := spatialmath.NewPose2D(radius*math.Cos(theta), radius*math.Sin(theta), 0, 0)
		pose.Heading = spatialmath.NormalizeAngle(theta + math.Pi/2)
		poses = append(poses, pose)
	}
	return poses
}
