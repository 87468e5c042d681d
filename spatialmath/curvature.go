package spatialmath

import "go.viam.com/pathgen/utils"

// degenerateLength is the side length below which three points are treated as coincident.
const degenerateLength = 1e-9

// PoseWithCurvature is a pose annotated with the signed curvature of the path through it.
type PoseWithCurvature struct {
	Pose2D
	Curvature float64
}

// Curvature returns the signed curvature (1/radius) of the circle through three consecutive
// positions. Counter-clockwise turns are positive. Colinear or coincident points give 0.
func Curvature(a, b, c Pose2D) float64 {
	ab := b.Position.Sub(a.Position)
	bc := c.Position.Sub(b.Position)
	ca := a.Position.Sub(c.Position)

	lab, lbc, lca := ab.Norm(), bc.Norm(), ca.Norm()
	if lab < degenerateLength || lbc < degenerateLength || lca < degenerateLength {
		return 0
	}

	// twice the signed triangle area
	cross := ab.Cross(c.Position.Sub(a.Position))
	return 2 * cross / (lab * lbc * lca)
}

// InterpolateWithCurvature interpolates the pose and linearly blends the curvature.
func InterpolateWithCurvature(a, b PoseWithCurvature, by float64) PoseWithCurvature {
	pose := Interpolate(a.Pose2D, b.Pose2D, by)
	by = utils.Clamp(by, 0, 1)
	return PoseWithCurvature{Pose2D: pose, Curvature: a.Curvature + (b.Curvature-a.Curvature)*by}
}
