// Package trajectory contains the time parameterized output of path generation.
package trajectory

import (
	"github.com/pkg/errors"

	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/utils"
)

// Names of the trajectories produced for a path.
const (
	Main  = "Main"
	Left  = "Left"
	Right = "Right"
)

// Field names usable with Point.Field and Trajectory.Field.
const (
	TimeField         = "time"
	XField            = "x"
	YField            = "y"
	HeadingField      = "heading"
	RotationField     = "rotation"
	PositionField     = "position"
	VelocityField     = "velocity"
	AccelerationField = "acceleration"
	JerkField         = "jerk"
	CurvatureField    = "curvature"
)

// Point is one kinematic sample along a trajectory. Position is the distance travelled along the
// path (for a wheel trajectory, along that wheel's path) up to this sample.
type Point struct {
	spatialmath.Pose2D
	Time         float64
	Position     float64
	Velocity     float64
	Acceleration float64
	Jerk         float64
	Curvature    float64
}

var fieldNames = []string{
	TimeField, XField, YField, HeadingField, RotationField,
	PositionField, VelocityField, AccelerationField, JerkField, CurvatureField,
}

// headings and rotations are reported in degrees, like the path files they come from.
var fieldAccessors = map[string]func(Point) float64{
	TimeField:         func(p Point) float64 { return p.Time },
	XField:            func(p Point) float64 { return p.Pose2D.X() },
	YField:            func(p Point) float64 { return p.Pose2D.Y() },
	HeadingField:      func(p Point) float64 { return utils.RadToDeg(p.Heading) },
	RotationField:     func(p Point) float64 { return utils.RadToDeg(p.Rotation) },
	PositionField:     func(p Point) float64 { return p.Position },
	VelocityField:     func(p Point) float64 { return p.Velocity },
	AccelerationField: func(p Point) float64 { return p.Acceleration },
	JerkField:         func(p Point) float64 { return p.Jerk },
	CurvatureField:    func(p Point) float64 { return p.Curvature },
}

// FieldNames returns the names of every field a point exposes, in export order.
func FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

// Field returns the value of the named field.
func (p Point) Field(name string) (float64, error) {
	accessor, ok := fieldAccessors[name]
	if !ok {
		return 0, NewUnknownFieldError(name)
	}
	return accessor(p), nil
}

// NewUnknownFieldError is returned when a field name has no accessor.
func NewUnknownFieldError(name string) error {
	return errors.Errorf("unknown trajectory field %q", name)
}
