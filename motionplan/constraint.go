package motionplan

import (
	"fmt"
	"math"
)

// PathSample is where along the path a velocity ceiling is evaluated.
type PathSample struct {
	Distance  float64
	Curvature float64
}

// Constraint limits velocity at points along a path. Returning +Inf means the constraint does not
// apply at the sample.
type Constraint interface {
	VelocityCeiling(s PathSample) float64
}

// SpanConstraint is a Constraint whose ceiling can begin or end between two samples. Without it
// a span is limited by the lower of the ceilings at its two ends.
type SpanConstraint interface {
	Constraint
	VelocityCeilingOver(from, to PathSample) float64
}

// VelocityConstraint caps velocity everywhere along the path.
type VelocityConstraint struct {
	Velocity float64
}

// VelocityCeiling returns the cap.
func (c *VelocityConstraint) VelocityCeiling(PathSample) float64 {
	return c.Velocity
}

func (c *VelocityConstraint) String() string {
	return fmt.Sprintf("velocity <= %g", c.Velocity)
}

// DistanceVelocityConstraint caps velocity between two arc lengths, inclusive.
type DistanceVelocityConstraint struct {
	After    float64
	Before   float64
	Velocity float64
}

// VelocityCeiling returns the cap when After <= s.Distance <= Before.
func (c *DistanceVelocityConstraint) VelocityCeiling(s PathSample) float64 {
	if s.Distance < c.After || s.Distance > c.Before {
		return math.Inf(1)
	}
	return c.Velocity
}

// VelocityCeilingOver returns the cap when the range overlaps the open span between from and to.
func (c *DistanceVelocityConstraint) VelocityCeilingOver(from, to PathSample) float64 {
	if to.Distance <= c.After || from.Distance >= c.Before {
		return math.Inf(1)
	}
	return c.Velocity
}

func (c *DistanceVelocityConstraint) String() string {
	return fmt.Sprintf("velocity <= %g for %g <= distance <= %g", c.Velocity, c.After, c.Before)
}

// CentripetalConstraint limits lateral acceleration, giving v = sqrt(a / |k|).
type CentripetalConstraint struct {
	MaxCentripetal float64
}

// VelocityCeiling returns the fastest speed that keeps lateral acceleration within bounds.
func (c *CentripetalConstraint) VelocityCeiling(s PathSample) float64 {
	k := math.Abs(s.Curvature)
	if k == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(math.Max(c.MaxCentripetal, 0) / k)
}

func (c *CentripetalConstraint) String() string {
	return fmt.Sprintf("centripetal acceleration <= %g", c.MaxCentripetal)
}

// ConstraintSet is every constraint applied to one path.
type ConstraintSet []Constraint

// CeilingAt returns the lowest ceiling of all constraints at dist along the view, never negative.
// Curvature comes from the nearest resampled point.
func (cs ConstraintSet) CeilingAt(view *DistanceView, dist float64) float64 {
	return cs.ceiling(PathSample{Distance: dist, Curvature: view.CurvatureAt(dist)})
}

func (cs ConstraintSet) ceiling(s PathSample) float64 {
	ceiling := math.Inf(1)
	for _, c := range cs {
		if c == nil {
			continue
		}
		ceiling = math.Min(ceiling, c.VelocityCeiling(s))
	}
	return math.Max(ceiling, 0)
}

// ceilingOver returns the lowest ceiling anywhere between two consecutive samples.
func (cs ConstraintSet) ceilingOver(from, to PathSample) float64 {
	ceiling := math.Inf(1)
	for _, c := range cs {
		switch c := c.(type) {
		case nil:
		case SpanConstraint:
			ceiling = math.Min(ceiling, c.VelocityCeilingOver(from, to))
		default:
			ceiling = math.Min(ceiling, math.Min(c.VelocityCeiling(from), c.VelocityCeiling(to)))
		}
	}
	return math.Max(ceiling, 0)
}
