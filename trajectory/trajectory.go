package trajectory

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Trajectory is an immutable, time ordered sequence of points.
type Trajectory struct {
	name   string
	points []Point
}

// New creates a trajectory with a copy of the given points.
func New(name string, points []Point) *Trajectory {
	return &Trajectory{name: name, points: append([]Point(nil), points...)}
}

// Name returns the trajectory name, such as Main or Left.
func (t *Trajectory) Name() string {
	return t.name
}

// Len returns the number of points.
func (t *Trajectory) Len() int {
	return len(t.points)
}

// At returns the point at index i.
func (t *Trajectory) At(i int) Point {
	return t.points[i]
}

// Points returns a copy of every point.
func (t *Trajectory) Points() []Point {
	return append([]Point(nil), t.points...)
}

// Duration returns the time of the last point.
func (t *Trajectory) Duration() float64 {
	if len(t.points) == 0 {
		return 0
	}
	return t.points[len(t.points)-1].Time
}

// Field returns the named field of every point, in order.
func (t *Trajectory) Field(name string) ([]float64, error) {
	accessor, ok := fieldAccessors[name]
	if !ok {
		return nil, NewUnknownFieldError(name)
	}
	return lo.Map(t.points, func(p Point, _ int) float64 { return accessor(p) }), nil
}

// Distance integrates velocity over time.
func (t *Trajectory) Distance() float64 {
	if len(t.points) < 2 {
		return 0
	}
	times := lo.Map(t.points, func(p Point, _ int) float64 { return p.Time })
	vels := lo.Map(t.points, func(p Point, _ int) float64 { return p.Velocity })
	return integrate.Trapezoidal(times, vels)
}

// MaxVelocity returns the largest velocity along the trajectory.
func (t *Trajectory) MaxVelocity() float64 {
	if len(t.points) == 0 {
		return 0
	}
	return floats.Max(lo.Map(t.points, func(p Point, _ int) float64 { return p.Velocity }))
}
