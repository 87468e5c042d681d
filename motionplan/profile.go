package motionplan

import (
	"math"

	"go.uber.org/multierr"

	"go.viam.com/pathgen/logging"
	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/trajectory"
	"go.viam.com/pathgen/utils"
)

const timeTolerance = 1e-9

// ProfileParams are the boundary and global limits of a velocity profile.
type ProfileParams struct {
	StartVelocity   float64
	EndVelocity     float64
	MaxVelocity     float64
	MaxAcceleration float64
}

// ProfileGenerator turns a pose sequence into a time parameterized trajectory whose velocity
// respects a set of constraints and an acceleration limit.
type ProfileGenerator struct {
	// Step is the arc length between resampled points.
	Step float64
	// Timestep is the time between output samples.
	Timestep float64
	Logger   logging.Logger
}

// NewProfileGenerator returns a generator sampling every step units and every timestep seconds.
func NewProfileGenerator(step, timestep float64, logger logging.Logger) *ProfileGenerator {
	return &ProfileGenerator{Step: step, Timestep: timestep, Logger: logger}
}

func (pg *ProfileGenerator) logger() logging.Logger {
	if pg.Logger == nil {
		return logging.Global().Sublogger("profile")
	}
	return pg.Logger
}

func (pg *ProfileGenerator) validate(params ProfileParams) error {
	switch {
	case !(pg.Timestep > 0):
		return NewInvalidProfileParamError("timestep", pg.Timestep, "positive")
	case !(params.MaxVelocity > 0):
		return NewInvalidProfileParamError("max velocity", params.MaxVelocity, "positive")
	case !(params.MaxAcceleration > 0):
		return NewInvalidProfileParamError("max acceleration", params.MaxAcceleration, "positive")
	case params.StartVelocity < 0 || math.IsNaN(params.StartVelocity):
		return NewInvalidProfileParamError("start velocity", params.StartVelocity, "non-negative")
	case params.EndVelocity < 0 || math.IsNaN(params.EndVelocity):
		return NewInvalidProfileParamError("end velocity", params.EndVelocity, "non-negative")
	}
	return nil
}

// Generate resamples poses, limits velocity at every resampled point, and integrates the result
// into a trajectory named trajectory.Main.
//
// When a boundary velocity cannot be met the best effort trajectory is returned together with an
// *InfeasibleProfileError. When the profile stalls the trajectory up to the stall is returned with
// ErrProfileStalled. Any other error returns no trajectory.
func (pg *ProfileGenerator) Generate(
	poses []spatialmath.Pose2D,
	constraints ConstraintSet,
	params ProfileParams,
) (*trajectory.Trajectory, error) {
	if err := pg.validate(params); err != nil {
		return nil, err
	}
	view, err := NewDistanceView(poses, pg.Step)
	if err != nil {
		return nil, err
	}
	logger := pg.logger()
	logger.Debugw("resampled path", "points", view.Len(), "length", view.Length())

	velocities := velocityProfile(view, constraints, params)
	logger.Debugw("velocity profile limited", "start", velocities[0], "end", velocities[len(velocities)-1])

	var resultErr error
	infeasible := &InfeasibleProfileError{
		StartRequested: params.StartVelocity,
		StartAchieved:  velocities[0],
		EndRequested:   params.EndVelocity,
		EndAchieved:    velocities[len(velocities)-1],
	}
	if infeasible.StartAdjusted() || infeasible.EndAdjusted() {
		logger.Warnw("boundary velocity not achievable",
			"start_requested", infeasible.StartRequested,
			"start_achieved", infeasible.StartAchieved,
			"end_requested", infeasible.EndRequested,
			"end_achieved", infeasible.EndAchieved,
		)
		resultErr = infeasible
	}

	times, stalledAt := segmentTimes(view, velocities)
	if stalledAt >= 0 {
		logger.Warnw("velocity profile stalled", "distance", view.Distance(stalledAt))
		resultErr = multierr.Append(resultErr, ErrProfileStalled)
	}

	points := sampleProfile(view, velocities, times, pg.Timestep)
	differentiate(points)
	logger.Debugw("trajectory integrated", "samples", len(points), "duration", points[len(points)-1].Time)
	return trajectory.New(trajectory.Main, points), resultErr
}

// velocityProfile applies the constraint, forward and backward passes, once each. The constraint
// pass limits each point by its own ceiling and by the ceilings of the spans on either side.
func velocityProfile(view *DistanceView, constraints ConstraintSet, params ProfileParams) []float64 {
	n := view.Len()
	samples := make([]PathSample, n)
	limits := make([]float64, n)
	for i := range limits {
		samples[i] = PathSample{Distance: view.Distance(i), Curvature: view.Index(i).Curvature}
		limits[i] = math.Min(params.MaxVelocity, constraints.ceiling(samples[i]))
	}
	// velocity between two points lies between theirs, so both ends carry the span's ceiling.
	for i := 0; i < n-1; i++ {
		span := constraints.ceilingOver(samples[i], samples[i+1])
		limits[i] = math.Min(limits[i], span)
		limits[i+1] = math.Min(limits[i+1], span)
	}

	accel := params.MaxAcceleration
	v := make([]float64, n)
	v[0] = math.Min(params.StartVelocity, limits[0])
	for i := 1; i < n; i++ {
		ds := view.Distance(i) - view.Distance(i-1)
		v[i] = math.Min(limits[i], math.Sqrt(utils.Square(v[i-1])+2*accel*ds))
	}

	v[n-1] = math.Min(params.EndVelocity, v[n-1])
	for i := n - 2; i >= 0; i-- {
		ds := view.Distance(i+1) - view.Distance(i)
		v[i] = math.Min(v[i], math.Sqrt(utils.Square(v[i+1])+2*accel*ds))
	}
	return v
}

// segmentTimes returns the time at which each resampled point is reached assuming constant
// acceleration between points. If the profile stalls, only the times up to the stall are returned
// along with the index of the point where it stops; otherwise the index is -1.
func segmentTimes(view *DistanceView, v []float64) ([]float64, int) {
	times := make([]float64, len(v))
	for i := 1; i < len(v); i++ {
		ds := view.Distance(i) - view.Distance(i-1)
		if ds <= 0 {
			times[i] = times[i-1]
			continue
		}
		vSum := v[i-1] + v[i]
		if vSum <= 0 {
			return times[:i], i - 1
		}
		times[i] = times[i-1] + 2*ds/vSum
	}
	return times, -1
}

// sampleProfile emits a point every dt seconds, plus one at the exact end time, by evaluating the
// constant acceleration motion of the segment containing each sample time.
func sampleProfile(view *DistanceView, v, times []float64, dt float64) []trajectory.Point {
	end := times[len(times)-1]
	points := make([]trajectory.Point, 0, int(end/dt)+2)
	seg := 0
	at := func(t float64) trajectory.Point {
		for seg < len(times)-2 && times[seg+1] < t {
			seg++
		}
		if len(times) == 1 {
			return newPoint(view.Index(0), t, 0, v[0])
		}
		dtSeg := times[seg+1] - times[seg]
		if dtSeg <= 0 {
			return newPoint(view.Index(seg+1), t, view.Distance(seg+1), v[seg+1])
		}
		tau := math.Min(math.Max(t-times[seg], 0), dtSeg)
		a := (v[seg+1] - v[seg]) / dtSeg
		vel := v[seg] + a*tau
		dist := view.Distance(seg) + v[seg]*tau + 0.5*a*tau*tau
		dist = math.Min(math.Max(dist, view.Distance(seg)), view.Distance(seg+1))
		return newPoint(view.At(dist), t, dist, vel)
	}

	for k := 0; float64(k)*dt < end-timeTolerance; k++ {
		points = append(points, at(float64(k)*dt))
	}
	last := len(times) - 1
	points = append(points, newPoint(view.Index(last), end, view.Distance(last), v[last]))
	return points
}

func newPoint(pose spatialmath.PoseWithCurvature, t, dist, vel float64) trajectory.Point {
	return trajectory.Point{
		Pose2D:    pose.Pose2D,
		Time:      t,
		Position:  dist,
		Velocity:  vel,
		Curvature: pose.Curvature,
	}
}

// differentiate fills acceleration and jerk by backward differences over each sample's time delta.
func differentiate(points []trajectory.Point) {
	for i := 1; i < len(points); i++ {
		dt := points[i].Time - points[i-1].Time
		if dt <= timeTolerance {
			points[i].Acceleration = points[i-1].Acceleration
			continue
		}
		points[i].Acceleration = (points[i].Velocity - points[i-1].Velocity) / dt
		points[i].Jerk = (points[i].Acceleration - points[i-1].Acceleration) / dt
	}
}
