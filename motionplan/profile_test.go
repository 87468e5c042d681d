package motionplan

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/pathgen/logging"
	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/testutils"
	"go.viam.com/pathgen/trajectory"
)

const profileTimestep = 0.02

func newTestProfileGenerator(t *testing.T) *ProfileGenerator {
	t.Helper()
	return NewProfileGenerator(1, profileTimestep, logging.NewTestLogger(t))
}

func checkProfileBounds(t *testing.T, traj *trajectory.Trajectory, view *DistanceView, cs ConstraintSet, params ProfileParams) {
	t.Helper()
	for i := 0; i < traj.Len(); i++ {
		p := traj.At(i)
		ceiling := math.Min(params.MaxVelocity, cs.CeilingAt(view, p.Position))
		test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, ceiling+1e-6)
		test.That(t, p.Velocity, test.ShouldBeGreaterThanOrEqualTo, 0)
		if i == 0 {
			continue
		}
		prev := traj.At(i - 1)
		dt := p.Time - prev.Time
		test.That(t, dt, test.ShouldBeGreaterThan, 0)
		test.That(t, math.Abs(p.Velocity-prev.Velocity)/dt, test.ShouldBeLessThanOrEqualTo, params.MaxAcceleration+1e-6)
		test.That(t, p.Position, test.ShouldBeGreaterThanOrEqualTo, prev.Position)
	}
}

func TestGenerateTrapezoid(t *testing.T) {
	pg := newTestProfileGenerator(t)
	poses := testutils.StraightPoses(120)
	params := ProfileParams{StartVelocity: 0, EndVelocity: 0, MaxVelocity: 10, MaxAcceleration: 5}

	traj, err := pg.Generate(poses, nil, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Name(), test.ShouldEqual, trajectory.Main)

	view, err := NewDistanceView(poses, 1)
	test.That(t, err, test.ShouldBeNil)
	checkProfileBounds(t, traj, view, nil, params)

	// 2s up to 10, 10s of cruise over 100 units, 2s back down
	test.That(t, traj.Duration(), test.ShouldAlmostEqual, 14, 1e-6)
	test.That(t, traj.Distance(), test.ShouldAlmostEqual, 120, 1e-2)
	test.That(t, traj.MaxVelocity(), test.ShouldAlmostEqual, 10, 1e-9)

	first := traj.At(0)
	last := traj.At(traj.Len() - 1)
	test.That(t, first.Velocity, test.ShouldEqual, 0)
	test.That(t, first.Acceleration, test.ShouldEqual, 0)
	test.That(t, first.Jerk, test.ShouldEqual, 0)
	test.That(t, last.Velocity, test.ShouldEqual, 0)
	test.That(t, last.Position, test.ShouldAlmostEqual, 120, 1e-9)
	test.That(t, last.X(), test.ShouldAlmostEqual, 120, 1e-9)

	for i := 0; i < traj.Len(); i++ {
		p := traj.At(i)
		switch {
		case p.Time < 2-1e-6:
			test.That(t, p.Velocity, test.ShouldAlmostEqual, 5*p.Time, 1e-6)
		case p.Time > 2+1e-6 && p.Time < 12-1e-6:
			test.That(t, p.Velocity, test.ShouldAlmostEqual, 10, 1e-6)
		case p.Time > 12+1e-6:
			test.That(t, p.Velocity, test.ShouldAlmostEqual, 5*(14-p.Time), 1e-6)
		}
		test.That(t, p.X(), test.ShouldAlmostEqual, p.Position, 1e-9)
	}

	// symmetric about the middle of the run
	mid := traj.Len() / 2
	test.That(t, traj.At(mid/4).Velocity, test.ShouldAlmostEqual, traj.At(traj.Len()-1-mid/4).Velocity, 0.2)
}

func TestGenerateRespectsConstraints(t *testing.T) {
	pg := newTestProfileGenerator(t)
	poses := testutils.StraightPoses(120)
	params := ProfileParams{StartVelocity: 2, EndVelocity: 1, MaxVelocity: 10, MaxAcceleration: 5}
	cs := ConstraintSet{
		&DistanceVelocityConstraint{After: 50, Before: 70, Velocity: 4},
		&VelocityConstraint{Velocity: 8},
	}

	traj, err := pg.Generate(poses, cs, params)
	test.That(t, err, test.ShouldBeNil)
	view, err := NewDistanceView(poses, 1)
	test.That(t, err, test.ShouldBeNil)
	checkProfileBounds(t, traj, view, cs, params)

	test.That(t, traj.At(0).Velocity, test.ShouldEqual, 2)
	test.That(t, traj.At(traj.Len()-1).Velocity, test.ShouldEqual, 1)
	test.That(t, traj.MaxVelocity(), test.ShouldAlmostEqual, 8, 1e-9)
	test.That(t, traj.Distance(), test.ShouldAlmostEqual, 120, 1e-2)
}

func TestGenerateConstraintBetweenPoints(t *testing.T) {
	pg := newTestProfileGenerator(t)
	poses := testutils.StraightPoses(120)
	params := ProfileParams{MaxVelocity: 10, MaxAcceleration: 5}
	cs := ConstraintSet{&DistanceVelocityConstraint{After: 50.5, Before: 70.25, Velocity: 4}}

	traj, err := pg.Generate(poses, cs, params)
	test.That(t, err, test.ShouldBeNil)
	view, err := NewDistanceView(poses, 1)
	test.That(t, err, test.ShouldBeNil)
	checkProfileBounds(t, traj, view, cs, params)

	crossed := false
	for i := 0; i < traj.Len(); i++ {
		p := traj.At(i)
		if p.Position >= 50.5 && p.Position <= 70.25 {
			crossed = true
			test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, 4+1e-9)
		}
	}
	test.That(t, crossed, test.ShouldBeTrue)
	test.That(t, traj.Distance(), test.ShouldAlmostEqual, 120, 1e-2)
}

func TestGenerateOnArc(t *testing.T) {
	pg := NewProfileGenerator(0.5, profileTimestep, logging.NewTestLogger(t))
	radius := 10.
	poses := testutils.ArcPoses(radius, math.Pi, 600)
	params := ProfileParams{MaxVelocity: 30, MaxAcceleration: 20}
	cs := ConstraintSet{&CentripetalConstraint{MaxCentripetal: 40}}

	traj, err := pg.Generate(poses, cs, params)
	test.That(t, err, test.ShouldBeNil)
	// sqrt(40 * 10)
	test.That(t, traj.MaxVelocity(), test.ShouldBeLessThanOrEqualTo, 20.1)
	test.That(t, traj.MaxVelocity(), test.ShouldBeGreaterThan, 19)
	for i := 1; i < traj.Len()-1; i++ {
		test.That(t, traj.At(i).Curvature, test.ShouldBeGreaterThan, 0)
	}
}

func TestGenerateInfeasible(t *testing.T) {
	t.Run("end velocity unreachable", func(t *testing.T) {
		pg := newTestProfileGenerator(t)
		traj, err := pg.Generate(testutils.StraightPoses(1), nil,
			ProfileParams{StartVelocity: 0, EndVelocity: 10, MaxVelocity: 20, MaxAcceleration: 5})
		test.That(t, traj, test.ShouldNotBeNil)
		var infeasible *InfeasibleProfileError
		test.That(t, errors.As(err, &infeasible), test.ShouldBeTrue)
		test.That(t, infeasible.StartAdjusted(), test.ShouldBeFalse)
		test.That(t, infeasible.EndAdjusted(), test.ShouldBeTrue)
		test.That(t, infeasible.EndAchieved, test.ShouldAlmostEqual, math.Sqrt(10))
		test.That(t, traj.At(traj.Len()-1).Velocity, test.ShouldAlmostEqual, math.Sqrt(10))
		test.That(t, err.Error(), test.ShouldContainSubstring, "end velocity 10")
	})

	t.Run("start velocity above max", func(t *testing.T) {
		pg := newTestProfileGenerator(t)
		traj, err := pg.Generate(testutils.StraightPoses(120), nil,
			ProfileParams{StartVelocity: 20, EndVelocity: 0, MaxVelocity: 10, MaxAcceleration: 5})
		test.That(t, traj, test.ShouldNotBeNil)
		var infeasible *InfeasibleProfileError
		test.That(t, errors.As(err, &infeasible), test.ShouldBeTrue)
		test.That(t, infeasible.StartAdjusted(), test.ShouldBeTrue)
		test.That(t, infeasible.StartAchieved, test.ShouldEqual, 10)
		test.That(t, traj.At(0).Velocity, test.ShouldEqual, 10)
		test.That(t, traj.At(traj.Len()-1).Velocity, test.ShouldEqual, 0)
	})

	t.Run("start velocity cannot stop in time", func(t *testing.T) {
		pg := newTestProfileGenerator(t)
		traj, err := pg.Generate(testutils.StraightPoses(2), nil,
			ProfileParams{StartVelocity: 10, EndVelocity: 0, MaxVelocity: 10, MaxAcceleration: 5})
		test.That(t, traj, test.ShouldNotBeNil)
		var infeasible *InfeasibleProfileError
		test.That(t, errors.As(err, &infeasible), test.ShouldBeTrue)
		test.That(t, infeasible.StartAchieved, test.ShouldAlmostEqual, math.Sqrt(20))
		test.That(t, traj.At(traj.Len()-1).Velocity, test.ShouldEqual, 0)
	})

	t.Run("stalled", func(t *testing.T) {
		pg := newTestProfileGenerator(t)
		cs := ConstraintSet{&DistanceVelocityConstraint{After: 50, Before: 70, Velocity: 0}}
		traj, err := pg.Generate(testutils.StraightPoses(120), cs,
			ProfileParams{MaxVelocity: 10, MaxAcceleration: 5})
		test.That(t, errors.Is(err, ErrProfileStalled), test.ShouldBeTrue)
		test.That(t, traj, test.ShouldNotBeNil)
		last := traj.At(traj.Len() - 1)
		test.That(t, last.Position, test.ShouldAlmostEqual, 50, 1e-9)
		test.That(t, last.Velocity, test.ShouldEqual, 0)
	})
}

func TestGenerateInvalidParams(t *testing.T) {
	poses := testutils.StraightPoses(10)
	valid := ProfileParams{MaxVelocity: 10, MaxAcceleration: 5}
	for _, tc := range []struct {
		name     string
		timestep float64
		step     float64
		params   ProfileParams
	}{
		{"zero timestep", 0, 1, valid},
		{"zero step", profileTimestep, 0, valid},
		{"zero max velocity", profileTimestep, 1, ProfileParams{MaxAcceleration: 5}},
		{"negative max acceleration", profileTimestep, 1, ProfileParams{MaxVelocity: 10, MaxAcceleration: -1}},
		{"negative start velocity", profileTimestep, 1, ProfileParams{StartVelocity: -1, MaxVelocity: 10, MaxAcceleration: 5}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pg := NewProfileGenerator(tc.step, tc.timestep, logging.NewTestLogger(t))
			traj, err := pg.Generate(poses, nil, tc.params)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, traj, test.ShouldBeNil)
		})
	}
}

func TestGenerateZeroLength(t *testing.T) {
	pg := newTestProfileGenerator(t)
	poses := []spatialmath.Pose2D{spatialmath.NewPose2D(4, 5, 0, 0), spatialmath.NewPose2D(4, 5, 0, 0)}
	traj, err := pg.Generate(poses, nil, ProfileParams{MaxVelocity: 10, MaxAcceleration: 5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Len(), test.ShouldEqual, 1)
	test.That(t, traj.At(0).X(), test.ShouldEqual, 4)
	test.That(t, traj.Duration(), test.ShouldEqual, 0)
}
