package motionplan

import (
	"testing"

	"go.viam.com/test"
)

func TestInfeasibleProfileError(t *testing.T) {
	t.Run("end only", func(t *testing.T) {
		err := &InfeasibleProfileError{StartRequested: 0, StartAchieved: 0, EndRequested: 40, EndAchieved: 12.5}
		test.That(t, err.StartAdjusted(), test.ShouldBeFalse)
		test.That(t, err.EndAdjusted(), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldEqual, "infeasible velocity profile: end velocity 40 achieved as 12.5")
	})

	t.Run("both ends", func(t *testing.T) {
		err := &InfeasibleProfileError{StartRequested: 20, StartAchieved: 10, EndRequested: 0, EndAchieved: 4}
		test.That(t, err.Error(), test.ShouldEqual,
			"infeasible velocity profile: start velocity 20 achieved as 10, end velocity 0 achieved as 4")
	})

	t.Run("within tolerance", func(t *testing.T) {
		err := &InfeasibleProfileError{StartRequested: 5, StartAchieved: 5 + 1e-12, EndRequested: 3, EndAchieved: 3}
		test.That(t, err.StartAdjusted(), test.ShouldBeFalse)
		test.That(t, err.EndAdjusted(), test.ShouldBeFalse)
	})
}

func TestInvalidProfileParamError(t *testing.T) {
	test.That(t, NewInvalidProfileParamError("end velocity", -1, "non-negative"), test.ShouldBeError,
		"invalid profile parameter end velocity: -1 must be non-negative")
}
