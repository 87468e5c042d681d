// Package generator turns configured paths into trajectory groups.
package generator

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/pathgen/components/base/wheeled"
	"go.viam.com/pathgen/config"
	"go.viam.com/pathgen/logging"
	"go.viam.com/pathgen/motionplan"
	"go.viam.com/pathgen/motionplan/spline"
	"go.viam.com/pathgen/trajectory"
	"go.viam.com/pathgen/units"
	"go.viam.com/pathgen/utils"
)

// GeneratorType names the algorithm used for a path.
type GeneratorType = config.GeneratorType

// Generator types.
const (
	CheesyPoofs         = config.GeneratorCheesyPoofs
	ErrorCodeXeroSwerve = config.GeneratorErrorCodeXeroSwerve
)

// Resampling and spline sampling are specified in inches and converted to each path's units.
const (
	resampleStepInches = 1.
	splineMaxDxInches  = 2.
	splineMaxDyInches  = 0.5
	splineMaxDTheta    = 0.1
)

// Generator generates trajectories for paths, optionally for a specific robot.
type Generator struct {
	robot    *config.Robot
	timestep float64
	clock    clock.Clock
	logger   logging.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTimestep overrides the time between trajectory samples.
func WithTimestep(timestep float64) Option {
	return func(g *Generator) {
		g.timestep = timestep
	}
}

// WithClock sets the clock used to time generation.
func WithClock(c clock.Clock) Option {
	return func(g *Generator) {
		g.clock = c
	}
}

// New returns a generator. Robot may be nil, in which case only center trajectories are
// generated and robot limits are not applied.
func New(robot *config.Robot, logger logging.Logger, opts ...Option) *Generator {
	g := &Generator{
		robot:    robot,
		timestep: config.DefaultTimestep,
		clock:    clock.New(),
		logger:   logger,
	}
	if robot != nil && robot.Timestep > 0 {
		g.timestep = robot.Timestep
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate generates the trajectories of one path. Problems are recorded on the returned group
// next to whatever trajectories could still be produced.
func (g *Generator) Generate(path *config.Path) *trajectory.Group {
	if path == nil {
		group := trajectory.NewGroup("", "")
		group.SetError(ErrNilPath)
		return group
	}

	genType := path.Generator
	if genType == "" {
		genType = config.DefaultGenerator
	}
	runID := uuid.New().String()
	start := g.clock.Now()
	group := trajectory.NewGroup(path.Name, string(genType))
	g.logger.Debugw("generating path", "run", runID, "path", path.Name, "generator", genType, "units", path.Units)

	switch genType {
	case CheesyPoofs:
		g.generateCheesyPoofs(runID, path, group)
	default:
		group.SetError(&UnsupportedGeneratorError{Type: genType})
	}

	if group.HasError() {
		g.logger.Warnw("path generation incomplete", "run", runID, "path", path.Name, "error", group.Err())
	}
	g.logger.Debugw("generated path",
		"run", runID,
		"path", path.Name,
		"trajectories", group.Names(),
		"elapsed", g.clock.Since(start),
	)
	return group
}

func (g *Generator) generateCheesyPoofs(runID string, path *config.Path, group *trajectory.Group) {
	fail := func(err error) {
		group.SetError(multierr.Append(group.Err(), err))
	}
	pathUnits := path.Units
	if pathUnits == "" {
		pathUnits = units.Inches
	}
	inch, err := units.Convert(1, units.Inches, pathUnits)
	if err != nil {
		fail(err)
		return
	}

	poses, err := spline.Sample(path.Waypoints(), spline.Limits{
		MaxDx:     splineMaxDxInches * inch,
		MaxDy:     splineMaxDyInches * inch,
		MaxDTheta: splineMaxDTheta,
	})
	if err != nil {
		fail(err)
		return
	}
	constraints, err := path.ConstraintSet()
	if err != nil {
		fail(err)
		return
	}
	params, err := g.profileParams(path, pathUnits)
	if err != nil {
		fail(err)
		return
	}

	pg := motionplan.NewProfileGenerator(resampleStepInches*inch, g.timestep, g.logger)
	center, err := pg.Generate(poses, constraints, params)
	if center == nil {
		fail(err)
		return
	}
	group.AddTrajectory(center)
	if err != nil {
		fail(err)
	}

	if g.robot == nil || g.robot.DriveType != config.DriveTank {
		return
	}
	width, err := g.robot.WidthIn(pathUnits)
	if err != nil {
		fail(err)
		return
	}
	left, right, err := wheeled.SplitTankDrive(center, width)
	if err != nil {
		fail(err)
		return
	}
	group.AddTrajectory(left)
	group.AddTrajectory(right)
	g.logger.Debugw("split tank drive", "run", runID, "width", width)
}

// profileParams returns the path's limits, lowered to the robot's where the robot has any.
func (g *Generator) profileParams(path *config.Path, pathUnits string) (motionplan.ProfileParams, error) {
	params := path.ProfileParams()
	if g.robot == nil {
		return params, nil
	}
	maxVel, maxAcc, err := g.robot.LimitsIn(pathUnits)
	if err != nil {
		return params, err
	}
	if maxVel > 0 {
		params.MaxVelocity = math.Min(params.MaxVelocity, maxVel)
	}
	if maxAcc > 0 {
		params.MaxAcceleration = math.Min(params.MaxAcceleration, maxAcc)
	}
	return params, nil
}

// GenerateAsync generates a snapshot of path in the background. Exactly one group is delivered on
// the returned channel, including when generation panics.
func (g *Generator) GenerateAsync(path *config.Path) <-chan *trajectory.Group {
	done := make(chan *trajectory.Group, 1)
	snapshot := clonePath(path)
	goutils.PanicCapturingGoWithCallback(func() {
		done <- g.Generate(snapshot)
	}, func(err interface{}) {
		name, generator := "", ""
		if snapshot != nil {
			name, generator = snapshot.Name, string(snapshot.Generator)
		}
		group := trajectory.NewGroup(name, generator)
		group.SetError(NewGenerationPanicError(name, err))
		done <- group
	})
	return done
}

// GenerateAll generates independent paths concurrently and returns their groups in input order
// along with the time taken on the generator's clock.
// The returned error is only set when ctx ends before every path is generated.
func (g *Generator) GenerateAll(ctx context.Context, paths []*config.Path) ([]*trajectory.Group, time.Duration, error) {
	start := g.clock.Now()
	groups, err := utils.MapInParallel(ctx, paths, func(ctx context.Context, path *config.Path) (*trajectory.Group, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case group := <-g.GenerateAsync(path):
			return group, nil
		}
	})
	return groups, g.clock.Since(start), err
}

func clonePath(path *config.Path) *config.Path {
	if path == nil {
		return nil
	}
	cloned := *path
	cloned.Points = append([]config.Waypoint(nil), path.Points...)
	cloned.Constraints = append([]config.ConstraintConfig(nil), path.Constraints...)
	return &cloned
}
