package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/pathgen/motionplan"
	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/units"
)

// PathFile is the contents of a paths file: groups of paths sharing units and a generator.
type PathFile struct {
	Units     string        `json:"units"`
	Generator GeneratorType `json:"generator"`
	Groups    []Group       `json:"groups"`

	ConfigFilePath string `json:"-"`
}

// Group is a named collection of paths.
type Group struct {
	Name  string `json:"name"`
	Paths []Path `json:"paths"`
}

// Waypoint is a user placed point on a path. Heading and swerve rotation are in degrees.
type Waypoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	SwRot   float64 `json:"swrot"`
}

// Pose returns the waypoint as a pose with angles in radians.
func (w Waypoint) Pose() spatialmath.Pose2D {
	return spatialmath.NewPose2D(w.X, w.Y, w.Heading, w.SwRot)
}

// Path is one path to generate. Units and Generator are inherited from the file when empty.
// The start and end angles and their delays are carried for swerve editors and not used in
// generation.
type Path struct {
	Name            string             `json:"name"`
	Units           string             `json:"units,omitempty"`
	Generator       GeneratorType      `json:"generator,omitempty"`
	StartVelocity   float64            `json:"startvelocity"`
	EndVelocity     float64            `json:"endvelocity"`
	StartAngle      float64            `json:"startangle"`
	StartAngleDelay float64            `json:"startangledelay"`
	EndAngle        float64            `json:"endangle"`
	EndAngleDelay   float64            `json:"endangledelay"`
	MaxVelocity     float64            `json:"maxvelocity"`
	MaxAcceleration float64            `json:"maxacceleration"`
	MaxCentripetal  float64            `json:"maxcentripetal"`
	Constraints     []ConstraintConfig `json:"constraints"`
	Points          []Waypoint         `json:"points"`
}

// FullName returns group-path for a path within a group.
func FullName(group, path string) string {
	return fmt.Sprintf("%s-%s", group, path)
}

// Ensure fills defaults and validates the whole file.
func (f *PathFile) Ensure() error {
	if f.Units == "" {
		f.Units = units.Inches
	}
	if f.Generator == "" {
		f.Generator = DefaultGenerator
	}
	for gi := range f.Groups {
		for pi := range f.Groups[gi].Paths {
			p := &f.Groups[gi].Paths[pi]
			if p.Units == "" {
				p.Units = f.Units
			}
			if p.Generator == "" {
				p.Generator = f.Generator
			}
		}
	}
	return f.Validate("")
}

// Validate returns every problem found in the file, each tagged with the location of the field.
func (f *PathFile) Validate(path string) error {
	var errs error
	if _, err := units.Normalize(f.Units); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "units"), err))
	}
	if err := f.Generator.Validate(); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "generator"), err))
	}
	if len(f.Groups) == 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "groups"))
	}
	groupNames := map[string]bool{}
	for gi := range f.Groups {
		g := &f.Groups[gi]
		groupPath := joinPath(path, fmt.Sprintf("groups.%d", gi))
		if groupNames[g.Name] {
			errs = multierr.Append(errs, newValidationError(groupPath, "name", "duplicate group name %q", g.Name))
		}
		groupNames[g.Name] = true
		errs = multierr.Append(errs, g.Validate(groupPath))
	}
	return errs
}

// Validate checks the group and each of its paths.
func (g *Group) Validate(path string) error {
	var errs error
	if g.Name == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	pathNames := map[string]bool{}
	for pi := range g.Paths {
		p := &g.Paths[pi]
		pathPath := joinPath(path, fmt.Sprintf("paths.%d", pi))
		if pathNames[p.Name] {
			errs = multierr.Append(errs, newValidationError(pathPath, "name", "duplicate path name %q", p.Name))
		}
		pathNames[p.Name] = true
		errs = multierr.Append(errs, p.Validate(pathPath))
	}
	return errs
}

// Validate checks the path parameters, constraints and waypoints.
func (p *Path) Validate(path string) error {
	var errs error
	if p.Name == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if p.Units != "" {
		if _, err := units.Normalize(p.Units); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "units"), err))
		}
	}
	if p.Generator != "" {
		if err := p.Generator.Validate(); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "generator"), err))
		}
	}
	for _, field := range []struct {
		name     string
		value    float64
		positive bool
	}{
		{"startvelocity", p.StartVelocity, false},
		{"endvelocity", p.EndVelocity, false},
		{"maxvelocity", p.MaxVelocity, true},
		{"maxacceleration", p.MaxAcceleration, true},
		{"maxcentripetal", p.MaxCentripetal, false},
	} {
		errs = multierr.Append(errs, checkNumber(path, field.name, field.value, field.positive))
	}
	if len(p.Points) < 2 {
		errs = multierr.Append(errs, newValidationError(path, "points", "need at least 2, got %d", len(p.Points)))
	}
	for ci := range p.Constraints {
		errs = multierr.Append(errs, p.Constraints[ci].Validate(joinPath(path, fmt.Sprintf("constraints.%d", ci))))
	}
	return errs
}

// Waypoints returns the path's points as poses.
func (p *Path) Waypoints() []spatialmath.Pose2D {
	return lo.Map(p.Points, func(w Waypoint, _ int) spatialmath.Pose2D { return w.Pose() })
}

// ConstraintSet returns the motion planning constraints of the path. A positive maxcentripetal
// adds a centripetal constraint.
func (p *Path) ConstraintSet() (motionplan.ConstraintSet, error) {
	cs := make(motionplan.ConstraintSet, 0, len(p.Constraints)+1)
	for ci := range p.Constraints {
		attrs, err := p.Constraints[ci].Decode()
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %d", ci)
		}
		cs = append(cs, attrs.Constraint())
	}
	if p.MaxCentripetal > 0 {
		cs = append(cs, &motionplan.CentripetalConstraint{MaxCentripetal: p.MaxCentripetal})
	}
	return cs, nil
}

// ProfileParams returns the velocity profile limits of the path.
func (p *Path) ProfileParams() motionplan.ProfileParams {
	return motionplan.ProfileParams{
		StartVelocity:   p.StartVelocity,
		EndVelocity:     p.EndVelocity,
		MaxVelocity:     p.MaxVelocity,
		MaxAcceleration: p.MaxAcceleration,
	}
}

// ConvertUnits returns a copy of the path with every length based value expressed in to.
// Angles are unchanged.
func (p *Path) ConvertUnits(to string) (*Path, error) {
	from := p.Units
	if from == "" {
		from = units.Inches
	}
	factor, err := units.Convert(1, from, to)
	if err != nil {
		return nil, err
	}
	normalized, err := units.Normalize(to)
	if err != nil {
		return nil, err
	}

	converted := *p
	converted.Units = normalized
	converted.StartVelocity *= factor
	converted.EndVelocity *= factor
	converted.MaxVelocity *= factor
	converted.MaxAcceleration *= factor
	converted.MaxCentripetal *= factor
	converted.Points = lo.Map(p.Points, func(w Waypoint, _ int) Waypoint {
		w.X *= factor
		w.Y *= factor
		return w
	})
	converted.Constraints = make([]ConstraintConfig, 0, len(p.Constraints))
	for ci := range p.Constraints {
		c := p.Constraints[ci]
		attrs, err := c.Decode()
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %d", ci)
		}
		converted.Constraints = append(converted.Constraints, NewConstraintConfig(c.Type, attrs.Scale(factor)))
	}
	return &converted, nil
}
