package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pathgen/motionplan"
	"go.viam.com/pathgen/utils"
)

// Constraint types as they appear in path files.
const (
	ConstraintDistanceVelocity = "distance_velocity"
	ConstraintCentripetal      = "centripetal"
	ConstraintVelocity         = "velocity"
)

// ConstraintAttributes is the typed form of one constraint entry.
type ConstraintAttributes interface {
	Validate(path string) error
	// Scale returns a copy with every length based quantity multiplied by factor.
	Scale(factor float64) ConstraintAttributes
	Constraint() motionplan.Constraint
}

var constraintTypes = map[string]func() ConstraintAttributes{
	ConstraintDistanceVelocity: func() ConstraintAttributes { return &DistanceVelocityAttributes{} },
	ConstraintCentripetal:      func() ConstraintAttributes { return &CentripetalAttributes{} },
	ConstraintVelocity:         func() ConstraintAttributes { return &VelocityAttributes{} },
}

// DistanceVelocityAttributes caps velocity between two distances along the path.
type DistanceVelocityAttributes struct {
	After    float64 `json:"after"`
	Before   float64 `json:"before"`
	Velocity float64 `json:"velocity"`
}

// Validate ensures the range is finite and ordered and the velocity usable.
func (a *DistanceVelocityAttributes) Validate(path string) error {
	if err := multierr.Combine(checkFinite(path, "after", a.After), checkFinite(path, "before", a.Before)); err != nil {
		return err
	}
	if a.After > a.Before {
		return newValidationError(path, "before", "must not be less than after (%v), got %v", a.After, a.Before)
	}
	return checkNumber(path, "velocity", a.Velocity, false)
}

// Scale converts distances and velocity.
func (a *DistanceVelocityAttributes) Scale(factor float64) ConstraintAttributes {
	return &DistanceVelocityAttributes{After: a.After * factor, Before: a.Before * factor, Velocity: a.Velocity * factor}
}

// Constraint returns the motion planning constraint.
func (a *DistanceVelocityAttributes) Constraint() motionplan.Constraint {
	return &motionplan.DistanceVelocityConstraint{After: a.After, Before: a.Before, Velocity: a.Velocity}
}

// CentripetalAttributes limits lateral acceleration.
type CentripetalAttributes struct {
	MaxCentripetal float64 `json:"maxcentripetal"`
}

// Validate ensures the limit is positive.
func (a *CentripetalAttributes) Validate(path string) error {
	return checkNumber(path, "maxcentripetal", a.MaxCentripetal, true)
}

// Scale converts the acceleration limit.
func (a *CentripetalAttributes) Scale(factor float64) ConstraintAttributes {
	return &CentripetalAttributes{MaxCentripetal: a.MaxCentripetal * factor}
}

// Constraint returns the motion planning constraint.
func (a *CentripetalAttributes) Constraint() motionplan.Constraint {
	return &motionplan.CentripetalConstraint{MaxCentripetal: a.MaxCentripetal}
}

// VelocityAttributes caps velocity along the whole path.
type VelocityAttributes struct {
	Velocity float64 `json:"velocity"`
}

// Validate ensures the velocity is usable.
func (a *VelocityAttributes) Validate(path string) error {
	return checkNumber(path, "velocity", a.Velocity, false)
}

// Scale converts the velocity.
func (a *VelocityAttributes) Scale(factor float64) ConstraintAttributes {
	return &VelocityAttributes{Velocity: a.Velocity * factor}
}

// Constraint returns the motion planning constraint.
func (a *VelocityAttributes) Constraint() motionplan.Constraint {
	return &motionplan.VelocityConstraint{Velocity: a.Velocity}
}

// ConstraintConfig is one entry of a path's constraint list. The entry's type selects which
// attributes the rest of its fields decode into.
type ConstraintConfig struct {
	Type       string
	Attributes map[string]interface{}

	converted ConstraintAttributes
}

// NewConstraintConfig returns the config for already typed attributes.
func NewConstraintConfig(constraintType string, attrs ConstraintAttributes) ConstraintConfig {
	return ConstraintConfig{Type: constraintType, converted: attrs}
}

// UnmarshalJSON keeps the raw attributes for decoding once the type is known.
func (c *ConstraintConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var typ string
	if rawType, ok := raw["type"]; ok {
		var err error
		if typ, err = utils.AssertType[string](rawType); err != nil {
			return errors.Wrap(err, "constraint type")
		}
		delete(raw, "type")
	}
	*c = ConstraintConfig{Type: typ, Attributes: raw}
	return nil
}

// MarshalJSON writes the type next to the attributes.
func (c ConstraintConfig) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	if c.converted != nil {
		var attrs map[string]interface{}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &attrs})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(c.converted); err != nil {
			return nil, err
		}
		for k, v := range attrs {
			out[k] = v
		}
	} else {
		for k, v := range c.Attributes {
			out[k] = v
		}
	}
	out["type"] = c.Type
	return json.Marshal(out)
}

// Decode returns the typed attributes for the entry's type.
func (c *ConstraintConfig) Decode() (ConstraintAttributes, error) {
	if c.converted != nil {
		return c.converted, nil
	}
	newAttrs, ok := constraintTypes[c.Type]
	if !ok {
		return nil, errors.Errorf("unknown constraint type %q", c.Type)
	}
	attrs := newAttrs()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      attrs,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(c.Attributes); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s constraint", c.Type)
	}
	c.converted = attrs
	return attrs, nil
}

// Validate decodes the entry and validates its attributes.
func (c *ConstraintConfig) Validate(path string) error {
	attrs, err := c.Decode()
	if err != nil {
		return newValidationError(path, "type", "%v", err)
	}
	return attrs.Validate(path)
}

func (c ConstraintConfig) String() string {
	return fmt.Sprintf("%s constraint", c.Type)
}
