package trajectory

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Group is the result of generating one path: the trajectories that could be computed and an
// optional non-fatal error explaining what could not.
type Group struct {
	PathName  string
	Generator string

	trajectories map[string]*Trajectory
	order        []string
	err          error
}

// NewGroup creates an empty group for the named path.
func NewGroup(pathName, generator string) *Group {
	return &Group{
		PathName:     pathName,
		Generator:    generator,
		trajectories: map[string]*Trajectory{},
	}
}

// AddTrajectory adds or replaces the trajectory with the same name.
func (g *Group) AddTrajectory(traj *Trajectory) {
	if _, ok := g.trajectories[traj.Name()]; !ok {
		g.order = append(g.order, traj.Name())
	}
	g.trajectories[traj.Name()] = traj
}

// Trajectory returns the named trajectory, or nil if it was not generated.
func (g *Group) Trajectory(name string) *Trajectory {
	return g.trajectories[name]
}

// Names returns the names of the trajectories in the order they were added.
func (g *Group) Names() []string {
	return append([]string(nil), g.order...)
}

// SetError records why generation was incomplete.
func (g *Group) SetError(err error) {
	g.err = err
}

// Err returns the error recorded on the group, if any.
func (g *Group) Err() error {
	return g.err
}

// HasError returns whether generation recorded an error.
func (g *Group) HasError() bool {
	return g.err != nil
}

// String renders a table summarizing each trajectory.
func (g *Group) String() string {
	t := table.NewWriter()
	t.SetTitle("%s (%s)", g.PathName, g.Generator)
	t.AppendHeader(table.Row{"Trajectory", "Points", "Duration", "Distance", "Max Velocity"})
	names := g.Names()
	sort.SliceStable(names, func(i, j int) bool { return names[i] == Main && names[j] != Main })
	for _, name := range names {
		traj := g.trajectories[name]
		t.AppendRow(table.Row{
			name,
			traj.Len(),
			fmt.Sprintf("%.3f", traj.Duration()),
			fmt.Sprintf("%.3f", traj.Distance()),
			fmt.Sprintf("%.3f", traj.MaxVelocity()),
		})
	}
	if g.err != nil {
		t.SetCaption("error: %s", g.err.Error())
	}
	return t.Render()
}
