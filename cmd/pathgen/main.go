// Package main generates trajectories for every path in a paths file and writes them as CSV.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/pathgen/config"
	"go.viam.com/pathgen/generator"
	"go.viam.com/pathgen/logging"
	"go.viam.com/pathgen/trajectory"
)

var (
	logger = logging.NewLogger("pathgen")
	stdout io.Writer = os.Stdout
)

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// watchDebounce collapses the burst of events an editor produces for a single save.
const watchDebounce = 100 * time.Millisecond

// Arguments for the command.
type Arguments struct {
	PathsFile string `flag:"0,required,usage=paths file"`
	RobotFile string `flag:"robot,usage=robot file; tank robots also get left and right trajectories"`
	OutDir    string `flag:"out,default=.,usage=directory to write trajectory csv files to"`
	Timestep  string `flag:"timestep,usage=time between trajectory samples such as 20ms; overrides the robot"`
	Summary   bool   `flag:"summary,usage=print a summary table for every path"`
	Watch     bool   `flag:"watch,usage=regenerate whenever the paths or robot file changes"`
	LogFile   string `flag:"log-file,usage=also write json logs to this size rotated file"`
	LogLevel  string `flag:"log-level,default=info,usage=minimum log level: debug, info, warn or error"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.PathsFile == "" {
		return errors.New("a paths file is required")
	}
	level, err := logging.LevelFromString(argsParsed.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logger.SetLevel(level)
	logging.ReplaceGlobal(logger)
	if argsParsed.LogFile != "" {
		core, closer := logging.NewFileAppender(argsParsed.LogFile)
		logger.AddAppender(core)
		defer utils.UncheckedErrorFunc(closer.Close)
	}

	var opts []generator.Option
	if argsParsed.Timestep != "" {
		timestep, err := time.ParseDuration(argsParsed.Timestep)
		if err != nil {
			return errors.Wrap(err, "invalid timestep")
		}
		if timestep <= 0 {
			return errors.Errorf("timestep must be positive, got %s", timestep)
		}
		opts = append(opts, generator.WithTimestep(timestep.Seconds()))
	}

	if argsParsed.Watch {
		return watch(ctx, argsParsed, opts, logger)
	}
	return generate(ctx, argsParsed, opts, logger)
}

// generate reads the input files and writes a csv file for every trajectory of every path.
func generate(ctx context.Context, argsParsed Arguments, opts []generator.Option, logger logging.Logger) error {
	pathFile, err := config.Read(ctx, argsParsed.PathsFile, logger)
	if err != nil {
		return errors.Wrapf(err, "cannot read paths file %q", argsParsed.PathsFile)
	}

	var robot *config.Robot
	if argsParsed.RobotFile != "" {
		robot, err = config.ReadRobot(ctx, argsParsed.RobotFile, logger)
		if err != nil {
			return errors.Wrapf(err, "cannot read robot file %q", argsParsed.RobotFile)
		}
	}

	var names []string
	var paths []*config.Path
	for _, g := range pathFile.Groups {
		for i := range g.Paths {
			names = append(names, config.FullName(g.Name, g.Paths[i].Name))
			paths = append(paths, &g.Paths[i])
		}
	}

	gen := generator.New(robot, logger.Sublogger("generator"), opts...)
	groups, elapsed, err := gen.GenerateAll(ctx, paths)
	if err != nil {
		return err
	}
	logger.Infow("generated paths", "paths", len(groups), "elapsed", elapsed)

	if err := os.MkdirAll(argsParsed.OutDir, 0o750); err != nil {
		return err
	}
	var writeErr error
	for i, group := range groups {
		if group.HasError() {
			logger.Warnw("path generated with errors", "path", names[i], "error", group.Err())
		}
		for _, trajName := range group.Names() {
			file := filepath.Join(argsParsed.OutDir, fmt.Sprintf("%s-%s.csv", names[i], trajName))
			writeErr = multierr.Append(writeErr, writeTrajectoryFile(file, group.Trajectory(trajName)))
		}
		if argsParsed.Summary {
			fmt.Fprintln(stdout, group.String())
		}
	}
	return writeErr
}

// watch generates once and then again after every change to the input files until ctx is done.
// Failed runs are logged so that a bad edit does not end the session.
func watch(ctx context.Context, argsParsed Arguments, opts []generator.Option, logger logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(watcher.Close)

	inputs := map[string]bool{}
	for _, file := range []string{argsParsed.PathsFile, argsParsed.RobotFile} {
		if file == "" {
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		inputs[abs] = true
		// editors often replace files on save, so watch the directory rather than the file.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrapf(err, "cannot watch %q", file)
		}
	}

	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	debounced := debounce.New(watchDebounce)

	if err := generate(ctx, argsParsed, opts, logger); err != nil {
		logger.Errorw("generation failed", "error", err)
	}
	logger.Infow("watching for changes", "files", len(inputs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if inputs[filepath.Clean(event.Name)] && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				debounced(notify)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)
		case <-changed:
			logger.Infow("input changed, regenerating")
			if err := generate(ctx, argsParsed, opts, logger); err != nil {
				logger.Errorw("generation failed", "error", err)
			}
		}
	}
}

func writeTrajectoryFile(file string, traj *trajectory.Trajectory) (err error) {
	//nolint:gosec
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return writeTrajectory(f, traj)
}

// writeTrajectory writes one row per point with a column per trajectory field.
func writeTrajectory(w io.Writer, traj *trajectory.Trajectory) error {
	names := trajectory.FieldNames()
	columns := make([][]float64, len(names))
	for i, name := range names {
		column, err := traj.Field(name)
		if err != nil {
			return err
		}
		columns[i] = column
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return err
	}
	row := make([]string, len(names))
	for p := 0; p < traj.Len(); p++ {
		for i := range columns {
			row[i] = strconv.FormatFloat(columns[i][p], 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
