package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/pathgen/logging"
)

// Read reads a path file from disk, substituting environment variables, and validates it.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*PathFile, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a path file from the given reader and validates it.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*PathFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := PathFile{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode paths from json")
	}
	if err := f.Ensure(); err != nil {
		return nil, err
	}
	paths := 0
	for _, g := range f.Groups {
		paths += len(g.Paths)
	}
	logger.Debugw("read path file", "file", originalPath, "units", f.Units, "groups", len(f.Groups), "paths", paths)
	return &f, nil
}

// ReadRobot reads a robot file from disk, substituting environment variables, and validates it.
func ReadRobot(ctx context.Context, filePath string, logger logging.Logger) (*Robot, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return RobotFromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// RobotFromReader reads a robot file from the given reader and validates it.
func RobotFromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Robot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	robot := Robot{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&robot); err != nil {
		return nil, errors.Wrapf(err, "failed to decode robot from json")
	}
	if err := robot.Ensure(); err != nil {
		return nil, err
	}
	logger.Debugw("read robot file", "file", originalPath, "name", robot.Name, "drivetype", robot.DriveType)
	return &robot, nil
}
