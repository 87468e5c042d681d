package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
	gtestutils "go.viam.com/utils/testutils"

	"go.viam.com/pathgen/logging"
	"go.viam.com/pathgen/testutils"
	"go.viam.com/pathgen/trajectory"
)

const testPaths = `{
	"units": "in",
	"groups": [{
		"name": "auto",
		"paths": [
			{
				"name": "score",
				"maxvelocity": 10,
				"maxacceleration": 5,
				"points": [{"x": 0, "y": 0, "heading": 0}, {"x": 120, "y": 0, "heading": 0}]
			},
			{
				"name": "swerve",
				"generator": "ErrorCodeXeroSwerve",
				"maxvelocity": 10,
				"maxacceleration": 5,
				"points": [{"x": 0, "y": 0}, {"x": 10, "y": 0}]
			}
		]
	}]
}`

const testRobot = `{"name": "bot", "drivetype": "tank", "lengthunits": "in", "effectivewidth": 2, "timestep": 0.02}`

func readCSV(t *testing.T, file string) [][]string {
	t.Helper()
	//nolint:gosec
	f, err := os.Open(file)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	return records
}

// restoreGlobalLogger puts back the global logger that mainWithArgs replaces.
func restoreGlobalLogger(t *testing.T) {
	t.Helper()
	prev := logging.Global()
	t.Cleanup(func() {
		logging.ReplaceGlobal(prev)
	})
}

func TestMainWithArgs(t *testing.T) {
	restoreGlobalLogger(t)
	logger, logs := logging.NewObservedTestLogger(t)
	pathsFile := testutils.WriteTempFile(t, "paths.json", testPaths)
	robotFile := testutils.WriteTempFile(t, "robot.json", testRobot)
	outDir := filepath.Join(t.TempDir(), "out")

	var summary bytes.Buffer
	prevStdout := stdout
	stdout = &summary
	defer func() {
		stdout = prevStdout
	}()

	err := mainWithArgs(context.Background(), []string{
		"pathgen", "--robot", robotFile, "--out", outDir, "--summary", pathsFile,
	}, logger)
	test.That(t, err, test.ShouldBeNil)

	for _, name := range []string{trajectory.Main, trajectory.Left, trajectory.Right} {
		records := readCSV(t, filepath.Join(outDir, "auto-score-"+name+".csv"))
		test.That(t, records[0], test.ShouldResemble, trajectory.FieldNames())
		test.That(t, len(records), test.ShouldBeGreaterThan, 700)

		last := records[len(records)-1]
		tm, err := strconv.ParseFloat(last[0], 64)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tm, test.ShouldAlmostEqual, 14, 1e-6)
		x, err := strconv.ParseFloat(last[1], 64)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, x, test.ShouldAlmostEqual, 120, 1e-6)
	}

	_, err = os.Stat(filepath.Join(outDir, "auto-swerve-Main.csv"))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("path generated with errors").Len(), test.ShouldEqual, 1)

	test.That(t, summary.String(), test.ShouldContainSubstring, "score (CheesyPoofs)")
	test.That(t, summary.String(), test.ShouldContainSubstring, "not supported (yet)")
}

func TestMainWithArgsLogLevel(t *testing.T) {
	restoreGlobalLogger(t)
	logger, logs := logging.NewObservedTestLogger(t)
	pathsFile := testutils.WriteTempFile(t, "paths.json", testPaths)

	err := mainWithArgs(context.Background(), []string{
		"pathgen", "--log-level", "WARN", "--out", t.TempDir(), pathsFile,
	}, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, logger.GetLevel(), test.ShouldEqual, logging.WARN)
	test.That(t, logging.Global(), test.ShouldEqual, logger)
	test.That(t, logs.FilterMessage("generated paths").Len(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("path generated with errors").Len(), test.ShouldEqual, 1)
}

func TestMainWithArgsTimestep(t *testing.T) {
	restoreGlobalLogger(t)
	logger := logging.NewTestLogger(t)
	pathsFile := testutils.WriteTempFile(t, "paths.json", testPaths)
	outDir := t.TempDir()

	err := mainWithArgs(context.Background(), []string{"pathgen", "--out", outDir, "--timestep", "100ms", pathsFile}, logger)
	test.That(t, err, test.ShouldBeNil)

	records := readCSV(t, filepath.Join(outDir, "auto-score-Main.csv"))
	second, err := strconv.ParseFloat(records[2][0], 64)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldAlmostEqual, 0.1)

	_, err = os.Stat(filepath.Join(outDir, "auto-score-Left.csv"))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestMainWithArgsWatch(t *testing.T) {
	restoreGlobalLogger(t)
	logger := logging.NewBlankLogger("pathgen")
	pathsFile := testutils.WriteTempFile(t, "paths.json", testPaths)
	outDir := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "pathgen.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- mainWithArgs(ctx, []string{
			"pathgen", "--watch", "--log-level", "debug", "--out", outDir, "--log-file", logFile, pathsFile,
		}, logger)
	}()

	gtestutils.WaitForAssertion(t, func(tb testing.TB) {
		_, err := os.Stat(filepath.Join(outDir, "auto-score-Main.csv"))
		test.That(tb, err, test.ShouldBeNil)
	})

	renamed := strings.Replace(testPaths, `"name": "auto"`, `"name": "teleop"`, 1)
	test.That(t, os.WriteFile(pathsFile, []byte(renamed), 0o600), test.ShouldBeNil)
	gtestutils.WaitForAssertion(t, func(tb testing.TB) {
		_, err := os.Stat(filepath.Join(outDir, "teleop-score-Main.csv"))
		test.That(tb, err, test.ShouldBeNil)
	})

	cancel()
	test.That(t, <-done, test.ShouldBeNil)

	//nolint:gosec
	data, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "input changed, regenerating")
	test.That(t, string(data), test.ShouldContainSubstring, "generated path")
}

func TestMainWithArgsErrors(t *testing.T) {
	restoreGlobalLogger(t)
	logger := logging.NewTestLogger(t)
	pathsFile := testutils.WriteTempFile(t, "paths.json", testPaths)

	for _, tc := range []struct {
		name string
		args []string
		err  string
	}{
		{"no paths file", []string{"pathgen"}, "required"},
		{"unknown flag", []string{"pathgen", "--bogus", pathsFile}, "not defined"},
		{"missing paths file", []string{"pathgen", "/nonexistent/paths.json"}, "cannot read paths file"},
		{"missing robot file", []string{"pathgen", "--robot", "/nonexistent/robot.json", pathsFile}, "cannot read robot file"},
		{"bad timestep", []string{"pathgen", "--timestep", "soon", pathsFile}, "invalid timestep"},
		{"negative timestep", []string{"pathgen", "--timestep", "-5ms", pathsFile}, "must be positive"},
		{"bad log level", []string{"pathgen", "--log-level", "loud", pathsFile}, "invalid log level"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := mainWithArgs(context.Background(), tc.args, logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}
