package generator

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNilPath is recorded on the group when there is no path to generate.
var ErrNilPath = errors.New("no path to generate")

// UnsupportedGeneratorError is recorded on a group whose path names a generator that cannot run.
type UnsupportedGeneratorError struct {
	Type GeneratorType
}

func (e *UnsupportedGeneratorError) Error() string {
	return fmt.Sprintf("generator type '%s' not supported (yet)", string(e.Type))
}

// NewGenerationPanicError wraps a panic captured while generating a path.
func NewGenerationPanicError(pathName string, thePanic interface{}) error {
	return errors.Errorf("generating path %q panicked: %v", pathName, thePanic)
}
