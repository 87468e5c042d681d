package motionplan

import (
	"math"
	"sort"

	"go.viam.com/pathgen/spatialmath"
	"go.viam.com/pathgen/utils"
)

const endpointTolerance = 1e-9

// DistanceView resamples a pose sequence at a fixed arc length step and answers lookups by
// distance along the resampled path.
type DistanceView struct {
	step      float64
	points    []spatialmath.PoseWithCurvature
	distances []float64
}

// NewDistanceView resamples poses every step units of arc length. Both endpoints are always kept.
func NewDistanceView(poses []spatialmath.Pose2D, step float64) (*DistanceView, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, ErrInvalidStep
	}
	if len(poses) == 0 {
		return nil, ErrEmptyPath
	}

	inputDist := cumulativeDistances(len(poses), func(i int) spatialmath.Pose2D { return poses[i] })
	total := inputDist[len(inputDist)-1]

	resampled := make([]spatialmath.Pose2D, 0, int(math.Ceil(total/step))+1)
	cursor := 0
	sample := func(d float64) {
		for cursor < len(poses)-2 && inputDist[cursor+1] < d {
			cursor++
		}
		if len(poses) == 1 {
			resampled = append(resampled, poses[0])
			return
		}
		frac := utils.SafeDivide(d-inputDist[cursor], inputDist[cursor+1]-inputDist[cursor], 0)
		resampled = append(resampled, spatialmath.Interpolate(poses[cursor], poses[cursor+1], frac))
	}

	last := 0.
	for k := 0; float64(k)*step <= total; k++ {
		last = float64(k) * step
		sample(last)
	}
	if total-last > endpointTolerance {
		resampled = append(resampled, poses[len(poses)-1])
	}

	dv := &DistanceView{step: step, points: make([]spatialmath.PoseWithCurvature, len(resampled))}
	for i, p := range resampled {
		dv.points[i].Pose2D = p
		if i > 0 && i < len(resampled)-1 {
			dv.points[i].Curvature = spatialmath.Curvature(resampled[i-1], p, resampled[i+1])
		}
	}
	dv.distances = cumulativeDistances(len(resampled), func(i int) spatialmath.Pose2D { return resampled[i] })
	return dv, nil
}

func cumulativeDistances(n int, at func(int) spatialmath.Pose2D) []float64 {
	dist := make([]float64, n)
	for i := 1; i < n; i++ {
		dist[i] = dist[i-1] + spatialmath.Distance(at(i-1), at(i))
	}
	return dist
}

// Len returns the number of resampled points.
func (dv *DistanceView) Len() int {
	return len(dv.points)
}

// Step returns the resampling step.
func (dv *DistanceView) Step() float64 {
	return dv.step
}

// Length returns the arc length of the resampled path.
func (dv *DistanceView) Length() float64 {
	return dv.distances[len(dv.distances)-1]
}

// Index returns the i-th resampled point.
func (dv *DistanceView) Index(i int) spatialmath.PoseWithCurvature {
	return dv.points[i]
}

// Distance returns the arc length from the start to the i-th resampled point.
func (dv *DistanceView) Distance(i int) float64 {
	return dv.distances[i]
}

// Distances returns a copy of the cumulative distance table.
func (dv *DistanceView) Distances() []float64 {
	return append([]float64(nil), dv.distances...)
}

// At returns the pose at the given arc length, interpolated between resampled points.
func (dv *DistanceView) At(dist float64) spatialmath.PoseWithCurvature {
	if dist <= 0 || len(dv.points) == 1 {
		return dv.points[0]
	}
	if dist >= dv.Length() {
		return dv.points[len(dv.points)-1]
	}
	// first index with distance >= dist, always in [1, len-1] here
	hi := sort.SearchFloat64s(dv.distances, dist)
	lo := hi - 1
	frac := utils.SafeDivide(dist-dv.distances[lo], dv.distances[hi]-dv.distances[lo], 0)
	return spatialmath.InterpolateWithCurvature(dv.points[lo], dv.points[hi], frac)
}

// CurvatureAt returns the curvature of the resampled point nearest to dist.
func (dv *DistanceView) CurvatureAt(dist float64) float64 {
	return dv.points[dv.nearestIndex(dist)].Curvature
}

func (dv *DistanceView) nearestIndex(dist float64) int {
	n := len(dv.distances)
	hi := sort.SearchFloat64s(dv.distances, dist)
	switch {
	case hi <= 0:
		return 0
	case hi >= n:
		return n - 1
	case dist-dv.distances[hi-1] < dv.distances[hi]-dist:
		return hi - 1
	default:
		return hi
	}
}
