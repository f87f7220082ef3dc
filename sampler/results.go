package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantaleap/qcloud/job"
)

// Result is the framework-native view of a job's output: an outcome
// histogram scaled to counts plus per-shot measurement records.
type Result struct {
	JobID        string
	Repetitions  int
	Counts       map[string]int
	Measurements [][]int
}

// ToResult translates a raw result payload. The per-shot records are
// resampled from the outcome histogram with the given seed, so repeated
// translation of the same payload is deterministic. The payload itself
// is never mutated.
func ToResult(payload *job.ResultPayload, jobID string, repetitions int, seed uint64) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("result payload is required")
	}
	if len(payload.Histogram) == 0 {
		return nil, fmt.Errorf("result payload for job %q has no histogram", jobID)
	}

	shots := payload.Shots
	if shots <= 0 {
		shots = repetitions
	}
	if repetitions <= 0 {
		repetitions = shots
	}
	if shots <= 0 {
		return nil, fmt.Errorf("result payload for job %q has no shot count", jobID)
	}

	// Stable outcome order so sampling is reproducible for a given seed
	outcomes := make([]string, 0, len(payload.Histogram))
	for outcome := range payload.Histogram {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)

	counts := make(map[string]int, len(outcomes))
	weights := make([]float64, len(outcomes))
	for i, outcome := range outcomes {
		p := payload.Histogram[outcome]
		if p < 0 {
			return nil, fmt.Errorf("result payload for job %q has negative probability for outcome %q", jobID, outcome)
		}
		counts[outcome] = int(math.Round(p * float64(shots)))
		weights[i] = p
	}

	dist := distuv.NewCategorical(weights, rand.NewPCG(seed, seed))
	measurements := make([][]int, repetitions)
	for i := range measurements {
		outcome := outcomes[int(dist.Rand())]
		bits, err := parseBits(outcome)
		if err != nil {
			return nil, fmt.Errorf("result payload for job %q: %w", jobID, err)
		}
		measurements[i] = bits
	}

	return &Result{
		JobID:        jobID,
		Repetitions:  repetitions,
		Counts:       counts,
		Measurements: measurements,
	}, nil
}

func parseBits(outcome string) ([]int, error) {
	bits := make([]int, len(outcome))
	for i, r := range outcome {
		switch r {
		case '0':
			bits[i] = 0
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("invalid outcome bitstring %q", outcome)
		}
	}
	return bits, nil
}
