package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaleap/qcloud/job"
)

func TestToResult(t *testing.T) {
	payload := &job.ResultPayload{
		Histogram: map[string]float64{"00": 0.25, "11": 0.75},
		Shots:     400,
	}

	result, err := ToResult(payload, "job-1", 400, 42)
	require.NoError(t, err)

	assert.Equal(t, "job-1", result.JobID)
	assert.Equal(t, 400, result.Repetitions)
	assert.Equal(t, map[string]int{"00": 100, "11": 300}, result.Counts)
	require.Len(t, result.Measurements, 400)
	for _, shot := range result.Measurements {
		require.Len(t, shot, 2)
		assert.Contains(t, [][]int{{0, 0}, {1, 1}}, shot)
	}
}

func TestToResult_SeedDeterminism(t *testing.T) {
	payload := &job.ResultPayload{
		Histogram: map[string]float64{"0": 0.5, "1": 0.5},
		Shots:     50,
	}

	first, err := ToResult(payload, "job-1", 50, 7)
	require.NoError(t, err)
	second, err := ToResult(payload, "job-1", 50, 7)
	require.NoError(t, err)
	assert.Equal(t, first.Measurements, second.Measurements)

	other, err := ToResult(payload, "job-1", 50, 8)
	require.NoError(t, err)
	assert.NotEqual(t, first.Measurements, other.Measurements)
}

func TestToResult_PayloadNotMutated(t *testing.T) {
	payload := &job.ResultPayload{
		Histogram: map[string]float64{"0": 0.3, "1": 0.7},
		Shots:     10,
	}

	_, err := ToResult(payload, "job-1", 10, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"0": 0.3, "1": 0.7}, payload.Histogram)
	assert.Equal(t, 10, payload.Shots)
}

func TestToResult_ShotCountFallbacks(t *testing.T) {
	t.Run("payload shots win over repetitions", func(t *testing.T) {
		payload := &job.ResultPayload{
			Histogram: map[string]float64{"0": 1.0},
			Shots:     5,
		}
		result, err := ToResult(payload, "job-1", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Repetitions)
		assert.Equal(t, 5, result.Counts["0"])
	})

	t.Run("repetitions fill in missing shots", func(t *testing.T) {
		payload := &job.ResultPayload{
			Histogram: map[string]float64{"0": 1.0},
		}
		result, err := ToResult(payload, "job-1", 8, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, result.Repetitions)
		assert.Equal(t, 8, result.Counts["0"])
	})
}

func TestToResult_Errors(t *testing.T) {
	t.Run("nil payload", func(t *testing.T) {
		_, err := ToResult(nil, "job-1", 10, 1)
		assert.ErrorContains(t, err, "payload is required")
	})

	t.Run("missing histogram", func(t *testing.T) {
		_, err := ToResult(&job.ResultPayload{Shots: 10}, "job-1", 10, 1)
		assert.ErrorContains(t, err, "has no histogram")
	})

	t.Run("no shot count anywhere", func(t *testing.T) {
		payload := &job.ResultPayload{Histogram: map[string]float64{"0": 1.0}}
		_, err := ToResult(payload, "job-1", 0, 1)
		assert.ErrorContains(t, err, "has no shot count")
	})

	t.Run("negative probability", func(t *testing.T) {
		payload := &job.ResultPayload{
			Histogram: map[string]float64{"0": -0.5, "1": 1.5},
			Shots:     10,
		}
		_, err := ToResult(payload, "job-1", 10, 1)
		assert.ErrorContains(t, err, "negative probability")
	})

	t.Run("non-binary outcome string", func(t *testing.T) {
		payload := &job.ResultPayload{
			Histogram: map[string]float64{"0x": 1.0},
			Shots:     10,
		}
		_, err := ToResult(payload, "job-1", 10, 1)
		assert.ErrorContains(t, err, "invalid outcome bitstring")
	})
}
