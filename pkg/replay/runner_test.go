package replay_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/replay"
)

func runFile(t *testing.T, name string) *replay.Result {
	t.Helper()

	sc, err := replay.LoadScenario(filepath.Join("testdata", name))
	require.NoError(t, err)

	res, err := replay.NewRunner(replay.WithSensorID("runner")).Run(context.Background(), sc)
	require.NoError(t, err)
	return res
}

func TestRunnerTestdataScenariosPass(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			res := runFile(t, filepath.Base(f))
			assert.True(t, res.Passed(), "failures: %v", res.Failures)
			assert.Equal(t, "runner", res.SensorID)
		})
	}
}

func TestRunnerDeadlineFiresOnce(t *testing.T) {
	res := runFile(t, "grant_without_sample.yaml")
	require.True(t, res.Passed(), "failures: %v", res.Failures)

	assert.Equal(t, 1, res.Count(bearing.StatusUnsupported))
	for _, p := range res.States {
		if p.State.Status == bearing.StatusUnsupported {
			assert.Equal(t, 100*time.Millisecond, p.At)
		}
	}
	assert.Equal(t, 400*time.Millisecond, res.Duration)
}

func TestRunnerBearingPublishedAtSampleTime(t *testing.T) {
	res := runFile(t, "grant_then_sample.yaml")
	require.True(t, res.Passed(), "failures: %v", res.Failures)

	assert.Zero(t, res.Count(bearing.StatusUnsupported))

	var at []time.Duration
	for _, p := range res.States {
		if p.State.HasBearing() {
			at = append(at, p.At)
		}
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, at)
}

func TestRunnerReportsFailedExpectations(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
name: wrong
platform: gated
permission: denied
steps:
  - at: 0s
    request: true
  - at: 1ms
    expect: {status: READY, permission: GRANTED}
`))
	require.NoError(t, err)

	res, err := replay.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, res.Passed())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Step)
	assert.Contains(t, res.Failures[0].Message, "expected GRANTED, got DENIED")
}

func TestRunnerPermissionError(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
name: failing api
platform: gated
permission: error
steps:
  - at: 0s
    request: true
  - at: 0s
    expect: {status: UNSUPPORTED, permission: DEFAULT, no_bearing: true}
`))
	require.NoError(t, err)

	res, err := replay.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestRunnerHangStaysPending(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
name: hanging api
platform: gated
permission: hang
sensor: {timeout: 50ms}
steps:
  - at: 0s
    request: true
  - at: 500ms
    expect: {status: PENDING}
`))
	require.NoError(t, err)

	res, err := replay.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestRunnerRerequestCancelsOldDeadline(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
name: rerequest
platform: gated
permission: granted
permission_delay: 30ms
sensor: {timeout: 100ms}
steps:
  - at: 0s
    request: true
  - at: 80ms
    request: true
  - at: 120ms
    event: {compass_heading: 45}
  - at: 180ms
    expect: {status: READY, permission: GRANTED, bearing: 315}
  - at: 300ms
    expect: {status: READY, bearing: 315}
`))
	require.NoError(t, err)

	res, err := replay.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
	assert.Zero(t, res.Count(bearing.StatusUnsupported))
}

func TestRunnerUngatedRequestIsUnsupported(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
name: ungated request
platform: ungated
steps:
  - at: 0s
    request: true
  - at: 0s
    expect: {status: UNSUPPORTED, no_bearing: true}
`))
	require.NoError(t, err)

	res, err := replay.NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestRunnerRejectsInvalidScenario(t *testing.T) {
	_, err := replay.NewRunner().Run(context.Background(), &replay.Scenario{Name: "x"})
	assert.Error(t, err)
}
