package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStage_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(PipelineStageErrors.WithLabelValues(StageEmbed))

	ObserveStage(StageEmbed, time.Now(), nil)
	assert.Equal(t, before, testutil.ToFloat64(PipelineStageErrors.WithLabelValues(StageEmbed)))

	ObserveStage(StageEmbed, time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(PipelineStageErrors.WithLabelValues(StageEmbed)))
}

func TestObserveStage_RecordsDuration(t *testing.T) {
	before := testutil.CollectAndCount(PipelineStageDuration)
	ObserveStage(StageSearch, time.Now().Add(-10*time.Millisecond), nil)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(PipelineStageDuration), before)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(PipelineStageDuration), 1)
}
