package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/user/framescribe/pkg/ports"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFrame(ports.FrameKept)
	m.ObserveFrame(ports.FrameKept)
	m.ObserveFrame(ports.FrameSkipped)
	m.ObserveRun("ok", 3*time.Second)
	m.ObserveStage("decode", 200*time.Millisecond)
	m.ObserveStage("caption", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames.WithLabelValues(ports.FrameKept)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames.WithLabelValues(ports.FrameSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.frames))
	assert.Equal(t, 2, testutil.CollectAndCount(m.stages))
}

func TestNop(t *testing.T) {
	var m ports.Metrics = NewNop()
	m.ObserveFrame(ports.FrameKept)
	m.ObserveStage("decode", time.Second)
	m.ObserveRun("ok", time.Second)
}
