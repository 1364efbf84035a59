package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	runs    int
	samples int
	err     error
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordTrajectory(_ string, _ time.Time, s []StepSample) error {
	r.samples += len(s)
	return nil
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)
	assert.NoError(t, m.RecordRun(RunEvent{RunID: "r"}))
	assert.NoError(t, m.RecordTrajectory("r", time.Now(), []StepSample{{Second: 1}, {Second: 2}}))
	assert.Equal(t, 1, s1.runs)
	assert.Equal(t, 1, s2.runs)
	assert.Equal(t, 2, s1.samples)
}

func TestMultiSink_ContinuesAfterError(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordSink{err: boom}
	ok := &runOnlySink{}
	err := NewMultiSink(failing, ok).RecordRun(RunEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.runs)
}

type closingSink struct {
	runOnlySink
	closed bool
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestMultiSink_Close(t *testing.T) {
	c := &closingSink{}
	assert.NoError(t, NewMultiSink(c, &runOnlySink{}).Close())
	assert.True(t, c.closed)
}
