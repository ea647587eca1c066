package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPushPopAccumulates(t *testing.T) {
	ts := NewTimers()
	ts.Push("background_mesh")
	time.Sleep(time.Millisecond)
	ts.Pop("background_mesh")

	report := ts.Report()
	assert.Greater(t, report["background_mesh"], time.Duration(0))
}

func TestPopWithoutPushIsNoop(t *testing.T) {
	ts := NewTimers()
	ts.Pop("never_pushed")
	assert.Empty(t, ts.Report())
}

func TestStringIncludesLabels(t *testing.T) {
	ts := NewTimers()
	ts.Push("scalar_field")
	ts.Pop("scalar_field")
	assert.Contains(t, ts.String(), "scalar_field")
}
