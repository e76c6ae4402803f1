package fu

import (
	"testing"

	"gotest.tools/assert"
)

func Test_StrSet(t *testing.T) {
	s := MakeStrSet([]string{"b", "a", "c"})
	q := MakeStrSet([]string{"c", "d"})
	assert.DeepEqual(t, s.List(), []string{"a", "b", "c"})
	assert.DeepEqual(t, s.Difference(q).List(), []string{"a", "b"})
	assert.Assert(t, s.Intersection(q) == 1)
	assert.DeepEqual(t, s.Union(q).List(), []string{"a", "b", "c", "d"})
}

func Test_Mean(t *testing.T) {
	assert.Assert(t, Mean([]float64{1, 2, 3}) == 2)
	assert.Assert(t, Mean([]float64{0.5}) == 0.5)
}

func Test_Indmaxd(t *testing.T) {
	assert.Assert(t, Indmaxd([]float64{0.1, 0.5, 0.3}) == 1)
	assert.Assert(t, Indmaxd([]float64{0.5, 0.5}) == 0)
	assert.Assert(t, Indmaxd(nil) == 0)
}
