package metrics

import (
	"math"
	"testing"

	"gotest.tools/assert"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func Test_Confuse(t *testing.T) {
	yTrue := []float64{1, 1, 0, 0, 1, 0}
	yProb := []float64{0.9, 0.4, 0.6, 0.2, 0.7, 0.5}
	c := Confuse(yTrue, yProb, Threshold)
	assert.Assert(t, c.TP == 2) // 0.9, 0.7
	assert.Assert(t, c.FN == 1) // 0.4
	assert.Assert(t, c.FP == 2) // 0.6 and 0.5 (threshold is inclusive)
	assert.Assert(t, c.TN == 1) // 0.2
}

func Test_ConfusionPanel(t *testing.T) {
	c := Confusion{TP: 6, FP: 2, TN: 8, FN: 4}
	assert.Assert(t, closeTo(c.Accuracy(), 0.7))
	assert.Assert(t, closeTo(c.Precision(), 0.75))
	assert.Assert(t, closeTo(c.Recall(), 0.6))
	assert.Assert(t, closeTo(c.F1(), 2*0.75*0.6/(0.75+0.6)))
	// mcc = (6*8-2*4)/sqrt(8*10*10*12)
	assert.Assert(t, closeTo(c.Matthews(), 40/math.Sqrt(9600)))
	// po=0.7, pe=0.4*0.5+0.6*0.5=0.5
	assert.Assert(t, closeTo(c.CohenKappa(), (0.7-0.5)/0.5))
}

func Test_ConfusionDegenerate(t *testing.T) {
	c := Confusion{}
	assert.Assert(t, c.Accuracy() == 0)
	assert.Assert(t, c.Precision() == 0)
	assert.Assert(t, c.Recall() == 0)
	assert.Assert(t, c.F1() == 0)
	assert.Assert(t, c.Matthews() == 0)
	assert.Assert(t, c.CohenKappa() == 0)
}

func Test_ROCCurvePerfect(t *testing.T) {
	yTrue := []float64{1, 1, 0, 0}
	yProb := []float64{0.9, 0.8, 0.2, 0.1}
	r := Evaluate(yTrue, yProb)
	assert.Assert(t, closeTo(r.AUROC, 1))
	assert.Assert(t, closeTo(r.Accuracy, 1))
	assert.Assert(t, closeTo(r.F1, 1))
	assert.Assert(t, closeTo(r.Matthews, 1))
	assert.Assert(t, closeTo(r.CohenKappa, 1))
}

func Test_ROCCurveRandom(t *testing.T) {
	// a constant score ranks positives and negatives identically
	yTrue := []float64{1, 0, 1, 0}
	yProb := []float64{0.5, 0.5, 0.5, 0.5}
	r := ROCCurve(yTrue, yProb)
	assert.DeepEqual(t, r.X, []float64{0, 1})
	assert.DeepEqual(t, r.Y, []float64{0, 1})
	res := Evaluate(yTrue, yProb)
	assert.Assert(t, closeTo(res.AUROC, 0.5))
}

func Test_ROCCurveSingleClass(t *testing.T) {
	r := ROCCurve([]float64{1, 1}, []float64{0.9, 0.1})
	assert.DeepEqual(t, r.X, []float64{0, 1})
	assert.DeepEqual(t, r.Y, []float64{0, 1})
}

func Test_ROCCurveMonotonic(t *testing.T) {
	yTrue := []float64{1, 0, 1, 0, 1, 1, 0}
	yProb := []float64{0.9, 0.8, 0.7, 0.6, 0.55, 0.3, 0.1}
	r := ROCCurve(yTrue, yProb)
	assert.Assert(t, r.X[0] == 0 && r.Y[0] == 0)
	n := len(r.X)
	assert.Assert(t, r.X[n-1] == 1 && r.Y[n-1] == 1)
	for i := 1; i < n; i++ {
		assert.Assert(t, r.X[i] >= r.X[i-1])
		assert.Assert(t, r.Y[i] >= r.Y[i-1])
		assert.Assert(t, r.Thresholds[i] < r.Thresholds[i-1])
	}
}

func Test_PRCurve(t *testing.T) {
	yTrue := []float64{1, 0, 1}
	yProb := []float64{0.9, 0.8, 0.7}
	r := PRCurve(yTrue, yProb)
	assert.DeepEqual(t, r.X, []float64{1.0 / 2, 1.0 / 2, 1})
	assert.DeepEqual(t, r.Y, []float64{1, 1.0 / 2, 2.0 / 3})
}

func Test_PRCurveNoPositives(t *testing.T) {
	r := PRCurve([]float64{0, 0}, []float64{0.9, 0.1})
	assert.Assert(t, len(r.X) == 0)
}
