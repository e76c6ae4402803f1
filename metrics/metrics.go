/*
Package metrics computes the fixed panel of binary classification
metrics logged for the train, validation and test phases: accuracy,
AUROC, ROC curve, precision, recall, F1, precision-recall curve,
confusion matrix, Matthews correlation and Cohen's kappa.
*/
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// Threshold is the probability cutoff separating the two classes.
const Threshold = 0.5

/*
Confusion is a binary confusion matrix
*/
type Confusion struct {
	TP, FP, TN, FN int
}

/*
Curve is a sequence of points swept over a probability threshold
*/
type Curve struct {
	X, Y       []float64
	Thresholds []float64
}

/*
Result is the full metric panel over one set of predictions
*/
type Result struct {
	Accuracy   float64
	AUROC      float64
	Precision  float64
	Recall     float64
	F1         float64
	Matthews   float64
	CohenKappa float64
	Confusion  Confusion
	ROC        Curve
	PR         Curve
}

/*
Evaluate computes the panel for true labels and predicted probabilities
*/
func Evaluate(yTrue, yProb []float64) Result {
	c := Confuse(yTrue, yProb, Threshold)
	roc := ROCCurve(yTrue, yProb)
	r := Result{
		Accuracy:   c.Accuracy(),
		AUROC:      integrate.Trapezoidal(roc.X, roc.Y),
		Precision:  c.Precision(),
		Recall:     c.Recall(),
		F1:         c.F1(),
		Matthews:   c.Matthews(),
		CohenKappa: c.CohenKappa(),
		Confusion:  c,
		ROC:        roc,
		PR:         PRCurve(yTrue, yProb),
	}
	return r
}

/*
Confuse counts the confusion matrix at the given threshold
*/
func Confuse(yTrue, yProb []float64, threshold float64) (c Confusion) {
	for i, y := range yTrue {
		predicted := yProb[i] >= threshold
		actual := y == 1
		switch {
		case predicted && actual:
			c.TP++
		case predicted && !actual:
			c.FP++
		case !predicted && actual:
			c.FN++
		default:
			c.TN++
		}
	}
	return
}

func (c Confusion) total() int { return c.TP + c.FP + c.TN + c.FN }

func (c Confusion) Accuracy() float64 {
	if c.total() == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(c.total())
}

func (c Confusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

func (c Confusion) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func (c Confusion) Matthews() float64 {
	tp, fp, tn, fn := float64(c.TP), float64(c.FP), float64(c.TN), float64(c.FN)
	den := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
	if den == 0 {
		return 0
	}
	return (tp*tn - fp*fn) / den
}

func (c Confusion) CohenKappa() float64 {
	n := float64(c.total())
	if n == 0 {
		return 0
	}
	po := float64(c.TP+c.TN) / n
	predPos := float64(c.TP+c.FP) / n
	actualPos := float64(c.TP+c.FN) / n
	pe := predPos*actualPos + (1-predPos)*(1-actualPos)
	if pe == 1 {
		return 0
	}
	return (po - pe) / (1 - pe)
}

// byProbDesc sorts sample indices by descending predicted probability.
func byProbDesc(yProb []float64) []int {
	idx := make([]int, len(yProb))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return yProb[idx[i]] > yProb[idx[j]] })
	return idx
}

/*
ROCCurve sweeps the threshold over every distinct probability; X is the
false positive rate, Y the true positive rate, both monotonically
non-decreasing from (0,0) to (1,1)
*/
func ROCCurve(yTrue, yProb []float64) Curve {
	var pos, neg int
	for _, y := range yTrue {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	curve := Curve{X: []float64{0}, Y: []float64{0}, Thresholds: []float64{math.Inf(1)}}
	if pos == 0 || neg == 0 {
		curve.X = append(curve.X, 1)
		curve.Y = append(curve.Y, 1)
		curve.Thresholds = append(curve.Thresholds, math.Inf(-1))
		return curve
	}
	idx := byProbDesc(yProb)
	var tp, fp int
	for k := 0; k < len(idx); {
		t := yProb[idx[k]]
		for k < len(idx) && yProb[idx[k]] == t {
			if yTrue[idx[k]] == 1 {
				tp++
			} else {
				fp++
			}
			k++
		}
		curve.X = append(curve.X, float64(fp)/float64(neg))
		curve.Y = append(curve.Y, float64(tp)/float64(pos))
		curve.Thresholds = append(curve.Thresholds, t)
	}
	return curve
}

/*
PRCurve sweeps the threshold over every distinct probability; X is the
recall, Y the precision
*/
func PRCurve(yTrue, yProb []float64) Curve {
	var pos int
	for _, y := range yTrue {
		if y == 1 {
			pos++
		}
	}
	curve := Curve{}
	if pos == 0 {
		return curve
	}
	idx := byProbDesc(yProb)
	var tp, fp int
	for k := 0; k < len(idx); {
		t := yProb[idx[k]]
		for k < len(idx) && yProb[idx[k]] == t {
			if yTrue[idx[k]] == 1 {
				tp++
			} else {
				fp++
			}
			k++
		}
		curve.X = append(curve.X, float64(tp)/float64(pos))
		curve.Y = append(curve.Y, float64(tp)/float64(tp+fp))
		curve.Thresholds = append(curve.Thresholds, t)
	}
	return curve
}
