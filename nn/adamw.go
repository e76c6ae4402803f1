package nn

import (
	"math"
)

/*
AdamW is the Adam optimizer with decoupled weight decay
*/
type AdamW struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Eps         float64
	WeightDecay float64

	t int
	m map[*Node][]float64
	v map[*Node][]float64
}

func NewAdamW(lr, weightDecay float64) *AdamW {
	return &AdamW{
		LR:          lr,
		Beta1:       0.9,
		Beta2:       0.999,
		Eps:         1e-8,
		WeightDecay: weightDecay,
		m:           map[*Node][]float64{},
		v:           map[*Node][]float64{},
	}
}

/*
Step applies one update to every parameter and clears its gradient
*/
func (o *AdamW) Step(params []*Node) {
	o.t++
	for _, p := range params {
		data := p.Value.RawMatrix().Data
		grad := p.Grad.RawMatrix().Data
		m, ok := o.m[p]
		if !ok {
			m = make([]float64, len(data))
			o.m[p] = m
		}
		v, ok := o.v[p]
		if !ok {
			v = make([]float64, len(data))
			o.v[p] = v
		}
		for i, g := range grad {
			m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
			v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
			mHat := m[i] / (1 - math.Pow(o.Beta1, float64(o.t)))
			vHat := v[i] / (1 - math.Pow(o.Beta2, float64(o.t)))
			data[i] -= o.LR * (mHat/(math.Sqrt(vHat)+o.Eps) + o.WeightDecay*data[i])
			grad[i] = 0
		}
	}
}

/*
DecayLR multiplies the learning rate by gamma, an exponential schedule
when called once per step
*/
func (o *AdamW) DecayLR(gamma float64) {
	o.LR *= gamma
}
