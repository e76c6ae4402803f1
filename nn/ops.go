package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

/*
MatMul multiplies a (r×k) by b (k×c)
*/
func MatMul(a, b *Node) *Node {
	ra, _ := a.Value.Dims()
	_, cb := b.Value.Dims()
	v := mat.NewDense(ra, cb, nil)
	v.Mul(a.Value, b.Value)
	out := NewNode(v, a, b)
	out.back = func() {
		var da, db mat.Dense
		da.Mul(out.Grad, b.Value.T())
		accumulate(a.Grad, &da)
		db.Mul(a.Value.T(), out.Grad)
		accumulate(b.Grad, &db)
	}
	return out
}

/*
Add sums two equally shaped matrices
*/
func Add(a, b *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	v.Add(a.Value, b.Value)
	out := NewNode(v, a, b)
	out.back = func() {
		accumulate(a.Grad, out.Grad)
		accumulate(b.Grad, out.Grad)
	}
	return out
}

/*
AddRow broadcasts a 1×c row vector over every row of a
*/
func AddRow(a, row *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v.Set(i, j, a.Value.At(i, j)+row.Value.At(0, j))
		}
	}
	out := NewNode(v, a, row)
	out.back = func() {
		accumulate(a.Grad, out.Grad)
		for j := 0; j < c; j++ {
			s := row.Grad.At(0, j)
			for i := 0; i < r; i++ {
				s += out.Grad.At(i, j)
			}
			row.Grad.Set(0, j, s)
		}
	}
	return out
}

/*
AddConst adds a constant matrix that takes no gradient
*/
func AddConst(a *Node, m *mat.Dense) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	v.Add(a.Value, m)
	out := NewNode(v, a)
	out.back = func() {
		accumulate(a.Grad, out.Grad)
	}
	return out
}

/*
Scale multiplies every element by k
*/
func Scale(a *Node, k float64) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	v.Scale(k, a.Value)
	out := NewNode(v, a)
	out.back = func() {
		var da mat.Dense
		da.Scale(k, out.Grad)
		accumulate(a.Grad, &da)
	}
	return out
}

/*
Transpose returns aᵀ
*/
func Transpose(a *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(c, r, nil)
	v.Copy(a.Value.T())
	out := NewNode(v, a)
	out.back = func() {
		accumulate(a.Grad, mat.DenseCopyOf(out.Grad.T()))
	}
	return out
}

/*
ReLU rectifies every element
*/
func ReLU(a *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if x := a.Value.At(i, j); x > 0 {
				v.Set(i, j, x)
			}
		}
	}
	out := NewNode(v, a)
	out.back = func() {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if a.Value.At(i, j) > 0 {
					a.Grad.Set(i, j, a.Grad.At(i, j)+out.Grad.At(i, j))
				}
			}
		}
	}
	return out
}

/*
Sigmoid squashes every element into (0,1)
*/
func Sigmoid(a *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v.Set(i, j, 1/(1+math.Exp(-a.Value.At(i, j))))
		}
	}
	out := NewNode(v, a)
	out.back = func() {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				s := v.At(i, j)
				a.Grad.Set(i, j, a.Grad.At(i, j)+out.Grad.At(i, j)*s*(1-s))
			}
		}
	}
	return out
}

/*
MaskedSoftmaxRows applies a row-wise softmax skipping masked columns;
masked positions get probability zero
*/
func MaskedSoftmaxRows(a *Node, mask []bool) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		maxVal := math.Inf(-1)
		for j := 0; j < c; j++ {
			if mask != nil && mask[j] {
				continue
			}
			if x := a.Value.At(i, j); x > maxVal {
				maxVal = x
			}
		}
		var total float64
		for j := 0; j < c; j++ {
			if mask != nil && mask[j] {
				continue
			}
			e := math.Exp(a.Value.At(i, j) - maxVal)
			v.Set(i, j, e)
			total += e
		}
		for j := 0; j < c; j++ {
			v.Set(i, j, v.At(i, j)/total)
		}
	}
	out := NewNode(v, a)
	out.back = func() {
		for i := 0; i < r; i++ {
			var dot float64
			for j := 0; j < c; j++ {
				dot += out.Grad.At(i, j) * v.At(i, j)
			}
			for j := 0; j < c; j++ {
				if mask != nil && mask[j] {
					continue
				}
				p := v.At(i, j)
				a.Grad.Set(i, j, a.Grad.At(i, j)+p*(out.Grad.At(i, j)-dot))
			}
		}
	}
	return out
}

/*
LayerNormRows normalizes every row to zero mean and unit variance and
applies the trainable gain and bias row vectors
*/
func LayerNormRows(a, gain, bias *Node) *Node {
	const eps = 1e-5
	r, c := a.Value.Dims()
	v := mat.NewDense(r, c, nil)
	xhat := mat.NewDense(r, c, nil)
	invStd := make([]float64, r)
	for i := 0; i < r; i++ {
		var mean float64
		for j := 0; j < c; j++ {
			mean += a.Value.At(i, j)
		}
		mean /= float64(c)
		var variance float64
		for j := 0; j < c; j++ {
			d := a.Value.At(i, j) - mean
			variance += d * d
		}
		variance /= float64(c)
		invStd[i] = 1 / math.Sqrt(variance+eps)
		for j := 0; j < c; j++ {
			h := (a.Value.At(i, j) - mean) * invStd[i]
			xhat.Set(i, j, h)
			v.Set(i, j, h*gain.Value.At(0, j)+bias.Value.At(0, j))
		}
	}
	out := NewNode(v, a, gain, bias)
	out.back = func() {
		for i := 0; i < r; i++ {
			var meanDh, meanDhXhat float64
			dh := make([]float64, c)
			for j := 0; j < c; j++ {
				dh[j] = out.Grad.At(i, j) * gain.Value.At(0, j)
				meanDh += dh[j]
				meanDhXhat += dh[j] * xhat.At(i, j)
			}
			meanDh /= float64(c)
			meanDhXhat /= float64(c)
			for j := 0; j < c; j++ {
				da := invStd[i] * (dh[j] - meanDh - xhat.At(i, j)*meanDhXhat)
				a.Grad.Set(i, j, a.Grad.At(i, j)+da)
				gain.Grad.Set(0, j, gain.Grad.At(0, j)+out.Grad.At(i, j)*xhat.At(i, j))
				bias.Grad.Set(0, j, bias.Grad.At(0, j)+out.Grad.At(i, j))
			}
		}
	}
	return out
}

/*
Dropout zeroes elements with probability p and rescales the survivors;
it is the identity when train is false or p is zero
*/
func Dropout(a *Node, p float64, train bool, rnd *rand.Rand) *Node {
	if !train || p == 0 {
		return a
	}
	r, c := a.Value.Dims()
	keep := mat.NewDense(r, c, nil)
	v := mat.NewDense(r, c, nil)
	scale := 1 / (1 - p)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rnd.Float64() >= p {
				keep.Set(i, j, scale)
				v.Set(i, j, a.Value.At(i, j)*scale)
			}
		}
	}
	out := NewNode(v, a)
	out.back = func() {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				a.Grad.Set(i, j, a.Grad.At(i, j)+out.Grad.At(i, j)*keep.At(i, j))
			}
		}
	}
	return out
}

/*
Embed gathers rows of the embedding table by token id
*/
func Embed(table *Node, ids []int) *Node {
	_, d := table.Value.Dims()
	v := mat.NewDense(len(ids), d, nil)
	for i, id := range ids {
		for j := 0; j < d; j++ {
			v.Set(i, j, table.Value.At(id, j))
		}
	}
	out := NewNode(v, table)
	out.back = func() {
		for i, id := range ids {
			for j := 0; j < d; j++ {
				table.Grad.Set(id, j, table.Grad.At(id, j)+out.Grad.At(i, j))
			}
		}
	}
	return out
}

/*
FlattenRows reshapes a T×d matrix into a single 1×(T*d) row
*/
func FlattenRows(a *Node) *Node {
	r, c := a.Value.Dims()
	v := mat.NewDense(1, r*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v.Set(0, i*c+j, a.Value.At(i, j))
		}
	}
	out := NewNode(v, a)
	out.back = func() {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				a.Grad.Set(i, j, a.Grad.At(i, j)+out.Grad.At(0, i*c+j))
			}
		}
	}
	return out
}

/*
ConcatCols concatenates equally tall matrices side by side
*/
func ConcatCols(nodes ...*Node) *Node {
	r, _ := nodes[0].Value.Dims()
	total := 0
	for _, n := range nodes {
		_, c := n.Value.Dims()
		total += c
	}
	v := mat.NewDense(r, total, nil)
	off := 0
	for _, n := range nodes {
		_, c := n.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v.Set(i, off+j, n.Value.At(i, j))
			}
		}
		off += c
	}
	out := NewNode(v, nodes...)
	out.back = func() {
		off := 0
		for _, n := range nodes {
			_, c := n.Value.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					n.Grad.Set(i, j, n.Grad.At(i, j)+out.Grad.At(i, off+j))
				}
			}
			off += c
		}
	}
	return out
}

/*
BCELoss is the binary cross entropy between a 1×1 probability and the
target label
*/
func BCELoss(p *Node, y float64) *Node {
	const eps = 1e-12
	prob := math.Min(math.Max(p.Value.At(0, 0), eps), 1-eps)
	v := mat.NewDense(1, 1, []float64{-(y*math.Log(prob) + (1-y)*math.Log(1-prob))})
	out := NewNode(v, p)
	out.back = func() {
		d := (prob - y) / (prob * (1 - prob))
		p.Grad.Set(0, 0, p.Grad.At(0, 0)+out.Grad.At(0, 0)*d)
	}
	return out
}

/*
Sum adds up 1×1 scalars
*/
func Sum(nodes ...*Node) *Node {
	var total float64
	for _, n := range nodes {
		total += n.Value.At(0, 0)
	}
	out := NewNode(mat.NewDense(1, 1, []float64{total}), nodes...)
	out.back = func() {
		for _, n := range nodes {
			n.Grad.Set(0, 0, n.Grad.At(0, 0)+out.Grad.At(0, 0))
		}
	}
	return out
}
