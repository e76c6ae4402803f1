package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

/*
Linear is a fully connected layer y = x·W + b
*/
type Linear struct {
	W, B *Node
}

func NewLinear(in, out int, rnd *rand.Rand) *Linear {
	data := make([]float64, in*out)
	std := 1 / math.Sqrt(float64(in))
	for i := range data {
		data[i] = rnd.NormFloat64() * std
	}
	return &Linear{
		W: Param(in, out, data),
		B: Param(1, out, nil),
	}
}

func (l *Linear) Apply(x *Node) *Node {
	return AddRow(MatMul(x, l.W), l.B)
}

func (l *Linear) Params() []*Node { return []*Node{l.W, l.B} }

/*
LayerNorm holds the trainable gain and bias of a row normalization
*/
type LayerNorm struct {
	Gain, Bias *Node
}

func NewLayerNorm(d int) *LayerNorm {
	ones := make([]float64, d)
	for i := range ones {
		ones[i] = 1
	}
	return &LayerNorm{Gain: Param(1, d, ones), Bias: Param(1, d, nil)}
}

func (n *LayerNorm) Apply(x *Node) *Node {
	return LayerNormRows(x, n.Gain, n.Bias)
}

func (n *LayerNorm) Params() []*Node { return []*Node{n.Gain, n.Bias} }

/*
PositionalEncoding adds the fixed sinusoidal position signal
*/
type PositionalEncoding struct {
	pe      *mat.Dense
	dropout float64
}

func NewPositionalEncoding(d, maxLen int, dropout float64) *PositionalEncoding {
	pe := mat.NewDense(maxLen, d, nil)
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < d; i += 2 {
			div := math.Exp(float64(i) * -math.Log(10000) / float64(d))
			pe.Set(pos, i, math.Sin(float64(pos)*div))
			if i+1 < d {
				pe.Set(pos, i+1, math.Cos(float64(pos)*div))
			}
		}
	}
	return &PositionalEncoding{pe: pe, dropout: dropout}
}

func (p *PositionalEncoding) Apply(x *Node, train bool, rnd *rand.Rand) *Node {
	r, c := x.Value.Dims()
	window := mat.NewDense(r, c, nil)
	window.Copy(p.pe.Slice(0, r, 0, c))
	return Dropout(AddConst(x, window), p.dropout, train, rnd)
}

type attnHead struct {
	Q, K, V *Linear
}

/*
MultiHeadSelfAttention implements scaled dot-product attention with a
key padding mask
*/
type MultiHeadSelfAttention struct {
	heads []attnHead
	Out   *Linear
	scale float64
}

func NewMultiHeadSelfAttention(d, nHeads int, rnd *rand.Rand) *MultiHeadSelfAttention {
	headDim := d / nHeads
	heads := make([]attnHead, nHeads)
	for h := range heads {
		heads[h] = attnHead{
			Q: NewLinear(d, headDim, rnd),
			K: NewLinear(d, headDim, rnd),
			V: NewLinear(d, headDim, rnd),
		}
	}
	return &MultiHeadSelfAttention{
		heads: heads,
		Out:   NewLinear(d, d, rnd),
		scale: 1 / math.Sqrt(float64(headDim)),
	}
}

func (a *MultiHeadSelfAttention) Apply(x *Node, padMask []bool) *Node {
	outs := make([]*Node, len(a.heads))
	for h, head := range a.heads {
		q := head.Q.Apply(x)
		k := head.K.Apply(x)
		v := head.V.Apply(x)
		scores := Scale(MatMul(q, Transpose(k)), a.scale)
		attn := MaskedSoftmaxRows(scores, padMask)
		outs[h] = MatMul(attn, v)
	}
	return a.Out.Apply(ConcatCols(outs...))
}

func (a *MultiHeadSelfAttention) Params() []*Node {
	var params []*Node
	for _, h := range a.heads {
		params = append(params, h.Q.Params()...)
		params = append(params, h.K.Params()...)
		params = append(params, h.V.Params()...)
	}
	return append(params, a.Out.Params()...)
}

/*
EncoderLayer is a post-norm transformer encoder block: self-attention
and a pointwise feedforward, each wrapped in residual + layer norm
*/
type EncoderLayer struct {
	Attn         *MultiHeadSelfAttention
	Norm1, Norm2 *LayerNorm
	FF1, FF2     *Linear
	Dropout      float64
}

func NewEncoderLayer(d, nHeads, ffHidden int, dropout float64, rnd *rand.Rand) *EncoderLayer {
	return &EncoderLayer{
		Attn:    NewMultiHeadSelfAttention(d, nHeads, rnd),
		Norm1:   NewLayerNorm(d),
		Norm2:   NewLayerNorm(d),
		FF1:     NewLinear(d, ffHidden, rnd),
		FF2:     NewLinear(ffHidden, d, rnd),
		Dropout: dropout,
	}
}

func (e *EncoderLayer) Apply(x *Node, padMask []bool, train bool, rnd *rand.Rand) *Node {
	attn := Dropout(e.Attn.Apply(x, padMask), e.Dropout, train, rnd)
	x = e.Norm1.Apply(Add(x, attn))
	ff := e.FF2.Apply(Dropout(ReLU(e.FF1.Apply(x)), e.Dropout, train, rnd))
	return e.Norm2.Apply(Add(x, Dropout(ff, e.Dropout, train, rnd)))
}

func (e *EncoderLayer) Params() []*Node {
	params := e.Attn.Params()
	params = append(params, e.Norm1.Params()...)
	params = append(params, e.Norm2.Params()...)
	params = append(params, e.FF1.Params()...)
	params = append(params, e.FF2.Params()...)
	return params
}

/*
FeedForward is the classification head: hidden ReLU layer with dropout
followed by a sigmoid scalar projection
*/
type FeedForward struct {
	Hidden, Out *Linear
	Dropout     float64
}

func NewFeedForward(in, hidden int, dropout float64, rnd *rand.Rand) *FeedForward {
	return &FeedForward{
		Hidden:  NewLinear(in, hidden, rnd),
		Out:     NewLinear(hidden, 1, rnd),
		Dropout: dropout,
	}
}

func (f *FeedForward) Apply(x *Node, train bool, rnd *rand.Rand) *Node {
	h := Dropout(ReLU(f.Hidden.Apply(x)), f.Dropout, train, rnd)
	return Sigmoid(f.Out.Apply(h))
}

func (f *FeedForward) Params() []*Node {
	return append(f.Hidden.Params(), f.Out.Params()...)
}
