/*
Package nn implements a small reverse-mode autodiff engine over gonum
dense matrices together with the layers needed by the transformer
classifier: linear, layer normalization, multi-head self-attention with
padding masks, sinusoidal positional encoding and a sigmoid feedforward
head. Optimization is AdamW with decoupled weight decay and exponential
learning-rate decay.

Every operation builds a Node whose back closure accumulates gradients
into its children; Backward runs the closures in reverse topological
order, exactly like a scalar autograd but one matrix at a time.
*/
package nn

import (
	"gonum.org/v1/gonum/mat"
)

/*
Node is a matrix-valued vertex of the computation graph
*/
type Node struct {
	Value    *mat.Dense
	Grad     *mat.Dense
	children []*Node
	back     func()
}

/*
NewNode wraps a matrix into a graph vertex with a zeroed gradient
*/
func NewNode(v *mat.Dense, children ...*Node) *Node {
	r, c := v.Dims()
	return &Node{Value: v, Grad: mat.NewDense(r, c, nil), children: children}
}

/*
Param creates a trainable leaf from raw row-major data
*/
func Param(r, c int, data []float64) *Node {
	return NewNode(mat.NewDense(r, c, data))
}

/*
Backward propagates gradients from the scalar output through the graph
*/
func Backward(out *Node) {
	var topo []*Node
	visited := map[*Node]bool{}
	var build func(*Node)
	build = func(v *Node) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, ch := range v.children {
			build(ch)
		}
		topo = append(topo, v)
	}
	build(out)
	out.Grad.Set(0, 0, 1)
	for i := len(topo) - 1; i >= 0; i-- {
		if topo[i].back != nil {
			topo[i].back()
		}
	}
}

// accumulate adds delta into dst in place.
func accumulate(dst *mat.Dense, delta mat.Matrix) {
	dst.Add(dst, delta)
}
