package model

import (
	"fmt"
	"math"
	"math/rand"

	"go-ml.dev/pkg/zorros"

	"mhcii/encode"
	"mhcii/fu"
	"mhcii/metrics"
	"mhcii/nn"
	"mhcii/peptable"
)

/*
Transformer is the peptide presentation classifier: token embedding
scaled by sqrt(d), additive sinusoidal positional encoding, a stack of
self-attention encoder layers honoring the padding mask, and a sigmoid
feedforward head producing the presentation probability.
*/
type Transformer struct {
	EmbedSize   int     // embedding size of the first layer
	NHeads      int     // attention heads per encoder layer
	EncFFHidden int     // feedforward width inside the encoder layer
	FFHidden    int     // feedforward width of the final head
	NLayers     int     // encoder layers
	Dropout     float64 // dropout of positional encoding, encoder and head
	BatchSize   int     // samples per optimizer step
	StartLR     float64 // initial learning rate
	WeightDecay float64 // AdamW decoupled weight decay
	Gamma       float64 // per-iteration exponential learning rate decay
	Seed        int64
}

const initRange = 0.1

type network struct {
	cfg    CheckpointConfig
	emb    *nn.Node
	pos    *nn.PositionalEncoding
	layers []*nn.EncoderLayer
	head   *nn.FeedForward
	params []*nn.Node
	state  map[string]*nn.Node
}

func newNetwork(cfg CheckpointConfig, rnd *rand.Rand) *network {
	embData := make([]float64, cfg.NTokens*cfg.EmbedSize)
	for i := range embData {
		embData[i] = (rnd.Float64()*2 - 1) * initRange
	}
	net := &network{
		cfg:   cfg,
		emb:   nn.Param(cfg.NTokens, cfg.EmbedSize, embData),
		pos:   nn.NewPositionalEncoding(cfg.EmbedSize, cfg.SeqLen, cfg.Dropout),
		head:  nn.NewFeedForward(cfg.EmbedSize*cfg.SeqLen, cfg.FFHidden, cfg.Dropout, rnd),
		state: map[string]*nn.Node{},
	}
	for i := 0; i < cfg.NLayers; i++ {
		net.layers = append(net.layers, nn.NewEncoderLayer(cfg.EmbedSize, cfg.NHeads, cfg.EncFFHidden, cfg.Dropout, rnd))
	}
	net.state["embedding"] = net.emb
	net.params = append(net.params, net.emb)
	for i, l := range net.layers {
		for j, p := range l.Params() {
			net.state[fmt.Sprintf("layer%d.p%d", i, j)] = p
			net.params = append(net.params, p)
		}
	}
	for j, p := range net.head.Params() {
		net.state[fmt.Sprintf("head.p%d", j)] = p
		net.params = append(net.params, p)
	}
	return net
}

func (net *network) forward(ids []int, mask []bool, train bool, rnd *rand.Rand) *nn.Node {
	x := nn.Scale(nn.Embed(net.emb, ids), math.Sqrt(float64(net.cfg.EmbedSize)))
	x = net.pos.Apply(x, train, rnd)
	for _, l := range net.layers {
		x = l.Apply(x, mask, train, rnd)
	}
	return net.head.Apply(nn.FlattenRows(x), train, rnd)
}

func (net *network) predict(batch encode.Batch) []float64 {
	probs := make([]float64, len(batch.X))
	for i := range batch.X {
		probs[i] = net.forward(batch.X[i], batch.Mask[i], false, nil).Value.At(0, 0)
	}
	return probs
}

func (m Transformer) config(d Dataset) (CheckpointConfig, error) {
	seqLen := d.SeqLen
	if seqLen == 0 {
		seqLen = encode.MaxPeptideLen(d.Source)
	}
	cfg := CheckpointConfig{
		SeqLen:      seqLen,
		NTokens:     encode.NTokens(),
		EmbedSize:   m.EmbedSize,
		NHeads:      m.NHeads,
		EncFFHidden: m.EncFFHidden,
		FFHidden:    m.FFHidden,
		NLayers:     m.NLayers,
		Dropout:     m.Dropout,
	}
	if cfg.EmbedSize < 1 || cfg.NHeads < 1 || cfg.NLayers < 1 || cfg.SeqLen < 1 {
		return cfg, zorros.Errorf("invalid transformer hyperparameters %+v", cfg)
	}
	if cfg.EmbedSize%cfg.NHeads != 0 {
		return cfg, zorros.Errorf("embed size %d must be divisible by the head count %d", cfg.EmbedSize, cfg.NHeads)
	}
	return cfg, nil
}

/*
Feed binds the classifier to a dataset and returns its training
function
*/
func (m Transformer) Feed(d Dataset) FatModel {
	return func(w Workout) (*Report, error) {
		cfg, err := m.config(d)
		if err != nil {
			return nil, err
		}
		trainData, err := d.Partition(d.Train)
		if err != nil {
			return nil, err
		}
		valData, err := d.Partition(d.Val)
		if err != nil {
			return nil, err
		}
		trainBatch, err := encode.PrepareBatch(trainData.Rows, cfg.SeqLen)
		if err != nil {
			return nil, err
		}
		valBatch, err := encode.PrepareBatch(valData.Rows, cfg.SeqLen)
		if err != nil {
			return nil, err
		}

		rnd := rand.New(rand.NewSource(fu.Fnzi64(m.Seed, 42)))
		net := newNetwork(cfg, rnd)
		opt := nn.NewAdamW(fu.Fnzd(m.StartLR, 0.001), m.WeightDecay)
		gamma := fu.Fnzd(m.Gamma, 0.9)
		batchSize := fu.Fnzi(m.BatchSize, 64)

		order := make([]int, len(trainBatch.X))
		for i := range order {
			order[i] = i
		}

		for w != nil {
			rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
			var stepLosses []float64
			for at := 0; at < len(order); at += batchSize {
				hi := fu.Mini(at+batchSize, len(order))
				losses := make([]*nn.Node, 0, hi-at)
				for _, i := range order[at:hi] {
					p := net.forward(trainBatch.X[i], trainBatch.Mask[i], true, rnd)
					losses = append(losses, nn.BCELoss(p, trainBatch.Y[i]))
				}
				loss := nn.Scale(nn.Sum(losses...), 1/float64(len(losses)))
				nn.Backward(loss)
				opt.Step(net.params)
				stepLosses = append(stepLosses, loss.Value.At(0, 0))
			}
			opt.DecayLR(gamma)

			trainRes := metrics.Evaluate(trainBatch.Y, net.predict(trainBatch))
			valRes := metrics.Evaluate(valBatch.Y, net.predict(valBatch))
			report, done, err := w.Complete(newCheckpoint(cfg, net.state), fu.Mean(stepLosses), trainRes, valRes, false)
			if err != nil {
				return nil, err
			}
			if done {
				return report, nil
			}
			w = w.Next()
		}
		return nil, zorros.Errorf("training ended without a report")
	}
}

/*
Predictor runs a restored classifier over peptide tables
*/
type Predictor struct {
	net *network
}

/*
NewPredictor rebuilds the network of a checkpoint
*/
func NewPredictor(ckpt *Checkpoint) (*Predictor, error) {
	net := newNetwork(ckpt.Config, rand.New(rand.NewSource(0)))
	if err := ckpt.restore(net.state); err != nil {
		return nil, err
	}
	return &Predictor{net: net}, nil
}

/*
Predict returns the presentation probability for every row
*/
func (p *Predictor) Predict(t *peptable.Table) ([]float64, error) {
	batch, err := encode.PrepareBatch(t.Rows, p.net.cfg.SeqLen)
	if err != nil {
		return nil, err
	}
	return p.net.predict(batch), nil
}

/*
Evaluate computes the metric panel of the predictor over a table
*/
func (p *Predictor) Evaluate(t *peptable.Table) (metrics.Result, error) {
	probs, err := p.Predict(t)
	if err != nil {
		return metrics.Result{}, err
	}
	y := make([]float64, t.Len())
	for i, row := range t.Rows {
		y[i] = row.Target
	}
	return metrics.Evaluate(y, probs), nil
}
