package model

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"

	"mhcii/nn"
)

/*
CheckpointConfig describes the architecture a state dict belongs to
*/
type CheckpointConfig struct {
	SeqLen      int     `json:"seq_len"`
	NTokens     int     `json:"n_tokens"`
	EmbedSize   int     `json:"embed_size"`
	NHeads      int     `json:"n_heads"`
	EncFFHidden int     `json:"enc_ff_hidden"`
	FFHidden    int     `json:"ff_hidden"`
	NLayers     int     `json:"n_layers"`
	Dropout     float64 `json:"dropout"`
}

/*
Checkpoint is a JSON-serializable snapshot of the classifier weights
*/
type Checkpoint struct {
	Version   int                    `json:"version"`
	CreatedAt string                 `json:"created_at"`
	Config    CheckpointConfig       `json:"config"`
	State     map[string][][]float64 `json:"state"`
}

/*
WriteTo serializes the checkpoint as JSON
*/
func (c *Checkpoint) WriteTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(c)
}

/*
Save writes the checkpoint to the given output
*/
func (c *Checkpoint) Save(out iokit.Output) error {
	wh, err := out.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	if err := c.WriteTo(wh); err != nil {
		return zorros.Trace(err)
	}
	return wh.Commit()
}

/*
LoadCheckpoint reads and validates a checkpoint written by Save
*/
func LoadCheckpoint(path string) (*Checkpoint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	var ckpt Checkpoint
	if err := json.Unmarshal(b, &ckpt); err != nil {
		return nil, zorros.Wrapf(err, "failed to decode checkpoint %s: %v", path, err)
	}
	cfg := ckpt.Config
	if cfg.NLayers < 1 || cfg.EmbedSize < 1 || cfg.NHeads < 1 || cfg.SeqLen < 1 || cfg.NTokens < 2 {
		return nil, zorros.Errorf("invalid checkpoint config in %s", path)
	}
	if cfg.EmbedSize%cfg.NHeads != 0 {
		return nil, zorros.Errorf("invalid checkpoint: embed size must be divisible by the head count")
	}
	return &ckpt, nil
}

func newCheckpoint(cfg CheckpointConfig, state map[string]*nn.Node) *Checkpoint {
	exported := make(map[string][][]float64, len(state))
	for name, p := range state {
		r, c := p.Value.Dims()
		rows := make([][]float64, r)
		for i := 0; i < r; i++ {
			row := make([]float64, c)
			for j := 0; j < c; j++ {
				row[j] = p.Value.At(i, j)
			}
			rows[i] = row
		}
		exported[name] = rows
	}
	return &Checkpoint{
		Version:   1,
		CreatedAt: time.Now().Format(time.RFC3339),
		Config:    cfg,
		State:     exported,
	}
}

func (c *Checkpoint) restore(state map[string]*nn.Node) error {
	for name, p := range state {
		rows, ok := c.State[name]
		if !ok {
			return zorros.Errorf("checkpoint is missing tensor %q", name)
		}
		r, cc := p.Value.Dims()
		if len(rows) != r {
			return zorros.Errorf("tensor %q has %d rows, expected %d", name, len(rows), r)
		}
		for i, row := range rows {
			if len(row) != cc {
				return zorros.Errorf("tensor %q row %d has %d columns, expected %d", name, i, len(row), cc)
			}
			for j, v := range row {
				p.Value.Set(i, j, v)
			}
		}
	}
	return nil
}
