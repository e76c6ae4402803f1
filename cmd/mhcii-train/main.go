package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	arg "github.com/alexflint/go-arg"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/model"
	"mhcii/peptable"
	"mhcii/rundb"
	"mhcii/splits"
)

func fail(err error) {
	if err != nil {
		zlog.Errorf("%v", err)
		os.Exit(1)
	}
}

func main() {
	args := struct {
		Input       string `arg:"positional,required" help:"labeled peptide table (csv, optionally .xz)"`
		SplitDir    string `arg:"positional,required" help:"directory with X_train_idx.csv/X_val_idx.csv/X_test_idx.csv"`
		Name        string `help:"run name recorded in the experiment log"`
		ModelFile   string `help:"file to store the best checkpoint"`
		RunDB       string `help:"sqlite experiment log"`
		Iterations  int
		EmbedSize   int
		NHeads      int
		EncFFHidden int
		FFHidden    int
		NLayers     int
		Dropout     float64
		BatchSize   int
		LR          float64
		WeightDecay float64
		Gamma       float64 `help:"per-epoch learning rate decay"`
		Seed        int64
	}{
		Name:        "transformer",
		ModelFile:   model.Path("transformer.json"),
		RunDB:       "runs.db",
		Iterations:  100,
		EmbedSize:   32,
		NHeads:      2,
		EncFFHidden: 64,
		FFHidden:    64,
		NLayers:     2,
		Dropout:     0.1,
		BatchSize:   64,
		LR:          0.001,
		WeightDecay: 0.01,
		Gamma:       0.9,
		Seed:        42,
	}
	arg.MustParse(&args)

	data, err := peptable.Load(args.Input)
	fail(err)
	trainIdx, err := peptable.LoadIndex(filepath.Join(args.SplitDir, splits.TrainIndexFile))
	fail(err)
	valIdx, err := peptable.LoadIndex(filepath.Join(args.SplitDir, splits.ValIndexFile))
	fail(err)
	var testIdx []int
	if _, e := os.Stat(filepath.Join(args.SplitDir, splits.TestIndexFile)); e == nil {
		testIdx, err = peptable.LoadIndex(filepath.Join(args.SplitDir, splits.TestIndexFile))
		fail(err)
	}
	zlog.Infof("dataset: %d train / %d val / %d test rows", len(trainIdx), len(valIdx), len(testIdx))

	m := model.Transformer{
		EmbedSize:   args.EmbedSize,
		NHeads:      args.NHeads,
		EncFFHidden: args.EncFFHidden,
		FFHidden:    args.FFHidden,
		NLayers:     args.NLayers,
		Dropout:     args.Dropout,
		BatchSize:   args.BatchSize,
		StartLR:     args.LR,
		WeightDecay: args.WeightDecay,
		Gamma:       args.Gamma,
		Seed:        args.Seed,
	}
	d := model.Dataset{
		Source: data,
		Train:  trainIdx,
		Val:    valIdx,
		Test:   testIdx,
	}

	db, err := rundb.Open(args.RunDB)
	fail(err)
	defer db.Close()
	config, err := json.Marshal(m)
	fail(err)
	runID, err := db.StartRun(args.Name, string(config))
	fail(err)

	report, err := m.Feed(d).Train(model.Training{
		Iterations: args.Iterations,
		ModelFile:  iokit.File(args.ModelFile),
		Verbose:    zlog.Info,
	})
	fail(err)

	for _, e := range report.History {
		loss := e.Loss
		fail(db.LogEpoch(runID, e.Iteration, "train", &loss, e.Train))
		fail(db.LogEpoch(runID, e.Iteration, "val", nil, e.Test))
	}
	zlog.Infof("best iteration %d, validation auroc %v", report.TheBest, report.Score)

	if len(testIdx) > 0 {
		ckpt, err := model.LoadCheckpoint(args.ModelFile)
		fail(err)
		p, err := model.NewPredictor(ckpt)
		fail(err)
		testData, err := d.Partition(d.Test)
		fail(err)
		res, err := p.Evaluate(testData)
		fail(err)
		fail(db.LogEpoch(runID, report.TheBest, "test", nil, res))
		zlog.Infof("test: accuracy %.4f auroc %.4f f1 %.4f matthews %.4f kappa %.4f",
			res.Accuracy, res.AUROC, res.F1, res.Matthews, res.CohenKappa)
	}

	fail(db.FinishRun(runID, report.TheBest, report.Score))
	zlog.Infof("model saved to %s", args.ModelFile)
}
