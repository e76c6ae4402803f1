package main

import (
	"os"

	arg "github.com/alexflint/go-arg"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/fu"
	"mhcii/levgroup"
	"mhcii/peptable"
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
		Input    string `arg:"positional,required" help:"labeled peptide table (csv, optionally .xz)"`
		Strategy string `help:"random|protein|motif|levenshtein"`
		Out      string `help:"directory to write split index files into"`
		Seed     int64
		EvalFrac float64 `help:"held-out fraction for the random strategy"`
		ValFrac  float64 `help:"validation fraction of the held-out part"`
		MotifDir string  `help:"directory with train_EL<i>.txt/test_EL<i>.txt motif lists"`
		Folds    int     `help:"number of motif exclusion folds"`
		Groups   string  `help:"peptide group table built by mhcii-levgroups"`
	}{
		Strategy: "random",
		Seed:     42,
		EvalFrac: 0.2,
		ValFrac:  0.5,
		Folds:    splits.NMotifFolds,
	}
	arg.MustParse(&args)
	if args.Out == "" {
		args.Out = fu.SplitsPath(args.Strategy)
	}

	data, err := peptable.Load(args.Input)
	fail(err)
	zlog.Infof("loaded %d rows from %s", data.Len(), args.Input)

	switch args.Strategy {
	case "random":
		fail(splits.Random(data, args.Out, args.EvalFrac, args.ValFrac, args.Seed))
	case "protein":
		fail(splits.ByProtein(data, args.Out, args.Seed))
	case "motif":
		if args.MotifDir == "" {
			zlog.Error("motif strategy requires --motifdir")
			os.Exit(1)
		}
		tags, err := splits.LoadFileTags(args.MotifDir)
		fail(err)
		fail(splits.MotifExclusion(data, tags, args.Out, args.Folds))
	case "levenshtein":
		if args.Groups == "" {
			zlog.Error("levenshtein strategy requires --groups")
			os.Exit(1)
		}
		groups, err := levgroup.Load(args.Groups)
		fail(err)
		fail(splits.Levenshtein(data, groups, args.Out, args.Seed))
	default:
		zlog.Errorf("unknown split strategy %q", args.Strategy)
		os.Exit(1)
	}
}
