package main

import (
	"os"

	arg "github.com/alexflint/go-arg"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/levgroup"
	"mhcii/peptable"
)

func fail(err error) {
	if err != nil {
		zlog.Errorf("%v", err)
		os.Exit(1)
	}
}

func main() {
	args := struct {
		Input     string `arg:"positional,required" help:"labeled peptide table (csv, optionally .xz)"`
		Out       string `help:"file to write the peptide group table into"`
		Threshold int    `help:"maximum edit distance within a group"`
	}{
		Out:       "lev_groups.csv",
		Threshold: levgroup.DefaultThreshold,
	}
	arg.MustParse(&args)

	data, err := peptable.Load(args.Input)
	fail(err)
	positives := data.Positives()
	zlog.Infof("clustering %d positive rows of %d from %s", positives.Len(), data.Len(), args.Input)

	groups := levgroup.Build(positives.Peptides(), args.Threshold)
	n := 0
	for _, g := range groups {
		if g+1 > n {
			n = g + 1
		}
	}
	zlog.Infof("found %d groups over %d unique peptides", n, len(groups))
	fail(levgroup.Save(groups, iokit.File(args.Out)))
}
