package main

import (
	"fmt"
	"os"

	arg "github.com/alexflint/go-arg"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/rundb"
)

func fail(err error) {
	if err != nil {
		zlog.Errorf("%v", err)
		os.Exit(1)
	}
}

func main() {
	args := struct {
		RunDB string `arg:"positional" help:"sqlite experiment log"`
	}{
		RunDB: "runs.db",
	}
	arg.MustParse(&args)

	db, err := rundb.Open(args.RunDB)
	fail(err)
	defer db.Close()

	runs, err := db.Runs()
	fail(err)
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}
	fmt.Printf("%-4s %-20s %-20s %-20s %6s %8s\n", "id", "name", "started", "finished", "best", "score")
	for _, r := range runs {
		fmt.Printf("%-4d %-20s %-20s %-20s %6d %8.4f\n",
			r.ID, r.Name, r.StartedAt, r.FinishedAt, r.BestIteration, r.Score)
	}
}
