package model

import (
	"fmt"
	"io"
	"reflect"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/fu"
	"mhcii/metrics"
)

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Iterations   int          // maximum iterations
	Score        Score        // score function
	ScoreHistory int          // possible count of forehead training with lower score
	ModelFile    iokit.Output // file to store final model
	Verbose      interface{}  // print function func(string)
}

type training struct {
	Training
	stash *ModelStash
	done  bool
}

type workout struct {
	iteration int
	training  *training
	perflog   [][2]metrics.Result
	losslog   []float64
	scorlog   []float64
}

const DefaultScoreHistory = 3

func (t Training) Workout() Workout {
	if t.Score == nil {
		t.Score = TestAUROC
	}
	x := &training{
		Training: t,
		stash:    NewStash(fu.Fnzi(t.ScoreHistory, DefaultScoreHistory), "mhcii-training-*"),
	}
	return &workout{iteration: 0, training: x}
}

func (w *workout) Close() error {
	return w.training.stash.Close()
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) report(j int) (report *Report, err error) {
	report = &Report{}
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	if len(w.perflog) > 0 {
		for i, p := range w.perflog {
			report.History = append(report.History, Epoch{
				Iteration: i,
				Loss:      w.losslog[i],
				Train:     p[0],
				Test:      p[1],
				Score:     w.scorlog[i],
			})
		}
		if j == 0 {
			l := fu.Mini(len(w.scorlog), histlen)
			lj := len(w.scorlog) - l
			j = fu.Indmaxd(w.scorlog[lj:]) + lj
		}
		report.TheBest = j
		report.Train = w.perflog[j][0]
		report.Test = w.perflog[j][1]
		report.Score = w.scorlog[j]
		if w.training.ModelFile != nil {
			rd, e := w.training.stash.Reader(j)
			if e != nil {
				err = zorros.Trace(e)
				return
			}
			defer rd.Close()
			wh, e := w.training.ModelFile.Create()
			if e != nil {
				err = zorros.Trace(e)
				return
			}
			defer wh.End()
			_, e = io.Copy(wh, rd)
			if e != nil {
				err = zorros.Trace(e)
				return
			}
			if e = wh.Commit(); e != nil {
				err = zorros.Trace(e)
				return
			}
		}
	}
	return
}

func (w *workout) Complete(ckpt *Checkpoint, loss float64, train, test metrics.Result, metricsDone bool) (report *Report, done bool, err error) {
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	maxiter := fu.Maxi(w.training.Iterations, 1)
	score := w.training.Score(train, test)
	w.scorlog = append(w.scorlog, score)
	w.losslog = append(w.losslog, loss)
	w.perflog = append(w.perflog, [2]metrics.Result{train, test})
	if w.training.ModelFile != nil {
		o, e := w.training.stash.Output(w.iteration)
		if e != nil {
			err = zorros.Wrapf(e, "failed to create stash for model: %v", e.Error())
			return
		}
		if err = ckpt.Save(o); err != nil {
			return
		}
	}
	if metricsDone {
		w.training.done = true
		done = true
		report, err = w.report(w.iteration)
	} else if w.iteration == maxiter-1 || (w.iteration > histlen && fu.Indmaxd(w.scorlog[len(w.scorlog)-histlen:]) == 0) {
		w.training.done = true
		done = true
		report, err = w.report(0)
	}
	if w.training.Verbose != nil {
		w.Verbose(fmt.Sprintf(
			"[%3d] loss: %.5f, auroc: %.5f/%.5f, f1: %.5f/%.5f, score: %.5f",
			w.Iteration(), loss, train.AUROC, test.AUROC, train.F1, test.F1, score))
	}
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		vf := reflect.ValueOf(w.training.Verbose)
		vf.Call([]reflect.Value{reflect.ValueOf(s)})
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		scorlog:   w.scorlog,
		losslog:   w.losslog,
		perflog:   w.perflog,
	}
}
