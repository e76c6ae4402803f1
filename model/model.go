package model

import (
	"io"

	"go-ml.dev/pkg/zorros"

	"mhcii/fu"
	"mhcii/metrics"
)

/*
HungryModel is an ML algorithm grows from a data to predict something
Needs to be fattened by Feed method to fit.
*/
type HungryModel interface {
	Feed(Dataset) FatModel
}

/*
Epoch is the outcome of one training iteration
*/
type Epoch struct {
	Iteration int
	Loss      float64
	Train     metrics.Result
	Test      metrics.Result
	Score     float64
}

/*
Report is an ML training report
*/
type Report struct {
	History     []Epoch        // all iterations history
	TheBest     int            // the best iteration
	Test, Train metrics.Result // the best iteration metrics
	Score       float64        // the best score
}

/*
Score maps the train/test metrics of an iteration to a single number;
higher is better
*/
type Score func(train, test metrics.Result) float64

/*
TestAUROC scores an iteration by the AUROC on the held-out subset
*/
func TestAUROC(train, test metrics.Result) float64 {
	return test.AUROC
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	Complete(ckpt *Checkpoint, loss float64, train, test metrics.Result, metricsDone bool) (*Report, bool, error)
	Next() Workout
	Verbose(string)
}

/*
UnifiedTraining is an interface allowing to write any logging/staging backend for ML training
*/
type UnifiedTraining interface {
	// Workout returns the first iteration workout
	Workout() Workout
}

/*
FatModel is fattened model (a training function of model instance bounded to a dataset)
*/
type FatModel func(workout Workout) (*Report, error)

/*
Train a fattened (Fat) model
*/
func (f FatModel) Train(training UnifiedTraining) (*Report, error) {
	w := training.Workout()
	if c, ok := w.(io.Closer); ok {
		defer c.Close()
	}
	return f(w)
}

/*
LuckyTrain trains fattened (Fat) model and trows any occurred errors as a panic
*/
func (f FatModel) LuckyTrain(training UnifiedTraining) *Report {
	m, err := f.Train(training)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

func Path(s string) string {
	return fu.ModelPath(s)
}
