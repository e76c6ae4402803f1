package splits

import (
	"math/rand"
	"os"
	"path/filepath"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/fu"
	"mhcii/peptable"
)

// NegativesRate is how many negative samples are drawn per positive
// sample of a partition.
const NegativesRate = 5

const (
	TrainFile = "X_train.csv"
	ValFile   = "X_val.csv"
	TestFile  = "X_test.csv"
)

/*
ByProtein stratifies the table by protein accession so that all
peptides originating from one protein land in the same partition.

Positive samples are grouped by protein: 10% of the proteins go to
validation, 10% of the remainder to testing, the rest to training.
Negatives are sampled per partition at NegativesRate times the positive
partition size; every sampling round removes the already assigned
negative peptides from the pool, so the pool shrinks strictly
monotonically. An exhausted pool is an error.
*/
func ByProtein(data *peptable.Table, outDir string, seed int64) error {
	train, val, test, _, err := byProtein(data, seed)
	if err != nil {
		return err
	}

	LabelDistSummary(train, "training")
	LabelDistSummary(val, "validation")
	LabelDistSummary(test, "testing")

	if err := saveIdx(outDir, train, val, test); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return zorros.Trace(err)
	}
	if err := train.Save(iokit.File(filepath.Join(outDir, TrainFile))); err != nil {
		return err
	}
	if err := val.Save(iokit.File(filepath.Join(outDir, ValFile))); err != nil {
		return err
	}
	if err := test.Save(iokit.File(filepath.Join(outDir, TestFile))); err != nil {
		return err
	}
	zlog.Info("written protein-stratified splits successfully")
	return nil
}

// byProtein returns the three partitions plus the negative pool size
// after each sampling round.
func byProtein(data *peptable.Table, seed int64) (train, val, test *peptable.Table, poolSizes []int, err error) {
	rnd := rand.New(rand.NewSource(seed))

	proteins := data.Positives().Proteins()
	if len(proteins) == 0 {
		return nil, nil, nil, nil, zorros.Errorf("no positive samples with a protein accession")
	}
	all := proteins.List()
	rnd.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	nVal := int(float64(len(all)) * 0.1)
	valProteins := fu.MakeStrSet(all[:nVal])
	rest := all[nVal:]
	nTest := int(float64(len(all)) * 0.1)
	if nTest > len(rest) {
		nTest = len(rest)
	}
	testProteins := fu.MakeStrSet(rest[:nTest])
	trainProteins := fu.MakeStrSet(rest[nTest:])

	train = data.Positives().SelectProteins(trainProteins)
	val = data.Positives().SelectProteins(valProteins)
	test = data.Positives().SelectProteins(testProteins)

	pool := data.Negatives()
	poolSizes = append(poolSizes, pool.Len())

	assigned := fu.StrSet{}
	for _, part := range []struct {
		positives **peptable.Table
		name      string
	}{
		{&train, "training"},
		{&val, "validation"},
		{&test, "testing"},
	} {
		want := NegativesRate * (*part.positives).Len()
		neg, e := pool.Sample(want, rnd)
		if e != nil {
			err = zorros.Wrapf(e, "negative pool exhausted for %s partition: %v", part.name, e)
			return
		}
		for _, p := range neg.Peptides() {
			assigned[p] = true
		}
		pool = pool.Filter(func(r peptable.Row) bool { return !assigned[r.Peptide] })
		poolSizes = append(poolSizes, pool.Len())
		*part.positives = (*part.positives).Append(neg)
	}
	return
}
