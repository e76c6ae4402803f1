/*
Package splits partitions a labeled peptide table into disjoint
train/validation/test subsets and persists the resulting row indices.

Every strategy guarantees that the peptide identity sets of any two
partitions produced by the same call are disjoint. Disjointness is
enforced by explicit set difference over peptide identities, not by
sampling alone.
*/
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

const (
	TrainIndexFile = "X_train_idx.csv"
	ValIndexFile   = "X_val_idx.csv"
	TestIndexFile  = "X_test_idx.csv"
)

/*
RemoveOverlappingPeptides removes peptides occurring in q from s,
returning the reduced s together with the untouched q
*/
func RemoveOverlappingPeptides(s, q fu.StrSet) (fu.StrSet, fu.StrSet) {
	return s.Difference(q), q
}

/*
Validate reports the pairwise peptide overlap between partitions.
A nil test table means the strategy produced two partitions only.
*/
func Validate(train, val, test *peptable.Table) {
	trainSet := train.PeptideSet()
	valSet := val.PeptideSet()
	zlog.Infof("overlap between train and val %d", trainSet.Intersection(valSet))
	if test != nil {
		testSet := test.PeptideSet()
		zlog.Infof("overlap between train and test %d", trainSet.Intersection(testSet))
		zlog.Infof("overlap between val and test %d", valSet.Intersection(testSet))
	}
}

/*
LabelDistSummary logs the label distribution of a partition
*/
func LabelDistSummary(t *peptable.Table, name string) {
	neg, pos := t.LabelCounts()
	zlog.Infof("label distribution in %s: negative samples = %d; positive samples = %d", name, neg, pos)
}

func saveIdx(outDir string, train, val, test *peptable.Table) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return zorros.Trace(err)
	}
	if err := train.SaveIndex(iokit.File(filepath.Join(outDir, TrainIndexFile))); err != nil {
		return err
	}
	if err := val.SaveIndex(iokit.File(filepath.Join(outDir, ValIndexFile))); err != nil {
		return err
	}
	if test != nil {
		if err := test.SaveIndex(iokit.File(filepath.Join(outDir, TestIndexFile))); err != nil {
			return err
		}
	}
	return nil
}

// trainTestSplit shuffles peptides with the given source and cuts the
// leading testFrac fraction off as the second return value.
func trainTestSplit(peptides []string, testFrac float64, rnd *rand.Rand) (train, test []string) {
	shuffled := append([]string{}, peptides...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := int(float64(len(shuffled)) * testFrac)
	return shuffled[n:], shuffled[:n]
}
