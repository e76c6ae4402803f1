package splits

import (
	"math/rand"

	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/fu"
	"mhcii/peptable"
)

/*
Random splits the table into train/val/test by peptide identity and
writes the resulting row indices under outDir.

evalFrac is the fraction of the dataset used for evaluation (validation
plus testing), valFrac the fraction of the evaluation set used for
validation. Peptides landing on both sides of a cut are removed from
the training (resp. testing) side by set difference, so the partitions
stay disjoint even when the same peptide occurs on several rows. The
result is deterministic for a fixed seed.
*/
func Random(data *peptable.Table, outDir string, evalFrac, valFrac float64, seed int64) error {
	rnd := rand.New(rand.NewSource(seed))

	trainPeps, evalPeps := trainTestSplit(data.Peptides(), evalFrac, rnd)

	// Remove peptides occurring in the evaluation set from the training set
	trainSet, evalSet := RemoveOverlappingPeptides(fu.MakeStrSet(trainPeps), fu.MakeStrSet(evalPeps))
	trainData := data.SelectPeptides(trainSet)
	evalData := data.SelectPeptides(evalSet)

	// Generate validation and test sets from the evaluation set
	valData, err := evalData.SampleFrac(valFrac, rnd)
	if err != nil {
		return err
	}
	testData := evalData.Drop(valData)

	if testData.Len() != 0 {
		// Remove peptides occurring in the validation set from the test set
		testSet, valSet := RemoveOverlappingPeptides(testData.PeptideSet(), valData.PeptideSet())
		testData = data.SelectPeptides(testSet)
		valData = data.SelectPeptides(valSet)
	} else {
		testData = nil
		valData = data.SelectPeptides(valData.PeptideSet())
	}

	Validate(trainData, valData, testData)

	LabelDistSummary(trainData, "training")
	LabelDistSummary(valData, "validation")
	if testData != nil {
		LabelDistSummary(testData, "testing")
	}

	if err := saveIdx(outDir, trainData, valData, testData); err != nil {
		return err
	}
	zlog.Info("written random splits successfully")
	return nil
}
