package splits

import (
	"math/rand"
	"strconv"

	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/fu"
	"mhcii/peptable"
)

/*
Levenshtein splits the table so that peptides of the same similarity
cluster never straddle a partition boundary.

groups maps every positive peptide to its precomputed Levenshtein
cluster id. 80% of the cluster ids go to training and the remainder is
halved between validation and testing; all rows of a cluster follow
its id. Negative peptides are far less clustered and are split
randomly with the usual leakage-removal pass.
*/
func Levenshtein(data *peptable.Table, groups map[string]int, outDir string, seed int64) error {
	if len(groups) == 0 {
		return zorros.Errorf("empty similarity group table")
	}
	rnd := rand.New(rand.NewSource(seed))

	ids := fu.StrSet{}
	for _, g := range groups {
		ids[strconv.Itoa(g)] = true
	}
	trainIDs, evalIDs := trainTestSplit(ids.List(), 0.2, rnd)
	valIDs, testIDs := trainTestSplit(evalIDs, 0.5, rnd)

	inGroups := func(s fu.StrSet) func(peptable.Row) bool {
		return func(r peptable.Row) bool {
			g, ok := groups[r.Peptide]
			return ok && s[strconv.Itoa(g)]
		}
	}
	posTrain := data.Positives().Filter(inGroups(fu.MakeStrSet(trainIDs)))
	posVal := data.Positives().Filter(inGroups(fu.MakeStrSet(valIDs)))
	posTest := data.Positives().Filter(inGroups(fu.MakeStrSet(testIDs)))

	// Negative data are not grouped as much, so we can randomly split them.
	negatives := data.Negatives()
	negTrainPeps, negEvalPeps := trainTestSplit(negatives.Peptides(), 0.2, rnd)
	negTrainSet, negEvalSet := RemoveOverlappingPeptides(fu.MakeStrSet(negTrainPeps), fu.MakeStrSet(negEvalPeps))
	negTrain := negatives.SelectPeptides(negTrainSet)
	negEval := negatives.SelectPeptides(negEvalSet)

	negVal, err := negEval.SampleFrac(0.5, rnd)
	if err != nil {
		return err
	}
	negTest := negEval.Drop(negVal)
	negTestSet, negValSet := RemoveOverlappingPeptides(negTest.PeptideSet(), negVal.PeptideSet())
	negVal = negatives.SelectPeptides(negValSet)
	negTest = negatives.SelectPeptides(negTestSet)

	// Merge negative data with positive data separated by similarity groups
	train := posTrain.Append(negTrain)
	val := posVal.Append(negVal)
	test := posTest.Append(negTest)

	Validate(train, val, test)

	LabelDistSummary(train, "training")
	LabelDistSummary(val, "validation")
	LabelDistSummary(test, "testing")

	if err := saveIdx(outDir, train, val, test); err != nil {
		return err
	}
	zlog.Info("written levenshtein splits successfully")
	return nil
}
