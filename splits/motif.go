package splits

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"

	"mhcii/peptable"
)

// NMotifFolds is the number of predefined motif-exclusion folds.
const NMotifFolds = 5

/*
MotifExclusion splits the table according to externally predefined
file-membership tags instead of random sampling.

tags maps a peptide to the raw file it came from. For every fold i the
training partition is built from peptides tagged train_EL<i>.txt and
the validation partition from peptides tagged test_EL<i>.txt; peptides
tagged on both sides are removed from the training side. Each fold is
persisted under outDir/split_<i>/.
*/
func MotifExclusion(data *peptable.Table, tags map[string]string, outDir string, folds int) error {
	tagged := data.Filter(func(r peptable.Row) bool { return tags[r.Peptide] != "" })
	if tagged.Len() == 0 {
		return zorros.Errorf("no peptide of the table carries a file tag")
	}

	for i := 1; i <= folds; i++ {
		trainTag := fmt.Sprintf("train_EL%d.txt", i)
		valTag := fmt.Sprintf("test_EL%d.txt", i)

		trainSet := tagged.Filter(func(r peptable.Row) bool { return tags[r.Peptide] == trainTag }).PeptideSet()
		valSet := tagged.Filter(func(r peptable.Row) bool { return tags[r.Peptide] == valTag }).PeptideSet()
		trainSet, valSet = RemoveOverlappingPeptides(trainSet, valSet)

		train := data.SelectPeptides(trainSet)
		val := data.SelectPeptides(valSet)

		LabelDistSummary(train, "training")
		LabelDistSummary(val, "validation")
		Validate(train, val, nil)

		if err := saveIdx(filepath.Join(outDir, fmt.Sprintf("split_%d", i)), train, val, nil); err != nil {
			return err
		}
		zlog.Infof("done with split %d", i)
	}
	return nil
}

/*
LoadFileTags scans rawDir for predefined motif fold files
(train_EL<i>.txt, test_EL<i>.txt) and maps each peptide to the first
file it occurs in. The first whitespace-separated field of every line
is taken as the peptide sequence.
*/
func LoadFileTags(rawDir string) (map[string]string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".txt") &&
			(strings.HasPrefix(name, "train_EL") || strings.HasPrefix(name, "test_EL")) {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	tags := map[string]string{}
	for _, name := range files {
		f, err := os.Open(filepath.Join(rawDir, name))
		if err != nil {
			return nil, zorros.Trace(err)
		}
		s := bufio.NewScanner(f)
		for s.Scan() {
			fields := strings.Fields(s.Text())
			if len(fields) == 0 {
				continue
			}
			if _, ok := tags[fields[0]]; !ok {
				tags[fields[0]] = name
			}
		}
		err = s.Err()
		f.Close()
		if err != nil {
			return nil, zorros.Trace(err)
		}
	}
	return tags, nil
}
