package splits

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"mhcii/fu"
	"mhcii/peptable"
)

const residues = "ACDEFGHIKLMNPQRSTVWY"

// synthTable builds a deterministic table of nPos positive and nNeg
// negative rows with unique peptides spread over nProteins proteins.
func synthTable(nPos, nNeg, nProteins int) *peptable.Table {
	rnd := rand.New(rand.NewSource(7))
	pep := func(i int) string {
		b := make([]byte, 8, 12)
		for j := range b {
			b[j] = residues[rnd.Intn(len(residues))]
		}
		// a unique residue-encoded suffix per row
		for k := 0; k < 4; k++ {
			b = append(b, residues[i%len(residues)])
			i /= len(residues)
		}
		return string(b)
	}
	rows := make([]peptable.Row, 0, nPos+nNeg)
	for i := 0; i < nPos; i++ {
		rows = append(rows, peptable.Row{
			Peptide: pep(i),
			Target:  1,
			Protein: fmt.Sprintf("P%02d", i%nProteins),
		})
	}
	for i := 0; i < nNeg; i++ {
		rows = append(rows, peptable.Row{
			Peptide: pep(nPos + i),
			Target:  0,
			Protein: fmt.Sprintf("N%02d", i%nProteins),
		})
	}
	return peptable.New(rows)
}

func loadParts(t *testing.T, data *peptable.Table, dir string) (train, val, test *peptable.Table) {
	trainIdx, err := peptable.LoadIndex(filepath.Join(dir, TrainIndexFile))
	assert.NilError(t, err)
	valIdx, err := peptable.LoadIndex(filepath.Join(dir, ValIndexFile))
	assert.NilError(t, err)
	train, err = data.ByIndex(trainIdx)
	assert.NilError(t, err)
	val, err = data.ByIndex(valIdx)
	assert.NilError(t, err)
	if _, e := os.Stat(filepath.Join(dir, TestIndexFile)); e == nil {
		testIdx, err := peptable.LoadIndex(filepath.Join(dir, TestIndexFile))
		assert.NilError(t, err)
		test, err = data.ByIndex(testIdx)
		assert.NilError(t, err)
	}
	return
}

func assertDisjoint(t *testing.T, parts ...*peptable.Table) {
	for i := range parts {
		for j := i + 1; j < len(parts); j++ {
			if parts[i] == nil || parts[j] == nil {
				continue
			}
			n := parts[i].PeptideSet().Intersection(parts[j].PeptideSet())
			assert.Assert(t, n == 0, "partitions %d and %d share %d peptides", i, j, n)
		}
	}
}

func Test_RemoveOverlappingPeptides(t *testing.T) {
	s := fu.MakeStrSet([]string{"AAA", "BBB", "CCC"})
	q := fu.MakeStrSet([]string{"BBB", "DDD"})
	s2, q2 := RemoveOverlappingPeptides(s, q)
	assert.DeepEqual(t, s2.List(), []string{"AAA", "CCC"})
	assert.DeepEqual(t, q2.List(), []string{"BBB", "DDD"})
}

func Test_TrainTestSplit(t *testing.T) {
	peps := synthTable(100, 0, 10).Peptides()
	rnd := rand.New(rand.NewSource(1))
	train, test := trainTestSplit(peps, 0.2, rnd)
	assert.Assert(t, len(test) == 20)
	assert.Assert(t, len(train) == 80)
	all := fu.MakeStrSet(train).Union(fu.MakeStrSet(test))
	assert.Assert(t, len(all) == len(fu.MakeStrSet(peps)))
}

func Test_RandomDisjoint(t *testing.T) {
	dir, err := os.MkdirTemp("", "splits-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	data := synthTable(200, 200, 20)
	assert.NilError(t, Random(data, dir, 0.2, 0.5, 42))

	train, val, test := loadParts(t, data, dir)
	assert.Assert(t, test != nil)
	assertDisjoint(t, train, val, test)
	assert.Assert(t, train.Len() > val.Len())
	assert.Assert(t, train.Len() > test.Len())
	for _, part := range []*peptable.Table{train, val, test} {
		neg, pos := part.LabelCounts()
		assert.Assert(t, neg+pos == part.Len())
	}
}

func Test_RandomDeterministic(t *testing.T) {
	data := synthTable(150, 150, 10)
	var got [2][]int
	for k := 0; k < 2; k++ {
		dir, err := os.MkdirTemp("", "splits-test-")
		assert.NilError(t, err)
		defer os.RemoveAll(dir)
		assert.NilError(t, Random(data, dir, 0.2, 0.5, 42))
		got[k], err = peptable.LoadIndex(filepath.Join(dir, TrainIndexFile))
		assert.NilError(t, err)
	}
	assert.DeepEqual(t, got[0], got[1])
}

func Test_RandomNoTest(t *testing.T) {
	dir, err := os.MkdirTemp("", "splits-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	data := synthTable(100, 100, 10)
	assert.NilError(t, Random(data, dir, 0.2, 1.0, 42))

	train, val, test := loadParts(t, data, dir)
	assert.Assert(t, test == nil)
	assertDisjoint(t, train, val)
}

func Test_ByProteinPartitions(t *testing.T) {
	data := synthTable(100, 3500, 20)
	train, val, test, poolSizes, err := byProtein(data, 42)
	assert.NilError(t, err)

	assertDisjoint(t, train, val, test)

	// proteins of positive samples never straddle partitions
	trainProts := train.Positives().Proteins()
	valProts := val.Positives().Proteins()
	testProts := test.Positives().Proteins()
	assert.Assert(t, trainProts.Intersection(valProts) == 0)
	assert.Assert(t, trainProts.Intersection(testProts) == 0)
	assert.Assert(t, valProts.Intersection(testProts) == 0)

	// negatives are sampled at the fixed rate per partition
	for _, part := range []*peptable.Table{train, val, test} {
		neg, pos := part.LabelCounts()
		assert.Assert(t, neg == NegativesRate*pos)
	}

	// the negative pool shrinks strictly after every sampling round
	for i := 1; i < len(poolSizes); i++ {
		assert.Assert(t, poolSizes[i] < poolSizes[i-1])
	}
}

func Test_ByProteinPoolExhausted(t *testing.T) {
	data := synthTable(100, 10, 20)
	_, _, _, _, err := byProtein(data, 42)
	assert.Assert(t, err != nil)
}

func Test_MotifExclusion(t *testing.T) {
	dir, err := os.MkdirTemp("", "splits-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	data := synthTable(60, 60, 10)
	tags := map[string]string{}
	for i, p := range data.Peptides() {
		if i%2 == 0 {
			tags[p] = "train_EL1.txt"
		} else {
			tags[p] = "test_EL1.txt"
		}
	}
	assert.NilError(t, MotifExclusion(data, tags, dir, 1))

	train, val, test := loadParts(t, data, filepath.Join(dir, "split_1"))
	assert.Assert(t, test == nil)
	assertDisjoint(t, train, val)
	for _, p := range train.Peptides() {
		assert.Assert(t, tags[p] == "train_EL1.txt")
	}
	for _, p := range val.Peptides() {
		assert.Assert(t, tags[p] == "test_EL1.txt")
	}
}

func Test_LoadFileTags(t *testing.T) {
	dir, err := os.MkdirTemp("", "splits-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	assert.NilError(t, os.WriteFile(filepath.Join(dir, "test_EL1.txt"),
		[]byte("AAAK HLA-DRB1\nCCCK\n"), 0644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "train_EL1.txt"),
		[]byte("AAAK other\nDDDK\n\n"), 0644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "notes.md"),
		[]byte("EEEK\n"), 0644))

	tags, err := LoadFileTags(dir)
	assert.NilError(t, err)
	// first file in sorted order wins for duplicated peptides
	assert.Assert(t, tags["AAAK"] == "test_EL1.txt")
	assert.Assert(t, tags["CCCK"] == "test_EL1.txt")
	assert.Assert(t, tags["DDDK"] == "train_EL1.txt")
	_, ok := tags["EEEK"]
	assert.Assert(t, !ok)
}

func Test_LevenshteinGroupsStayTogether(t *testing.T) {
	dir, err := os.MkdirTemp("", "splits-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	data := synthTable(200, 200, 20)
	groups := map[string]int{}
	for i, p := range data.Positives().Peptides() {
		groups[p] = i / 4 // four positives per cluster
	}
	assert.NilError(t, Levenshtein(data, groups, dir, 42))

	train, val, test := loadParts(t, data, dir)
	assert.Assert(t, test != nil)
	assertDisjoint(t, train, val, test)

	// every cluster id lives in exactly one partition
	where := map[int]string{}
	for name, part := range map[string]*peptable.Table{"train": train, "val": val, "test": test} {
		for _, p := range part.Positives().Peptides() {
			g := groups[p]
			if prev, ok := where[g]; ok {
				assert.Assert(t, prev == name, "cluster %d straddles %s and %s", g, prev, name)
			}
			where[g] = name
		}
	}
}

func Test_LevenshteinEmptyGroups(t *testing.T) {
	data := synthTable(10, 10, 2)
	err := Levenshtein(data, nil, t.TempDir(), 1)
	assert.Assert(t, err != nil)
}
