package peptable

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/iokit"
	"gotest.tools/assert"
)

func testRows() []Row {
	return []Row{
		{Peptide: "ACDEFGHIK", Target: 1, Protein: "P01"},
		{Peptide: "LMNPQRSTV", Target: 0, Protein: "P02"},
		{Peptide: "WYACDEFGH", Target: 1, Protein: "P01"},
		{Peptide: "IKLMNPQRS", Target: 0, Protein: "P03"},
		{Peptide: "ACDEFGHIK", Target: 0, Protein: "P02"},
	}
}

func Test_Load(t *testing.T) {
	dir, err := os.MkdirTemp("", "peptable-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "data.csv")
	csv := "peptide,target_value,protein\n" +
		"ACDEFGHIK,1,P01\n" +
		"LMNPQRSTV,0,P02\n"
	assert.NilError(t, os.WriteFile(path, []byte(csv), 0644))

	q, err := Load(path)
	assert.NilError(t, err)
	assert.Assert(t, q.Len() == 2)
	assert.Assert(t, q.Rows[0].Peptide == "ACDEFGHIK")
	assert.Assert(t, q.Rows[0].Target == 1)
	assert.Assert(t, q.Rows[1].Protein == "P02")
	assert.Assert(t, q.Index[1] == 1)
}

func Test_LoadXz(t *testing.T) {
	dir, err := os.MkdirTemp("", "peptable-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "data.csv.xz")
	f, err := os.Create(path)
	assert.NilError(t, err)
	w, err := xz.NewWriter(f)
	assert.NilError(t, err)
	_, err = w.Write([]byte("peptide,target_value\nACDEFGHIK,1\nLMNPQRSTV,0\n"))
	assert.NilError(t, err)
	assert.NilError(t, w.Close())
	assert.NilError(t, f.Close())

	q, err := Load(path)
	assert.NilError(t, err)
	assert.Assert(t, q.Len() == 2)
	assert.Assert(t, q.Rows[1].Peptide == "LMNPQRSTV")
}

func Test_FilterKeepsIndex(t *testing.T) {
	q := New(testRows())
	pos := q.Positives()
	assert.Assert(t, pos.Len() == 2)
	assert.DeepEqual(t, pos.Index, []int{0, 2})
	neg := q.Negatives()
	assert.Assert(t, neg.Len() == 3)
	assert.DeepEqual(t, neg.Index, []int{1, 3, 4})
}

func Test_SelectPeptides(t *testing.T) {
	q := New(testRows())
	s := q.SelectPeptides(map[string]bool{"ACDEFGHIK": true})
	assert.Assert(t, s.Len() == 2)
	assert.DeepEqual(t, s.Index, []int{0, 4})
}

func Test_SelectProteins(t *testing.T) {
	q := New(testRows())
	s := q.SelectProteins(map[string]bool{"P01": true, "P03": true})
	assert.Assert(t, s.Len() == 3)
	assert.DeepEqual(t, s.Index, []int{0, 2, 3})
}

func Test_Sample(t *testing.T) {
	q := New(testRows())
	rnd := rand.New(rand.NewSource(1))
	s, err := q.Sample(3, rnd)
	assert.NilError(t, err)
	assert.Assert(t, s.Len() == 3)
	seen := map[int]bool{}
	for _, j := range s.Index {
		assert.Assert(t, !seen[j])
		seen[j] = true
	}
	_, err = q.Sample(q.Len()+1, rnd)
	assert.Assert(t, err != nil)
}

func Test_Drop(t *testing.T) {
	q := New(testRows())
	s := q.Filter(func(r Row) bool { return r.Protein == "P02" })
	rest := q.Drop(s)
	assert.Assert(t, rest.Len() == 3)
	assert.DeepEqual(t, rest.Index, []int{0, 2, 3})
}

func Test_ByIndex(t *testing.T) {
	q := New(testRows())
	s, err := q.ByIndex([]int{4, 0})
	assert.NilError(t, err)
	assert.Assert(t, s.Rows[0].Protein == "P02")
	assert.Assert(t, s.Rows[1].Protein == "P01")
	_, err = q.ByIndex([]int{99})
	assert.Assert(t, err != nil)
}

func Test_SaveIndexRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "peptable-test-")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	q := New(testRows()).Positives()
	path := filepath.Join(dir, "idx.csv")
	assert.NilError(t, q.SaveIndex(iokit.File(path)))
	idx, err := LoadIndex(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, idx, q.Index)
}

func Test_LabelCounts(t *testing.T) {
	neg, pos := New(testRows()).LabelCounts()
	assert.Assert(t, neg == 3)
	assert.Assert(t, pos == 2)
}
