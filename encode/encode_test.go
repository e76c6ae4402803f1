package encode

import (
	"testing"

	"gotest.tools/assert"

	"mhcii/peptable"
)

func Test_Encode(t *testing.T) {
	ids, mask, err := Encode("ACD", 5)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []int{1, 2, 3, PadToken, PadToken})
	assert.DeepEqual(t, mask, []bool{false, false, false, true, true})
}

func Test_EncodeModified(t *testing.T) {
	// lowercase residues carry a modification and get their own ids
	upper, _, err := Encode("AC", 2)
	assert.NilError(t, err)
	lower, _, err := Encode("ac", 2)
	assert.NilError(t, err)
	assert.Assert(t, upper[0] != lower[0])
	assert.Assert(t, upper[1] != lower[1])
}

func Test_EncodeErrors(t *testing.T) {
	_, _, err := Encode("", 5)
	assert.Assert(t, err != nil)
	_, _, err = Encode("ACDEFG", 5)
	assert.Assert(t, err != nil)
	_, _, err = Encode("AC1", 5)
	assert.Assert(t, err != nil)
}

func Test_NTokens(t *testing.T) {
	assert.Assert(t, NTokens() == 47)
}

func Test_PrepareBatch(t *testing.T) {
	rows := []peptable.Row{
		{Peptide: "ACDEF", Target: 1},
		{Peptide: "GHI", Target: 0},
	}
	b, err := PrepareBatch(rows, 6)
	assert.NilError(t, err)
	assert.Assert(t, len(b.X) == 2)
	assert.Assert(t, len(b.X[0]) == 6)
	assert.DeepEqual(t, b.Y, []float64{1, 0})
	assert.Assert(t, b.Mask[1][3] && b.Mask[1][5])
	assert.Assert(t, !b.Mask[0][4])

	_, err = PrepareBatch([]peptable.Row{{Peptide: "TOOLONGPEPTIDE"}}, 6)
	assert.Assert(t, err != nil)
}

func Test_MaxPeptideLen(t *testing.T) {
	q := peptable.New([]peptable.Row{
		{Peptide: "ACD"},
		{Peptide: "ACDEFGHIK"},
		{Peptide: "AC"},
	})
	assert.Assert(t, MaxPeptideLen(q) == 9)
}
