/*
Package encode turns peptide sequences into fixed-length token-id
vectors with padding masks for the transformer classifier.

Uppercase letters are the canonical amino acids plus the usual
ambiguity codes, lowercase letters denote residues carrying a
post-translational modification.
*/
package encode

import (
	"go-ml.dev/pkg/zorros"

	"mhcii/peptable"
)

// PadToken is the token id reserved for padding positions.
const PadToken = 0

const alphabet = "ACDEFGHIKLMNPQRSTVWY" + "BJOUXZ" + "acdefghiklmnpqrstvwy"

var aaToInt = func() map[rune]int {
	m := make(map[rune]int, len(alphabet))
	for i, r := range alphabet {
		m[r] = i + 1
	}
	return m
}()

/*
NTokens returns the vocabulary size including the padding token
*/
func NTokens() int { return len(alphabet) + 1 }

/*
Encode maps a peptide to token ids padded to maxLen together with the
padding mask (true at padded positions)
*/
func Encode(peptide string, maxLen int) ([]int, []bool, error) {
	runes := []rune(peptide)
	if len(runes) == 0 {
		return nil, nil, zorros.Errorf("empty peptide")
	}
	if len(runes) > maxLen {
		return nil, nil, zorros.Errorf("peptide %q longer than %d residues", peptide, maxLen)
	}
	ids := make([]int, maxLen)
	mask := make([]bool, maxLen)
	for i, r := range runes {
		id, ok := aaToInt[r]
		if !ok {
			return nil, nil, zorros.Errorf("unknown residue %q in peptide %q", r, peptide)
		}
		ids[i] = id
	}
	for i := len(runes); i < maxLen; i++ {
		ids[i] = PadToken
		mask[i] = true
	}
	return ids, mask, nil
}

/*
Batch is a fixed-length encoded slice of the dataset
*/
type Batch struct {
	X    [][]int
	Mask [][]bool
	Y    []float64
}

/*
PrepareBatch encodes rows into a Batch of maxLen-sized samples
*/
func PrepareBatch(rows []peptable.Row, maxLen int) (Batch, error) {
	b := Batch{
		X:    make([][]int, len(rows)),
		Mask: make([][]bool, len(rows)),
		Y:    make([]float64, len(rows)),
	}
	for i, row := range rows {
		ids, mask, err := Encode(row.Peptide, maxLen)
		if err != nil {
			return Batch{}, err
		}
		b.X[i] = ids
		b.Mask[i] = mask
		b.Y[i] = row.Target
	}
	return b, nil
}

/*
MaxPeptideLen returns the longest peptide of the table
*/
func MaxPeptideLen(t *peptable.Table) int {
	n := 0
	for _, row := range t.Rows {
		if l := len([]rune(row.Peptide)); l > n {
			n = l
		}
	}
	return n
}
