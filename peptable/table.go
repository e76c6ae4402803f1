/*
Package peptable implements the labeled peptide table consumed by the
splitting strategies and the classifier training loop.

A table is an ordered list of rows plus the original row indices of the
source dataset. Subselections keep the original indices, so persisted
split files always refer to rows of the full table they were computed
from.
*/
package peptable

import (
	"math/rand"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/zorros"

	"mhcii/fu"
)

/*
Row is a single labeled sample of the dataset
*/
type Row struct {
	Peptide  string  `csv:"peptide"`
	Target   float64 `csv:"target_value"`
	Protein  string  `csv:"protein,omitempty"`
	FileName string  `csv:"file_name,omitempty"`
}

/*
Table is a labeled peptide dataset bound to original row indices
*/
type Table struct {
	Rows  []Row
	Index []int
}

/*
New creates a table over rows indexed 0..len(rows)-1
*/
func New(rows []Row) *Table {
	index := make([]int, len(rows))
	for i := range rows {
		index[i] = i
	}
	return &Table{Rows: rows, Index: index}
}

/*
Load reads a CSV table from path, transparently decompressing .xz files
*/
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer f.Close()
	var rows []Row
	if strings.HasSuffix(path, ".xz") {
		r, err := xz.NewReader(f)
		if err != nil {
			return nil, zorros.Wrapf(err, "bad xz stream %s: %v", path, err)
		}
		if err := gocsv.Unmarshal(r, &rows); err != nil {
			return nil, zorros.Wrapf(err, "failed to decode %s: %v", path, err)
		}
	} else {
		if err := gocsv.UnmarshalFile(f, &rows); err != nil {
			return nil, zorros.Wrapf(err, "failed to decode %s: %v", path, err)
		}
	}
	return New(rows), nil
}

func (t *Table) Len() int { return len(t.Rows) }

/*
Peptides returns the peptide column
*/
func (t *Table) Peptides() []string {
	r := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		r[i] = row.Peptide
	}
	return r
}

/*
PeptideSet returns unique peptide identities of the table
*/
func (t *Table) PeptideSet() fu.StrSet {
	return fu.MakeStrSet(t.Peptides())
}

/*
Filter selects rows matching the predicate, keeping original indices
*/
func (t *Table) Filter(pred func(Row) bool) *Table {
	q := &Table{}
	for i, row := range t.Rows {
		if pred(row) {
			q.Rows = append(q.Rows, row)
			q.Index = append(q.Index, t.Index[i])
		}
	}
	return q
}

/*
Positives selects rows with target 1
*/
func (t *Table) Positives() *Table {
	return t.Filter(func(r Row) bool { return r.Target == 1 })
}

/*
Negatives selects rows with target 0
*/
func (t *Table) Negatives() *Table {
	return t.Filter(func(r Row) bool { return r.Target == 0 })
}

/*
SelectPeptides selects rows whose peptide belongs to the given set
*/
func (t *Table) SelectPeptides(s fu.StrSet) *Table {
	return t.Filter(func(r Row) bool { return s[r.Peptide] })
}

/*
SelectProteins selects rows whose protein accession belongs to the set
*/
func (t *Table) SelectProteins(s fu.StrSet) *Table {
	return t.Filter(func(r Row) bool { return s[r.Protein] })
}

/*
Proteins returns unique protein accessions of the table
*/
func (t *Table) Proteins() fu.StrSet {
	s := fu.StrSet{}
	for _, row := range t.Rows {
		if row.Protein != "" {
			s[row.Protein] = true
		}
	}
	return s
}

/*
Sample selects n random rows without replacement
*/
func (t *Table) Sample(n int, rnd *rand.Rand) (*Table, error) {
	if n > t.Len() {
		return nil, zorros.Errorf("cannot sample %d rows from a table of %d", n, t.Len())
	}
	perm := rnd.Perm(t.Len())[:n]
	q := &Table{Rows: make([]Row, n), Index: make([]int, n)}
	for i, j := range perm {
		q.Rows[i] = t.Rows[j]
		q.Index[i] = t.Index[j]
	}
	return q, nil
}

/*
SampleFrac selects the given fraction of rows without replacement
*/
func (t *Table) SampleFrac(frac float64, rnd *rand.Rand) (*Table, error) {
	return t.Sample(int(frac*float64(t.Len())), rnd)
}

/*
Drop removes rows whose original index occurs in q
*/
func (t *Table) Drop(q *Table) *Table {
	drop := make(map[int]bool, q.Len())
	for _, i := range q.Index {
		drop[i] = true
	}
	r := &Table{}
	for i, row := range t.Rows {
		if !drop[t.Index[i]] {
			r.Rows = append(r.Rows, row)
			r.Index = append(r.Index, t.Index[i])
		}
	}
	return r
}

/*
Append concatenates two tables keeping both index sets
*/
func (t *Table) Append(q *Table) *Table {
	return &Table{
		Rows:  append(append([]Row{}, t.Rows...), q.Rows...),
		Index: append(append([]int{}, t.Index...), q.Index...),
	}
}

/*
LabelCounts returns the count of negative and positive samples
*/
func (t *Table) LabelCounts() (neg, pos int) {
	for _, row := range t.Rows {
		if row.Target == 1 {
			pos++
		} else {
			neg++
		}
	}
	return
}

/*
ByIndex selects rows of the full table by original index
*/
func (t *Table) ByIndex(index []int) (*Table, error) {
	pos := make(map[int]int, t.Len())
	for i, j := range t.Index {
		pos[j] = i
	}
	q := &Table{Rows: make([]Row, 0, len(index)), Index: make([]int, 0, len(index))}
	for _, j := range index {
		i, ok := pos[j]
		if !ok {
			return nil, zorros.Errorf("row index %d not present in table", j)
		}
		q.Rows = append(q.Rows, t.Rows[i])
		q.Index = append(q.Index, t.Index[i])
	}
	return q, nil
}
