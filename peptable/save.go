package peptable

import (
	"github.com/gocarina/gocsv"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
)

/*
IndexRow is a single line of a persisted split index file
*/
type IndexRow struct {
	Index int `csv:"index"`
}

/*
Save writes the full table as CSV to the given output
*/
func (t *Table) Save(out iokit.Output) error {
	return writeCSV(out, &t.Rows)
}

/*
SaveIndex writes the original row indices of the table as CSV
*/
func (t *Table) SaveIndex(out iokit.Output) error {
	rows := make([]IndexRow, len(t.Index))
	for i, j := range t.Index {
		rows[i] = IndexRow{Index: j}
	}
	return writeCSV(out, &rows)
}

/*
LoadIndex reads a persisted split index file
*/
func LoadIndex(path string) ([]int, error) {
	rows := []IndexRow{}
	f, err := iokit.File(path).Open()
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer f.Close()
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, zorros.Wrapf(err, "failed to decode index %s: %v", path, err)
	}
	index := make([]int, len(rows))
	for i, r := range rows {
		index[i] = r.Index
	}
	return index, nil
}

func writeCSV(out iokit.Output, v interface{}) error {
	wh, err := out.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	if err := gocsv.Marshal(v, wh); err != nil {
		return zorros.Trace(err)
	}
	return wh.Commit()
}
