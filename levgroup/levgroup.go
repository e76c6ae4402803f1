/*
Package levgroup clusters peptides by Levenshtein edit distance.

A group is grown greedily with single linkage: a peptide joins the
first existing group containing a member within the distance threshold,
otherwise it starts a new group. The resulting peptide to group-id
table is what the Levenshtein splitting strategy consumes.
*/
package levgroup

import (
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
)

// DefaultThreshold is the maximal edit distance between two peptides
// of the same group.
const DefaultThreshold = 3

// unit costs; DefaultOptions charges 2 per substitution
var distanceOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

/*
Row binds a peptide to its similarity group id
*/
type Row struct {
	Peptide string `csv:"peptide"`
	Group   int    `csv:"lev_group"`
}

/*
Build clusters the given peptides under the edit-distance threshold.
Duplicate peptides are grouped once. The input order does not affect
group membership of identical inputs, peptides are processed sorted.
*/
func Build(peptides []string, threshold int) map[string]int {
	unique := map[string]bool{}
	for _, p := range peptides {
		unique[p] = true
	}
	sorted := make([]string, 0, len(unique))
	for p := range unique {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	groups := map[string]int{}
	var members [][]string
	for _, p := range sorted {
		assigned := -1
	scan:
		for g, ms := range members {
			for _, m := range ms {
				if levenshtein.DistanceForStrings([]rune(m), []rune(p), distanceOptions) <= threshold {
					assigned = g
					break scan
				}
			}
		}
		if assigned < 0 {
			assigned = len(members)
			members = append(members, nil)
		}
		members[assigned] = append(members[assigned], p)
		groups[p] = assigned
	}
	return groups
}

/*
Save writes a peptide to group-id table as CSV
*/
func Save(groups map[string]int, out iokit.Output) error {
	rows := make([]Row, 0, len(groups))
	for p, g := range groups {
		rows = append(rows, Row{Peptide: p, Group: g})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Peptide < rows[j].Peptide })
	wh, err := out.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	if err := gocsv.Marshal(&rows, wh); err != nil {
		return zorros.Trace(err)
	}
	return wh.Commit()
}

/*
Load reads a peptide to group-id table written by Save
*/
func Load(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer f.Close()
	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, zorros.Wrapf(err, "failed to decode %s: %v", path, err)
	}
	groups := make(map[string]int, len(rows))
	for _, r := range rows {
		groups[r.Peptide] = r.Group
	}
	return groups, nil
}
