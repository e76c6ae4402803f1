package fu

import "sort"

/*
StrSet is a set of unique strings
*/
type StrSet map[string]bool

func MakeStrSet(a []string) StrSet {
	s := make(StrSet, len(a))
	for _, x := range a {
		s[x] = true
	}
	return s
}

/*
Difference returns elements of s not present in q
*/
func (s StrSet) Difference(q StrSet) StrSet {
	r := make(StrSet, len(s))
	for x := range s {
		if !q[x] {
			r[x] = true
		}
	}
	return r
}

/*
Intersection counts elements present in both s and q
*/
func (s StrSet) Intersection(q StrSet) int {
	n := 0
	for x := range s {
		if q[x] {
			n++
		}
	}
	return n
}

/*
Union returns elements present in s or q
*/
func (s StrSet) Union(q StrSet) StrSet {
	r := make(StrSet, len(s)+len(q))
	for x := range s {
		r[x] = true
	}
	for x := range q {
		r[x] = true
	}
	return r
}

/*
List returns set elements in sorted order, map iteration is not
deterministic and seeded sampling needs a stable input
*/
func (s StrSet) List() []string {
	r := make([]string, 0, len(s))
	for x := range s {
		r = append(r, x)
	}
	sort.Strings(r)
	return r
}
