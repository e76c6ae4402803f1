package model

import (
	"mhcii/peptable"
)

/*
Dataset is an abstraction of some source of a data to feed hungry models
*/
type Dataset struct {
	Source *peptable.Table // the full labeled peptide table
	Train  []int           // original row indices of the training partition
	Val    []int           // original row indices of the validation partition
	Test   []int           // original row indices of the test partition, optional
	SeqLen int             // fixed encoded length; 0 means the longest peptide of Source
}

/*
Partition materializes one partition of the dataset by its index list
*/
func (d Dataset) Partition(index []int) (*peptable.Table, error) {
	return d.Source.ByIndex(index)
}
