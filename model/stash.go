package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
)

/*
ModelStash keeps the checkpoints of the most recent training
iterations in a temporary directory so the best one can be promoted to
the final model file when training completes
*/
type ModelStash struct {
	dir    string
	length int
	files  map[int]string
}

/*
NewStash creates a stash holding up to length checkpoints
*/
func NewStash(length int, pattern string) *ModelStash {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return &ModelStash{dir: dir, length: length, files: map[int]string{}}
}

/*
Output returns the output for the checkpoint of iteration i, evicting
the oldest stashed checkpoint when the stash is full
*/
func (s *ModelStash) Output(i int) (iokit.Output, error) {
	if old, ok := s.files[i-s.length]; ok {
		if err := os.Remove(old); err != nil {
			return nil, zorros.Trace(err)
		}
		delete(s.files, i-s.length)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("model-%d.json", i))
	s.files[i] = path
	return iokit.File(path), nil
}

/*
Reader opens the stashed checkpoint of iteration i
*/
func (s *ModelStash) Reader(i int) (io.ReadCloser, error) {
	path, ok := s.files[i]
	if !ok {
		return nil, zorros.Errorf("iteration %d is not stashed", i)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	return f, nil
}

func (s *ModelStash) Close() error {
	return os.RemoveAll(s.dir)
}
