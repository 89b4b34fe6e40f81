package pipeline

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

var errStopWalk = errors.New("stop walk")

// Discover walks root and yields every file whose extension matches ext,
// ignoring case, in walk order. A walk error is yielded once with an empty
// path and ends the sequence. Each range over the sequence walks afresh.
func Discover(root, ext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}
			if !yield(path, nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield("", err)
		}
	}
}

// LevelCode returns the chart-level code of a cell: the filename byte at
// offset, or sentinel when the name is too short.
func LevelCode(filename string, offset int, sentinel byte) byte {
	if offset < 0 || offset >= len(filename) {
		return sentinel
	}
	return filename[offset]
}
