package native

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// createTable writes a new delimited-text table. The file must not exist.
// Rows go to a temp file in the same directory that is renamed into place,
// so a failed call leaves nothing behind.
func createTable(path string, header []string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := encodeRecords(header, records)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// appendTable adds rows to an existing table whose header must equal header.
// A missing table is created instead. A failed append leaves the table at
// its previous size.
func appendTable(path string, header []string, records [][]string) error {
	existing, err := readHeader(path)
	if errors.Is(err, fs.ErrNotExist) {
		return createTable(path, header, records)
	}
	if err != nil {
		return err
	}
	if !slices.Equal(existing, header) {
		return fmt.Errorf("columns %v do not match existing table columns %v", header, existing)
	}
	if len(records) == 0 {
		return nil
	}

	data, err := encodeRecords(nil, records)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()

	f, err := openForAppend(path)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", path, err)
	}
	n, err := f.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		f.Close()
		return truncateTo(path, size, fmt.Errorf("append to %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return truncateTo(path, size, fmt.Errorf("close %s: %w", path, err))
	}
	return nil
}

// openForAppend opens an existing table for appending.
var openForAppend = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
}

// truncateTo cuts the table back to size after a failed append and returns
// cause, joined with the truncate error if the table could not be restored.
func truncateTo(path string, size int64, cause error) error {
	if err := os.Truncate(path, size); err != nil {
		return errors.Join(cause, fmt.Errorf("restore %s to %d bytes: %w", path, size, err))
	}
	return cause
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return header, nil
}

// encodeRecords renders the rows, preceded by header when it is not nil.
func encodeRecords(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header != nil {
		if err := w.Write(header); err != nil {
			return nil, fmt.Errorf("encode header: %w", err)
		}
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	return buf.Bytes(), nil
}
