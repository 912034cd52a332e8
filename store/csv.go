package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// csvStore keeps one CSV file per website next to the configured log file:
// logs/proxy.csv becomes logs/proxy.<partition>.csv.
type csvStore struct {
	dir  string
	stem string
	ext  string
}

func openCSV(path string) (*csvStore, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if ext == "" {
		ext = ".csv"
	}

	return &csvStore{dir: filepath.Dir(path), stem: stem, ext: ext}, nil
}

func (s *csvStore) PartitionPath(partition string) string {
	return filepath.Join(s.dir, s.stem+"."+partition+s.ext)
}

// Append writes every partition it can and reports all failures together.
func (s *csvStore) Append(records []Record) error {
	order, groups := groupByPartition(records)

	var errs []error
	for _, partition := range order {
		if err := s.appendPartition(partition, groups[partition]); err != nil {
			errs = append(errs, fmt.Errorf("partition %s: %w", partition, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrWrite, errors.Join(errs...))
	}
	return nil
}

func (s *csvStore) appendPartition(partition string, records []Record) (err error) {
	f, err := os.OpenFile(s.PartitionPath(partition), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}

	for _, r := range records {
		if err := w.Write(r.row()); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *csvStore) Close() error {
	return nil
}
