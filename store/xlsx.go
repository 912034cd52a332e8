package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// xlsxStore keeps one workbook with a sheet per website.
type xlsxStore struct {
	path    string
	file    *excelize.File
	created bool
}

func openXLSX(path string) (*xlsxStore, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat workbook: %w", err)
		}
		return &xlsxStore{path: path, file: excelize.NewFile(), created: true}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	return &xlsxStore{path: path, file: f}, nil
}

// Append adds the records below the existing rows of each sheet and saves the
// workbook once.
func (s *xlsxStore) Append(records []Record) error {
	order, groups := groupByPartition(records)

	for _, sheet := range order {
		if err := s.appendSheet(sheet, groups[sheet]); err != nil {
			return fmt.Errorf("%w: sheet %s: %w", ErrWrite, sheet, err)
		}
	}

	if s.created {
		if err := s.dropDefaultSheet(order); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		if err := s.file.SaveAs(s.path); err != nil {
			return fmt.Errorf("%w: failed to save workbook: %w", ErrWrite, err)
		}
		s.created = false
		return nil
	}

	if err := s.file.Save(); err != nil {
		return fmt.Errorf("%w: failed to save workbook: %w", ErrWrite, err)
	}
	return nil
}

func (s *xlsxStore) appendSheet(sheet string, records []Record) error {
	index, err := s.file.GetSheetIndex(sheet)
	if err != nil {
		return err
	}

	if index == -1 {
		if _, err := s.file.NewSheet(sheet); err != nil {
			return err
		}
	}

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return err
	}

	next := len(rows) + 1
	if len(rows) == 0 {
		if err := s.setRow(sheet, next, stringsToCells(header)); err != nil {
			return err
		}
		next++
	}

	for _, r := range records {
		if err := s.setRow(sheet, next, recordCells(r)); err != nil {
			return err
		}
		next++
	}

	return nil
}

func (s *xlsxStore) setRow(sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return s.file.SetSheetRow(sheet, cell, &cells)
}

// dropDefaultSheet removes the blank sheet a new workbook starts with.
func (s *xlsxStore) dropDefaultSheet(sheets []string) error {
	if len(sheets) == 0 {
		return nil
	}
	for _, sheet := range sheets {
		if sheet == defaultSheet {
			return nil
		}
	}

	if err := s.file.DeleteSheet(defaultSheet); err != nil {
		return err
	}

	index, err := s.file.GetSheetIndex(sheets[0])
	if err != nil {
		return err
	}
	s.file.SetActiveSheet(index)

	return nil
}

func (s *xlsxStore) Close() error {
	return s.file.Close()
}

func stringsToCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// recordCells writes elapsed seconds as a number, or an empty cell for DOWN rows.
func recordCells(r Record) []interface{} {
	var elapsed interface{} = ""
	if r.Elapsed != nil {
		elapsed = r.Elapsed.Seconds()
	}
	return []interface{}{r.timestamp(), r.Website, string(r.Status), elapsed, r.Error, r.RunID}
}
