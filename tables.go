package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/larryleihua/spatio-temporal-factor-copula/pkg/stfc"
)

// ParamFile is the YAML layout of a parameter file. Either a single vector
// under "params" or several under "sets" may be given.
type ParamFile struct {
	Params []float64   `yaml:"params,omitempty"`
	Sets   [][]float64 `yaml:"sets,omitempty"`
}

// readNumericCSV reads a CSV table of exactly `columns` numeric columns.
// A first row whose leading cell is not a number is treated as a header.
func readNumericCSV(r io.Reader, columns int) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows [][]float64
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		line++

		if line == 1 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64); err != nil {
				continue // header
			}
		}

		row := make([]float64, columns)
		for c, cell := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", line, c+1, err)
			}
			row[c] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseObservations converts rows of (time, count, longitude, latitude)
func parseObservations(r io.Reader) ([]stfc.Observation, error) {
	rows, err := readNumericCSV(r, 4)
	if err != nil {
		return nil, err
	}

	observations := make([]stfc.Observation, 0, len(rows))
	for i, row := range rows {
		count := row[1]
		if count < 0 || count != math.Trunc(count) {
			return nil, fmt.Errorf("observation %d: count must be a non-negative integer, got %v", i+1, count)
		}
		if count > math.MaxInt32 {
			return nil, fmt.Errorf("observation %d: count %v exceeds %d", i+1, count, math.MaxInt32)
		}
		observations = append(observations, stfc.Observation{
			Time:      row[0],
			Count:     int(count),
			Longitude: row[2],
			Latitude:  row[3],
		})
	}
	return observations, nil
}

// parseCenters converts rows of (longitude, latitude)
func parseCenters(r io.Reader) ([]stfc.Center, error) {
	rows, err := readNumericCSV(r, 2)
	if err != nil {
		return nil, err
	}

	centers := make([]stfc.Center, 0, len(rows))
	for _, row := range rows {
		centers = append(centers, stfc.Center{Longitude: row[0], Latitude: row[1]})
	}
	return centers, nil
}

// parseParamSets decodes a ParamFile and returns its vectors, single vector first
func parseParamSets(r io.Reader) ([][]float64, error) {
	var pf ParamFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	var sets [][]float64
	if len(pf.Params) > 0 {
		sets = append(sets, pf.Params)
	}
	sets = append(sets, pf.Sets...)
	if len(sets) == 0 {
		return nil, fmt.Errorf("no parameter vectors found (expected 'params' or 'sets')")
	}
	return sets, nil
}

// loadObservationsFromFile loads the observation table from a CSV file
func loadObservationsFromFile(filename string) ([]stfc.Observation, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", filename, err)
	}
	defer file.Close()

	observations, err := parseObservations(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return observations, nil
}

// loadCentersFromFile loads the kernel center table from a CSV file
func loadCentersFromFile(filename string) ([]stfc.Center, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", filename, err)
	}
	defer file.Close()

	centers, err := parseCenters(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return centers, nil
}

// loadParamSetsFromFile loads parameter vectors from a YAML file
func loadParamSetsFromFile(filename string) ([][]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", filename, err)
	}
	defer file.Close()

	sets, err := parseParamSets(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return sets, nil
}
