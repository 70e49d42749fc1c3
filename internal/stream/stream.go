// Package stream supplies labeled instances to the evaluator: CSV files
// and synthetic drift scenarios described in TOML.
package stream

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"samstream/internal/instance"
)

// Source is a finite or endless ordered stream of labeled instances.
// Next returns io.EOF once the stream is exhausted.
type Source interface {
	Header() *instance.Header
	Next() (*instance.Instance, error)
}

// CSVSource reads one instance per record: attribute values followed by
// an integer class label in the last column. The first record must be a
// header row and is skipped.
type CSVSource struct {
	header *instance.Header
	reader *csv.Reader
}

func NewCSVSource(r io.Reader, numClasses int) (*CSVSource, error) {
	reader := csv.NewReader(r)
	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header: %w", err)
	}
	if len(head) < 2 {
		return nil, fmt.Errorf("csv header needs at least one attribute and the class column")
	}
	attrs := make([]instance.Attribute, len(head)-1)
	for i := range attrs {
		attrs[i] = instance.Attribute{Name: head[i], Kind: instance.KindNumeric}
	}
	return &CSVSource{
		header: instance.NewHeader(attrs, numClasses),
		reader: reader,
	}, nil
}

func (s *CSVSource) Header() *instance.Header {
	return s.header
}

func (s *CSVSource) Next() (*instance.Instance, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, err
	}
	if len(record) != s.header.NumAttributes()+1 {
		return nil, fmt.Errorf("record width %d does not match the header", len(record))
	}
	values := make([]float64, len(record)-1)
	for i := range values {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse attribute %d: %w", i, err)
		}
		values[i] = v
	}
	class, err := strconv.Atoi(record[len(record)-1])
	if err != nil {
		return nil, fmt.Errorf("unable to parse class label: %w", err)
	}
	if class < 0 || class >= s.header.NumClasses {
		return nil, fmt.Errorf("class label %d out of range [0,%d)", class, s.header.NumClasses)
	}
	return instance.New(values, class), nil
}
