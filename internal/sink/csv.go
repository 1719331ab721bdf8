package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
)

// header is the fixed column order of the output file.
var header = []string{
	"Code", "Collection", "Category", "Name", "Variant Name", "Price",
	"In Stock", "URL", "Image URL", "Body", "Key Information", "How to Use",
	"Key Ingredients", "All Ingredients",
}

// CSVSink streams rows to a CSV file. Every row is flushed and synced to
// storage before WriteRow returns, so an interrupted run always leaves a
// valid prefix of completed rows.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink creates (truncating) the output file at path.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return &CSVSink{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteHeader writes the fixed header row.
func (s *CSVSink) WriteHeader() error {
	if err := s.writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	return s.flush()
}

// WriteRow appends one variant row.
func (s *CSVSink) WriteRow(_ context.Context, row catalog.Row) error {
	record, err := encodeRow(row)
	if err != nil {
		return err
	}
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return s.flush()
}

// Close flushes remaining output and closes the file.
func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

func (s *CSVSink) flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}
	return nil
}

// encodeRow flattens a row into the fixed column order. Key ingredients are
// serialized as a JSON array so the structured records survive the tabular
// format.
func encodeRow(row catalog.Row) ([]string, error) {
	ingredients, err := MarshalIngredients(row.KeyIngredients)
	if err != nil {
		return nil, err
	}
	return []string{
		row.Code,
		row.Collection,
		row.Category,
		row.Name,
		row.VariantName,
		row.Price,
		row.InStock,
		row.URL,
		row.ImageURL,
		row.Body,
		row.KeyInformation,
		row.HowToUse,
		ingredients,
		row.AllIngredients,
	}, nil
}

// MarshalIngredients serializes ingredient cards for a text column. Nil and
// empty slices both render as an empty JSON array.
func MarshalIngredients(cards []catalog.IngredientCard) (string, error) {
	if cards == nil {
		cards = []catalog.IngredientCard{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("marshal ingredient cards: %w", err)
	}
	return string(data), nil
}
