package dataplatform

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
)

const importBatchSize = 1000

// ParseCSV reads a header row of keys followed by one document per row.
// Empty cells are skipped; rows with no non-empty cell are dropped.
func ParseCSV(r io.Reader, fn func(entries map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return apperror.NewBadRequestError("csv file is empty", nil)
	}
	if err != nil {
		return apperror.NewBadRequestError("failed to read csv header", err)
	}
	keys := make([]string, len(header))
	seen := make(map[string]bool)
	for i, h := range header {
		k := strings.TrimSpace(h)
		if k == "" {
			return apperror.NewBadRequestError(fmt.Sprintf("csv header column %d is empty", i+1), nil)
		}
		if seen[k] {
			return apperror.NewBadRequestError(fmt.Sprintf("csv header repeats %q", k), nil)
		}
		seen[k] = true
		keys[i] = k
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return apperror.NewBadRequestError(fmt.Sprintf("failed to read csv line %d", line), err)
		}
		if len(record) > len(keys) {
			return apperror.NewBadRequestError(fmt.Sprintf("csv line %d has more fields than the header", line), nil)
		}
		entries := make(map[string]string, len(record))
		for i, v := range record {
			if v = strings.TrimSpace(v); v != "" {
				entries[keys[i]] = v
			}
		}
		if len(entries) == 0 {
			continue
		}
		if err := fn(entries); err != nil {
			return err
		}
	}
}

// ImportCSV stores every row of r as a document of dataset in one transaction and
// returns the number of documents written.
func ImportCSV(ctx context.Context, pool db.TxBeginner, dataset string, r io.Reader) (int, error) {
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return 0, apperror.NewValidationError("dataset is required", []string{"dataset"}, nil)
	}

	total := 0
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		var docs, entries [][]any
		flush := func() error {
			if len(docs) == 0 {
				return nil
			}
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"data_documents"}, []string{"id", "dataset"}, pgx.CopyFromRows(docs)); err != nil {
				return db.MapError(err, "data documents")
			}
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"data_entries"}, []string{"document_id", "key", "value"}, pgx.CopyFromRows(entries)); err != nil {
				return db.MapError(err, "data entries")
			}
			total += len(docs)
			docs, entries = docs[:0], entries[:0]
			return nil
		}

		err := ParseCSV(r, func(row map[string]string) error {
			id := uuid.NewString()
			docs = append(docs, []any{id, dataset})
			for k, v := range row {
				entries = append(entries, []any{id, k, v})
			}
			if len(docs) >= importBatchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return err
		}
		return flush()
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
