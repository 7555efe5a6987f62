// Package ingest reads loan records from CSV sources.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"loangraph/application/ports"
	"loangraph/domain/core/entities"
	apperrors "loangraph/pkg/errors"

	"go.uber.org/zap"
)

// ctxCheckInterval is how many rows are read between cancellation checks
const ctxCheckInterval = 4096

// CSVStore implements ports.RecordStore over CSV input with a header row.
// Malformed rows are skipped with a warning; only an unreadable source fails.
type CSVStore struct {
	logger *zap.Logger
}

var _ ports.RecordStore = (*CSVStore)(nil)

// NewCSVStore creates a new CSV record store
func NewCSVStore(logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{logger: logger}
}

// LoadFile opens path and reads every well-formed record
func (s *CSVStore) LoadFile(ctx context.Context, path string) ([]entities.LoanRecord, ports.IngestReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ports.IngestReport{Source: path}, apperrors.NewIngestionError(path, err)
	}
	defer file.Close()

	return s.Load(ctx, path, file)
}

// Load reads every well-formed record from r. The first row is the header.
// Line numbers in warnings count the header as line 1.
func (s *CSVStore) Load(ctx context.Context, name string, r io.Reader) ([]entities.LoanRecord, ports.IngestReport, error) {
	report := ports.IngestReport{Source: name}
	logger := s.logger.With(zap.String("source", name))

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []entities.LoanRecord{}, report, nil
		}
		var parseErr *csv.ParseError
		if !errors.As(err, &parseErr) {
			return nil, report, apperrors.NewIngestionError(name, err)
		}
		logger.Warn("Malformed header row", zap.Error(parseErr.Err))
	}

	records := make([]entities.LoanRecord, 0, 1024)
	for i := 0; ; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, apperrors.NewIngestionError(name, err)
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		line := i + 2
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, report, apperrors.NewIngestionError(name, err)
			}
			s.drop(logger, &report, line, parseErr.Err.Error())
			continue
		}

		if len(row) < entities.ColumnCount {
			s.drop(logger, &report, line, fmt.Sprintf("expected %d columns, found %d", entities.ColumnCount, len(row)))
			continue
		}

		records = append(records, ParseRecord(row))
	}

	report.Accepted = len(records)
	return records, report, nil
}

func (s *CSVStore) drop(logger *zap.Logger, report *ports.IngestReport, line int, reason string) {
	logger.Warn("Skipping malformed row",
		zap.Int("line", line),
		zap.String("reason", reason),
	)
	report.Dropped++
	report.DroppedLines = append(report.DroppedLines, line)
}

// ParseRecord decodes a row of at least ColumnCount fields. Text columns are
// copied verbatim and numeric columns that do not parse are left nil.
func ParseRecord(row []string) entities.LoanRecord {
	return entities.LoanRecord{
		PersonAge:                  parseUint32(row[0]),
		PersonGender:               row[1],
		PersonEducation:            row[2],
		PersonIncome:               parseFloat(row[3]),
		PersonEmpExp:               parseFloat(row[4]),
		PersonHomeOwnership:        row[5],
		LoanAmount:                 parseFloat(row[6]),
		LoanIntent:                 row[7],
		LoanIntRate:                parseFloat(row[8]),
		LoanPercentIncome:          parseFloat(row[9]),
		CreditHistoryLength:        parseUint32(row[10]),
		CreditScore:                parseUint32(row[11]),
		PreviousLoanDefaultsOnFile: parseUint8(row[12]),
		LoanStatus:                 parseUint8(row[13]),
	}
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseUint32(s string) *uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	out := uint32(v)
	return &out
}

func parseUint8(s string) *uint8 {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return nil
	}
	out := uint8(v)
	return &out
}
