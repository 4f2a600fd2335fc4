package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

const (
	defaultBatchSize = 500
	formatVersion    = 1

	TableResults   = "assessment_results"
	TableResponses = "assessment_responses"
)

var errNoTablesSelected = errors.New("backup: no tables selected")

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

// Service streams stored results to NDJSON and loads NDJSON backups of results and responses.
type Service struct {
	results   repository.ResultRepository
	responses repository.ResponseRepository
	logger    logrus.FieldLogger
	batchSize int
	now       func() time.Time
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

func NewService(results repository.ResultRepository, responses repository.ResponseRepository, logger logrus.FieldLogger, opts ...Option) *Service {
	svc := &Service{
		results:   results,
		responses: responses,
		logger:    logger.WithField("component", "backup"),
		batchSize: defaultBatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	filter   string
	reporter ProgressReporter
}

// WithFilter restricts the export with a result list filter expression.
func WithFilter(filter string) ExportOption {
	return func(cfg *exportConfig) {
		cfg.filter = filter
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables limits the import to the named record types.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// ImportStats counts what an import wrote and skipped.
type ImportStats struct {
	Responses int
	Results   int
	// Skipped counts results that already existed for their attempt.
	Skipped int
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	Filter     string         `json:"filter,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Export writes a meta record followed by one record per stored result, oldest id first.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	query := &repository.ListResultQuery{
		Pagination:  repository.Pagination{PageNo: 1, PageSize: int32(s.batchSize)},
		FilterOrder: repository.FilterOrder{Filter: cfg.filter, OrderBy: "id"},
	}
	page, total, err := s.results.List(ctx, query)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.now()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		Filter:     cfg.filter,
		Tables:     []string{TableResults},
		RowCounts:  map[string]int{TableResults: int(total)},
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	reporter.StartTable(TableResults, int(total))
	written := 0
	for len(page) > 0 {
		for _, res := range page {
			if err := writeRecord(writer, record{Type: TableResults, Payload: res}); err != nil {
				return err
			}
		}
		written += len(page)
		reporter.Increment(TableResults, len(page))
		if int64(written) >= total || len(page) < int(query.PageSize) {
			break
		}
		query.PageNo++
		if page, _, err = s.results.List(ctx, query); err != nil {
			return fmt.Errorf("list results page %d: %w", query.PageNo, err)
		}
	}
	reporter.FinishTable(TableResults)

	s.logger.WithFields(logrus.Fields{"results": written, "filter": cfg.filter}).Info("export finished")
	return writer.Flush()
}

// Import reads an NDJSON backup. Results that already exist for their attempt are kept
// and counted as skipped. Records of unselected types are ignored.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (ImportStats, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	selected := map[string]bool{TableResults: true, TableResponses: true}
	if len(cfg.tables) > 0 {
		selected = lo.SliceToMap(cfg.tables, func(t string) (string, bool) { return t, true })
		if !selected[TableResults] && !selected[TableResponses] {
			return ImportStats{}, errNoTablesSelected
		}
	}

	var (
		stats    ImportStats
		metaSeen bool
		lineNo   int
	)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("read backup: %w", err)
		}
		lineNo++
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			if err := s.importLine(ctx, line, lineNo, selected, &metaSeen, &stats); err != nil {
				return stats, err
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	if !metaSeen {
		return stats, errors.New("backup: missing meta record")
	}

	s.logger.WithFields(logrus.Fields{
		"responses": stats.Responses,
		"results":   stats.Results,
		"skipped":   stats.Skipped,
	}).Info("import finished")
	return stats, nil
}

func (s *Service) importLine(ctx context.Context, line []byte, lineNo int, selected map[string]bool, metaSeen *bool, stats *ImportStats) error {
	var rec rawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return fmt.Errorf("decode record on line %d: %w", lineNo, err)
	}
	if rec.Type == "meta" {
		if rec.Version != formatVersion {
			return fmt.Errorf("backup: unsupported format version %d", rec.Version)
		}
		*metaSeen = true
		return nil
	}
	if !*metaSeen {
		return fmt.Errorf("backup: record on line %d precedes the meta record", lineNo)
	}
	if !selected[rec.Type] {
		return nil
	}
	if len(rec.Payload) == 0 {
		return fmt.Errorf("backup: missing payload for %s on line %d", rec.Type, lineNo)
	}

	switch rec.Type {
	case TableResults:
		var res entity.AssessmentResult
		if err := json.Unmarshal(rec.Payload, &res); err != nil {
			return fmt.Errorf("decode result on line %d: %w", lineNo, err)
		}
		res.ID = 0
		if _, err := s.results.Create(ctx, &res); err != nil {
			if errors.Is(err, entity.ErrDuplicateResult) {
				stats.Skipped++
				return nil
			}
			return fmt.Errorf("import result on line %d: %w", lineNo, err)
		}
		stats.Results++
	case TableResponses:
		var resp entity.Response
		if err := json.Unmarshal(rec.Payload, &resp); err != nil {
			return fmt.Errorf("decode response on line %d: %w", lineNo, err)
		}
		resp.ID = 0
		if _, err := s.responses.Create(ctx, &resp); err != nil {
			return fmt.Errorf("import response on line %d: %w", lineNo, err)
		}
		stats.Responses++
	default:
		s.logger.WithField("type", rec.Type).Warn("skipping unknown backup record type")
	}
	return nil
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
