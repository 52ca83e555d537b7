package inventory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hsb3/github_inventory/internal/report"
)

const (
	serviceDependenciesMessageConstant  = "pipeline service dependencies not configured"
	optionFieldUsernameConstant         = "username"
	optionFieldLimitConstant            = "limit"
	optionFieldDatasetSelectionConstant = "dataset selection"
	usernameRequiredMessageConstant     = "a username is required unless only starred repositories are collected"
	negativeLimitMessageConstant        = "limit must be zero or positive"
	conflictingSelectionMessageConstant = "owned-only and starred-only are mutually exclusive"
	pipelineCompletedLogMessageConstant = "inventory pipeline completed"
	logFieldOwnedCountConstant          = "owned_count"
	logFieldStarredCountConstant        = "starred_count"
	logFieldReportPathConstant          = "report_path"
)

// ErrServiceDependenciesNotConfigured indicates the pipeline service was constructed without collaborators.
var ErrServiceDependenciesNotConfigured = errors.New(serviceDependenciesMessageConstant)

// DocumentBuilder renders a markdown document from collected datasets.
type DocumentBuilder interface {
	Build(inputs report.BuildInputs) string
}

// PipelineOptions selects datasets, the account, and output destinations for one run.
type PipelineOptions struct {
	Username        string
	CollectionLimit int
	OwnedCSVPath    string
	StarredCSVPath  string
	ReportPath      string
	OwnedOnly       bool
	StarredOnly     bool
}

// PipelineSummary reports what a pipeline run produced.
type PipelineSummary struct {
	OwnedCount    int
	StarredCount  int
	ReportWritten bool
}

// PipelineService runs the full inventory flow: collect, enrich with branch
// counts, persist CSV datasets, then render and write the markdown report.
type PipelineService struct {
	collector       *Collector
	enricher        *BranchEnricher
	writer          *Writer
	documentBuilder DocumentBuilder
	logger          *zap.Logger
}

// NewPipelineService constructs a PipelineService.
func NewPipelineService(collector *Collector, enricher *BranchEnricher, writer *Writer, documentBuilder DocumentBuilder, logger *zap.Logger) (*PipelineService, error) {
	if collector == nil || enricher == nil || writer == nil || documentBuilder == nil {
		return nil, ErrServiceDependenciesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{
		collector:       collector,
		enricher:        enricher,
		writer:          writer,
		documentBuilder: documentBuilder,
		logger:          logger,
	}, nil
}

// Run executes the pipeline for one account.
func (service *PipelineService) Run(executionContext context.Context, options PipelineOptions) (PipelineSummary, error) {
	options.Username = strings.TrimSpace(options.Username)
	if validationError := validatePipelineOptions(options); validationError != nil {
		return PipelineSummary{}, validationError
	}

	summary := PipelineSummary{}
	buildInputs := report.BuildInputs{Account: options.Username, LimitApplied: options.CollectionLimit}

	if !options.StarredOnly {
		ownedCollection, collectError := service.collector.CollectOwned(executionContext, options.Username, options.CollectionLimit)
		if collectError != nil {
			return PipelineSummary{}, collectError
		}
		service.enricher.EnrichOwned(executionContext, options.Username, ownedCollection.Repositories)
		if writeError := service.writer.WriteOwnedCSV(options.OwnedCSVPath, ownedCollection.Repositories); writeError != nil {
			return PipelineSummary{}, writeError
		}
		summary.OwnedCount = len(ownedCollection.Repositories)
		buildInputs.OwnedRows = ownedRepositoryRows(ownedCollection.Repositories)
	}

	if !options.OwnedOnly {
		starredCollection, collectError := service.collector.CollectStarred(executionContext, options.Username, options.CollectionLimit)
		if collectError != nil {
			return PipelineSummary{}, collectError
		}
		service.enricher.EnrichStarred(executionContext, starredCollection.Repositories)
		if writeError := service.writer.WriteStarredCSV(options.StarredCSVPath, starredCollection.Repositories); writeError != nil {
			return PipelineSummary{}, writeError
		}
		summary.StarredCount = len(starredCollection.Repositories)
		buildInputs.StarredRows = starredRepositoryRows(starredCollection.Repositories)
	}

	documentContent := service.documentBuilder.Build(buildInputs)
	if writeError := service.writer.WriteDocument(options.ReportPath, documentContent); writeError != nil {
		return PipelineSummary{}, writeError
	}
	summary.ReportWritten = true

	service.logger.Info(
		pipelineCompletedLogMessageConstant,
		zap.String(logFieldUsernameConstant, options.Username),
		zap.Int(logFieldOwnedCountConstant, summary.OwnedCount),
		zap.Int(logFieldStarredCountConstant, summary.StarredCount),
		zap.String(logFieldReportPathConstant, options.ReportPath),
	)
	return summary, nil
}

func validatePipelineOptions(options PipelineOptions) error {
	if options.OwnedOnly && options.StarredOnly {
		return ConfigurationError{FieldName: optionFieldDatasetSelectionConstant, Message: conflictingSelectionMessageConstant}
	}
	if options.CollectionLimit < 0 {
		return ConfigurationError{FieldName: optionFieldLimitConstant, Message: negativeLimitMessageConstant}
	}
	if len(options.Username) == 0 && !options.StarredOnly {
		return ConfigurationError{FieldName: optionFieldUsernameConstant, Message: usernameRequiredMessageConstant}
	}
	return nil
}

// ownedRepositoryRows converts records to report rows by zipping the CSV
// header with each CSV record, so the report always sees exactly the values
// the CSV files carry.
func ownedRepositoryRows(repositories []OwnedRepository) []report.Row {
	rows := make([]report.Row, 0, len(repositories))
	for _, repository := range repositories {
		rows = append(rows, zipRow(OwnedCSVHeader, repository.CSVRecord()))
	}
	return rows
}

func starredRepositoryRows(repositories []StarredRepository) []report.Row {
	rows := make([]report.Row, 0, len(repositories))
	for _, repository := range repositories {
		rows = append(rows, zipRow(StarredCSVHeader, repository.CSVRecord()))
	}
	return rows
}

func zipRow(header []string, record []string) report.Row {
	row := make(report.Row, len(header))
	for columnIndex, columnName := range header {
		if columnIndex < len(record) {
			row[columnName] = record[columnIndex]
		}
	}
	return row
}
