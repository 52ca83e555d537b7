package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hsb3/github_inventory/internal/inventory"
)

const (
	orchestratorDependenciesMessageConstant = "orchestrator dependencies not configured"
	ownedCSVFileNameConstant                = "repos.csv"
	starredCSVFileNameConstant              = "starred_repos.csv"
	reportFileNameConstant                  = "README.md"
	accountStartedLogMessageConstant        = "processing account"
	accountFailedLogMessageConstant         = "account processing failed"
	accountCompletedLogMessageConstant      = "account processing completed"
	logFieldAccountConstant                 = "account"
	logFieldAccountIndexConstant            = "account_index"
	logFieldAccountTotalConstant            = "account_total"
	logFieldLimitConstant                   = "limit"
	progressMessageTemplateConstant         = "[%d/%d] Processing: %s\n"
	accountFailureMessageTemplateConstant   = "Account %s failed: %s\n"
	summaryHeadingConstant                  = "\nBatch processing summary\n"
	summarySuccessTemplateConstant          = "  Successful accounts: %d\n"
	summaryFailureTemplateConstant          = "  Failed accounts: %d\n"
	summaryTotalTemplateConstant            = "  Total accounts processed: %d\n"
)

// ErrOrchestratorDependenciesNotConfigured indicates the orchestrator was constructed without collaborators.
var ErrOrchestratorDependenciesNotConfigured = errors.New(orchestratorDependenciesMessageConstant)

// AccountPipeline runs the inventory flow for a single account.
type AccountPipeline interface {
	Run(executionContext context.Context, options inventory.PipelineOptions) (inventory.PipelineSummary, error)
}

// AccountResult records the outcome of one account in a batch run.
type AccountResult struct {
	Account      string
	OwnedCount   int
	StarredCount int
	Failure      error
}

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Results     []AccountResult
	FailedCount int
}

// Orchestrator processes a list of accounts sequentially. A failing account is
// recorded and skipped; remaining accounts still run.
type Orchestrator struct {
	pipeline     AccountPipeline
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(pipeline AccountPipeline, outputWriter io.Writer, logger *zap.Logger) (*Orchestrator, error) {
	if pipeline == nil || outputWriter == nil {
		return nil, ErrOrchestratorDependenciesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{pipeline: pipeline, outputWriter: outputWriter, logger: logger}, nil
}

// Run processes every configured account and returns the aggregated summary.
func (orchestrator *Orchestrator) Run(executionContext context.Context, runConfigs []RunConfig, baseDirectory string) Summary {
	summary := Summary{Results: make([]AccountResult, 0, len(runConfigs))}

	for configIndex, runConfig := range runConfigs {
		fmt.Fprintf(orchestrator.outputWriter, progressMessageTemplateConstant, configIndex+1, len(runConfigs), runConfig.Account)
		orchestrator.logger.Info(
			accountStartedLogMessageConstant,
			zap.String(logFieldAccountConstant, runConfig.Account),
			zap.Int(logFieldAccountIndexConstant, configIndex+1),
			zap.Int(logFieldAccountTotalConstant, len(runConfigs)),
			zap.Int(logFieldLimitConstant, runConfig.Limit),
		)

		result := orchestrator.processAccount(executionContext, runConfig, baseDirectory)
		if result.Failure != nil {
			summary.FailedCount++
			fmt.Fprintf(orchestrator.outputWriter, accountFailureMessageTemplateConstant, runConfig.Account, result.Failure)
			orchestrator.logger.Error(
				accountFailedLogMessageConstant,
				zap.String(logFieldAccountConstant, runConfig.Account),
				zap.Error(result.Failure),
			)
		} else {
			orchestrator.logger.Info(
				accountCompletedLogMessageConstant,
				zap.String(logFieldAccountConstant, runConfig.Account),
			)
		}
		summary.Results = append(summary.Results, result)
	}

	orchestrator.printSummary(summary)
	return summary
}

func (orchestrator *Orchestrator) processAccount(executionContext context.Context, runConfig RunConfig, baseDirectory string) AccountResult {
	accountDirectory := filepath.Join(baseDirectory, runConfig.Account)
	options := inventory.PipelineOptions{
		Username:        runConfig.Account,
		CollectionLimit: runConfig.Limit,
		OwnedCSVPath:    filepath.Join(accountDirectory, ownedCSVFileNameConstant),
		StarredCSVPath:  filepath.Join(accountDirectory, starredCSVFileNameConstant),
		ReportPath:      filepath.Join(accountDirectory, reportFileNameConstant),
	}

	pipelineSummary, runError := orchestrator.pipeline.Run(executionContext, options)
	if runError != nil {
		return AccountResult{Account: runConfig.Account, Failure: runError}
	}
	return AccountResult{
		Account:      runConfig.Account,
		OwnedCount:   pipelineSummary.OwnedCount,
		StarredCount: pipelineSummary.StarredCount,
	}
}

func (orchestrator *Orchestrator) printSummary(summary Summary) {
	fmt.Fprint(orchestrator.outputWriter, summaryHeadingConstant)
	fmt.Fprintf(orchestrator.outputWriter, summarySuccessTemplateConstant, len(summary.Results)-summary.FailedCount)
	fmt.Fprintf(orchestrator.outputWriter, summaryFailureTemplateConstant, summary.FailedCount)
	fmt.Fprintf(orchestrator.outputWriter, summaryTotalTemplateConstant, len(summary.Results))
}
