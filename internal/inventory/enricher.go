package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"
)

const (
	enricherCounterNotConfiguredMessageConstant = "enricher branch counter not configured"
	branchCountUnavailableLogMessageConstant    = "branch count unavailable"
	logFieldOwnerConstant                       = "owner"
	logFieldRepositoryConstant                  = "repository"
	defaultEnrichmentConcurrencyConstant        = 4
)

// ErrCounterNotConfigured indicates the enricher was constructed without a branch counter.
var ErrCounterNotConfigured = errors.New(enricherCounterNotConfiguredMessageConstant)

// BranchCounter is the subset of the GitHub CLI client used during enrichment.
type BranchCounter interface {
	CountBranches(executionContext context.Context, owner string, repository string) (int, error)
}

// BranchEnricher fills in branch counts through a bounded pool of concurrent
// GitHub CLI calls. Results are written by record index so output ordering is
// identical to the sequential case, and one repository's failure never aborts
// the rest: the failed record receives the BranchCountUnknown sentinel.
type BranchEnricher struct {
	counter          BranchCounter
	logger           *zap.Logger
	concurrencyLimit int
}

// NewBranchEnricher constructs a BranchEnricher. Non-positive concurrency
// limits fall back to the default bound.
func NewBranchEnricher(counter BranchCounter, logger *zap.Logger, concurrencyLimit int) (*BranchEnricher, error) {
	if counter == nil {
		return nil, ErrCounterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrencyLimit <= 0 {
		concurrencyLimit = defaultEnrichmentConcurrencyConstant
	}
	return &BranchEnricher{counter: counter, logger: logger, concurrencyLimit: concurrencyLimit}, nil
}

// EnrichOwned resolves branch counts for owned repositories belonging to the supplied owner.
func (enricher *BranchEnricher) EnrichOwned(executionContext context.Context, owner string, repositories []OwnedRepository) {
	waitGroup := sizedwaitgroup.New(enricher.concurrencyLimit)
	for repositoryIndex := range repositories {
		waitGroup.Add()
		go func(recordIndex int) {
			defer waitGroup.Done()
			repositories[recordIndex].NumberOfBranches = enricher.resolveBranchCount(executionContext, owner, repositories[recordIndex].Name)
		}(repositoryIndex)
	}
	waitGroup.Wait()
}

// EnrichStarred resolves branch counts for starred repositories using each record's owner.
func (enricher *BranchEnricher) EnrichStarred(executionContext context.Context, repositories []StarredRepository) {
	waitGroup := sizedwaitgroup.New(enricher.concurrencyLimit)
	for repositoryIndex := range repositories {
		waitGroup.Add()
		go func(recordIndex int) {
			defer waitGroup.Done()
			repositories[recordIndex].NumberOfBranches = enricher.resolveBranchCount(executionContext, repositories[recordIndex].Owner, repositories[recordIndex].Name)
		}(repositoryIndex)
	}
	waitGroup.Wait()
}

func (enricher *BranchEnricher) resolveBranchCount(executionContext context.Context, owner string, repository string) string {
	branchCount, countError := enricher.counter.CountBranches(executionContext, owner, repository)
	if countError != nil {
		enricher.logger.Warn(
			branchCountUnavailableLogMessageConstant,
			zap.String(logFieldOwnerConstant, owner),
			zap.String(logFieldRepositoryConstant, repository),
			zap.Error(countError),
		)
		return BranchCountUnknown
	}
	return strconv.Itoa(branchCount)
}
