package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hsb3/github_inventory/internal/githubcli"
)

const (
	collectorListerNotConfiguredMessageConstant = "collector repository lister not configured"
	ownedCollectedLogMessageConstant            = "collected owned repositories"
	starredCollectedLogMessageConstant          = "collected starred repositories"
	starredTruncatedLogMessageConstant          = "truncated starred repositories to limit"
	logFieldUsernameConstant                    = "username"
	logFieldRepositoryCountConstant             = "repository_count"
	logFieldCollectionLimitConstant             = "collection_limit"
	displayDateLayoutConstant                   = "2006-01-02"
)

// ErrListerNotConfigured indicates the collector was constructed without a repository lister.
var ErrListerNotConfigured = errors.New(collectorListerNotConfiguredMessageConstant)

// GitHubRepositoryLister is the subset of the GitHub CLI client used during collection.
type GitHubRepositoryLister interface {
	ListOwnedRepositories(executionContext context.Context, username string, limit int) ([]githubcli.OwnedRepositoryPayload, error)
	ListStarredRepositories(executionContext context.Context, username string) ([]githubcli.StarredRepositoryPayload, error)
}

// Collector gathers repository listings and normalizes them into inventory records.
type Collector struct {
	lister GitHubRepositoryLister
	logger *zap.Logger
}

// NewCollector constructs a Collector.
func NewCollector(lister GitHubRepositoryLister, logger *zap.Logger) (*Collector, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{lister: lister, logger: logger}, nil
}

// CollectOwned lists a user's repositories. The limit is forwarded to the source
// so truncation happens server side rather than after a full fetch.
func (collector *Collector) CollectOwned(executionContext context.Context, username string, limit int) (OwnedCollection, error) {
	payloads, listError := collector.lister.ListOwnedRepositories(executionContext, username, limit)
	if listError != nil {
		return OwnedCollection{}, listError
	}

	repositories := make([]OwnedRepository, 0, len(payloads))
	for _, payload := range payloads {
		repositories = append(repositories, ownedRepositoryFromPayload(payload))
	}

	collector.logger.Info(
		ownedCollectedLogMessageConstant,
		zap.String(logFieldUsernameConstant, username),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
		zap.Int(logFieldCollectionLimitConstant, limit),
	)

	return OwnedCollection{Repositories: repositories, LimitApplied: limit}, nil
}

// CollectStarred lists starred repositories. The starred endpoint offers no
// result cap, so every page is fetched and the limit is applied afterwards.
func (collector *Collector) CollectStarred(executionContext context.Context, username string, limit int) (StarredCollection, error) {
	payloads, listError := collector.lister.ListStarredRepositories(executionContext, username)
	if listError != nil {
		return StarredCollection{}, listError
	}

	collector.logger.Info(
		starredCollectedLogMessageConstant,
		zap.String(logFieldUsernameConstant, username),
		zap.Int(logFieldRepositoryCountConstant, len(payloads)),
	)

	if limit > 0 && len(payloads) > limit {
		payloads = payloads[:limit]
		collector.logger.Info(
			starredTruncatedLogMessageConstant,
			zap.Int(logFieldCollectionLimitConstant, limit),
		)
	}

	repositories := make([]StarredRepository, 0, len(payloads))
	for _, payload := range payloads {
		repositories = append(repositories, starredRepositoryFromPayload(payload))
	}

	return StarredCollection{Repositories: repositories, LimitApplied: limit}, nil
}

func ownedRepositoryFromPayload(payload githubcli.OwnedRepositoryPayload) OwnedRepository {
	return OwnedRepository{
		Name:             payload.Name,
		Description:      payload.Description,
		URL:              payload.URL,
		Visibility:       visibilityFromPrivate(payload.IsPrivate),
		IsFork:           payload.IsFork,
		CreationDate:     formatDate(payload.CreatedAt),
		LastUpdateDate:   formatDate(payload.UpdatedAt),
		DefaultBranch:    payload.DefaultBranch,
		NumberOfBranches: BranchCountUnknown,
		PrimaryLanguage:  payload.PrimaryLanguage,
		SizeKB:           payload.DiskUsageKB,
	}
}

func starredRepositoryFromPayload(payload githubcli.StarredRepositoryPayload) StarredRepository {
	return StarredRepository{
		Name:             payload.Name,
		FullName:         payload.FullName,
		Owner:            payload.OwnerLogin,
		Description:      payload.Description,
		URL:              payload.URL,
		Visibility:       visibilityFromPrivate(payload.IsPrivate),
		IsFork:           payload.IsFork,
		CreationDate:     formatDate(payload.CreatedAt),
		LastUpdateDate:   formatDate(payload.UpdatedAt),
		LastPushDate:     formatDate(payload.PushedAt),
		DefaultBranch:    payload.DefaultBranch,
		NumberOfBranches: BranchCountUnknown,
		PrimaryLanguage:  payload.PrimaryLanguage,
		SizeKB:           payload.SizeKB,
		StarCount:        payload.StarCount,
		ForkCount:        payload.ForkCount,
		WatcherCount:     payload.WatcherCount,
		OpenIssueCount:   payload.OpenIssueCount,
		License:          payload.License,
		Topics:           append([]string{}, payload.Topics...),
		Homepage:         payload.Homepage,
		Archived:         payload.Archived,
		Disabled:         payload.Disabled,
	}
}

func visibilityFromPrivate(isPrivate bool) VisibilityType {
	if isPrivate {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// formatDate reduces an RFC3339 timestamp to its date component. Values that do
// not parse are returned unchanged.
func formatDate(timestamp string) string {
	trimmedTimestamp := strings.TrimSpace(timestamp)
	if len(trimmedTimestamp) == 0 {
		return ""
	}
	parsedTime, parseError := time.Parse(time.RFC3339, trimmedTimestamp)
	if parseError != nil {
		return trimmedTimestamp
	}
	return parsedTime.Format(displayDateLayoutConstant)
}

func formatInteger(value int) string {
	return strconv.Itoa(value)
}
