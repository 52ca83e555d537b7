package inventory

import "strings"

const (
	visibilityPublicValueConstant  = "public"
	visibilityPrivateValueConstant = "private"
	branchCountUnknownConstant     = "unknown"
	booleanTrueValueConstant       = "true"
	booleanFalseValueConstant      = "false"
	topicsJoinSeparatorConstant    = ", "
)

// VisibilityType enumerates repository visibility values.
type VisibilityType string

// Supported visibility values.
const (
	VisibilityPublic  VisibilityType = VisibilityType(visibilityPublicValueConstant)
	VisibilityPrivate VisibilityType = VisibilityType(visibilityPrivateValueConstant)
)

// BranchCountUnknown is the sentinel recorded when branch enrichment fails for a repository.
const BranchCountUnknown = branchCountUnknownConstant

// OwnedRepository is one row of the owned-repository dataset.
type OwnedRepository struct {
	Name             string
	Description      string
	URL              string
	Visibility       VisibilityType
	IsFork           bool
	CreationDate     string
	LastUpdateDate   string
	DefaultBranch    string
	NumberOfBranches string
	PrimaryLanguage  string
	SizeKB           int
}

// StarredRepository is one row of the starred-repository dataset.
type StarredRepository struct {
	Name             string
	FullName         string
	Owner            string
	Description      string
	URL              string
	Visibility       VisibilityType
	IsFork           bool
	CreationDate     string
	LastUpdateDate   string
	LastPushDate     string
	DefaultBranch    string
	NumberOfBranches string
	PrimaryLanguage  string
	SizeKB           int
	StarCount        int
	ForkCount        int
	WatcherCount     int
	OpenIssueCount   int
	License          string
	Topics           []string
	Homepage         string
	Archived         bool
	Disabled         bool
}

// OwnedCollection carries collected owned repositories plus the limit actually applied.
type OwnedCollection struct {
	Repositories []OwnedRepository
	LimitApplied int
}

// StarredCollection carries collected starred repositories plus the limit actually applied.
type StarredCollection struct {
	Repositories []StarredRepository
	LimitApplied int
}

// OwnedCSVHeader fixes the owned CSV column order across runs.
var OwnedCSVHeader = []string{
	"name",
	"description",
	"url",
	"visibility",
	"is_fork",
	"creation_date",
	"last_update_date",
	"default_branch",
	"number_of_branches",
	"primary_language",
	"size_kb",
}

// StarredCSVHeader fixes the starred CSV column order across runs.
var StarredCSVHeader = []string{
	"name",
	"full_name",
	"owner",
	"description",
	"url",
	"visibility",
	"is_fork",
	"creation_date",
	"last_update_date",
	"last_push_date",
	"default_branch",
	"number_of_branches",
	"primary_language",
	"size_kb",
	"stars",
	"forks",
	"watchers",
	"open_issues",
	"license",
	"topics",
	"homepage",
	"archived",
	"disabled",
}

// CSVRecord returns the row formatted for CSV encoding in OwnedCSVHeader order.
func (repository OwnedRepository) CSVRecord() []string {
	return []string{
		repository.Name,
		repository.Description,
		repository.URL,
		string(repository.Visibility),
		formatBoolean(repository.IsFork),
		repository.CreationDate,
		repository.LastUpdateDate,
		repository.DefaultBranch,
		repository.NumberOfBranches,
		repository.PrimaryLanguage,
		formatInteger(repository.SizeKB),
	}
}

// CSVRecord returns the row formatted for CSV encoding in StarredCSVHeader order.
func (repository StarredRepository) CSVRecord() []string {
	return []string{
		repository.Name,
		repository.FullName,
		repository.Owner,
		repository.Description,
		repository.URL,
		string(repository.Visibility),
		formatBoolean(repository.IsFork),
		repository.CreationDate,
		repository.LastUpdateDate,
		repository.LastPushDate,
		repository.DefaultBranch,
		repository.NumberOfBranches,
		repository.PrimaryLanguage,
		formatInteger(repository.SizeKB),
		formatInteger(repository.StarCount),
		formatInteger(repository.ForkCount),
		formatInteger(repository.WatcherCount),
		formatInteger(repository.OpenIssueCount),
		repository.License,
		strings.Join(repository.Topics, topicsJoinSeparatorConstant),
		repository.Homepage,
		formatBoolean(repository.Archived),
		formatBoolean(repository.Disabled),
	}
}

func formatBoolean(value bool) string {
	if value {
		return booleanTrueValueConstant
	}
	return booleanFalseValueConstant
}
