package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hsb3/github_inventory/internal/execshell"
)

const (
	repoSubcommandConstant                  = "repo"
	listSubcommandConstant                  = "list"
	apiSubcommandConstant                   = "api"
	jsonFlagConstant                        = "--json"
	limitFlagConstant                       = "--limit"
	paginateFlagConstant                    = "--paginate"
	usernameFieldNameConstant               = "username"
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	repositoryListJSONFieldsConstant        = "name,description,url,isPrivate,isFork,createdAt,updatedAt,defaultBranchRef,primaryLanguage,diskUsage"
	repositoryListDefaultLimitConstant      = 1000
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s (payload prefix: %q)"
	invalidInputErrorTemplateConstant       = "%s: %s"
	starredUserEndpointTemplateConstant     = "users/%s/starred"
	starredAuthenticatedEndpointConstant    = "user/starred"
	branchesEndpointTemplateConstant        = "repos/%s/%s/branches"
	payloadPrefixLengthConstant             = 500
	listRepositoriesOperationNameConstant   = OperationName("ListOwnedRepositories")
	listStarredOperationNameConstant        = OperationName("ListStarredRepositories")
	countBranchesOperationNameConstant      = OperationName("CountBranches")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// OwnedRepositoryPayload contains the flattened fields returned by gh repo list.
type OwnedRepositoryPayload struct {
	Name            string
	Description     string
	URL             string
	IsPrivate       bool
	IsFork          bool
	CreatedAt       string
	UpdatedAt       string
	DefaultBranch   string
	PrimaryLanguage string
	DiskUsageKB     int
}

// StarredRepositoryPayload contains the flattened fields returned by the starred listing endpoint.
type StarredRepositoryPayload struct {
	Name            string
	FullName        string
	OwnerLogin      string
	Description     string
	URL             string
	IsPrivate       bool
	IsFork          bool
	CreatedAt       string
	UpdatedAt       string
	PushedAt        string
	DefaultBranch   string
	PrimaryLanguage string
	SizeKB          int
	StarCount       int
	ForkCount       int
	WatcherCount    int
	OpenIssueCount  int
	License         string
	Topics          []string
	Homepage        string
	Archived        bool
	Disabled        bool
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures and retains a prefix of the raw payload.
type ResponseDecodingError struct {
	Operation     OperationName
	Cause         error
	PayloadPrefix string
}

// Error describes the decoding failure including the retained payload prefix.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause, decodingError.PayloadPrefix)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

type ownedRepositoryResponse struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	URL              string `json:"url"`
	IsPrivate        bool   `json:"isPrivate"`
	IsFork           bool   `json:"isFork"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	DefaultBranchRef *struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	DiskUsage int `json:"diskUsage"`
}

// ListOwnedRepositories enumerates a user's repositories using gh repo list.
// The limit is forwarded to the GitHub CLI so truncation happens at the source.
func (client *Client) ListOwnedRepositories(executionContext context.Context, username string, limit int) ([]OwnedRepositoryPayload, error) {
	usernameIdentifier := strings.TrimSpace(username)
	if len(usernameIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: usernameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	requestedLimit := limit
	if requestedLimit <= 0 {
		requestedLimit = repositoryListDefaultLimitConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			listSubcommandConstant,
			usernameIdentifier,
			limitFlagConstant,
			strconv.Itoa(requestedLimit),
			jsonFlagConstant,
			repositoryListJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: executionError}
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return nil, nil
	}

	var response []ownedRepositoryResponse
	decodingError := json.Unmarshal([]byte(trimmedOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{
			Operation:     listRepositoriesOperationNameConstant,
			Cause:         decodingError,
			PayloadPrefix: payloadPrefix(trimmedOutput),
		}
	}

	repositories := make([]OwnedRepositoryPayload, 0, len(response))
	for _, repositoryEntry := range response {
		payload := OwnedRepositoryPayload{
			Name:        repositoryEntry.Name,
			Description: repositoryEntry.Description,
			URL:         repositoryEntry.URL,
			IsPrivate:   repositoryEntry.IsPrivate,
			IsFork:      repositoryEntry.IsFork,
			CreatedAt:   repositoryEntry.CreatedAt,
			UpdatedAt:   repositoryEntry.UpdatedAt,
			DiskUsageKB: repositoryEntry.DiskUsage,
		}
		if repositoryEntry.DefaultBranchRef != nil {
			payload.DefaultBranch = repositoryEntry.DefaultBranchRef.Name
		}
		if repositoryEntry.PrimaryLanguage != nil {
			payload.PrimaryLanguage = repositoryEntry.PrimaryLanguage.Name
		}
		repositories = append(repositories, payload)
	}

	return repositories, nil
}

type starredRepositoryResponse struct {
	Name  string `json:"name"`
	Full  string `json:"full_name"`
	Owner *struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description   string `json:"description"`
	HTMLURL       string `json:"html_url"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	PushedAt      string `json:"pushed_at"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language"`
	Size          int    `json:"size"`
	Stargazers    int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	Watchers      int    `json:"watchers_count"`
	OpenIssues    int    `json:"open_issues_count"`
	License       *struct {
		Name string `json:"name"`
	} `json:"license"`
	Topics   []string `json:"topics"`
	Homepage string   `json:"homepage"`
	Archived bool     `json:"archived"`
	Disabled bool     `json:"disabled"`
}

// ListStarredRepositories enumerates starred repositories using gh api with pagination.
// An empty username targets the authenticated user. The endpoint offers no result
// cap, so every page is always fetched; callers truncate afterwards.
func (client *Client) ListStarredRepositories(executionContext context.Context, username string) ([]StarredRepositoryPayload, error) {
	endpoint := starredAuthenticatedEndpointConstant
	usernameIdentifier := strings.TrimSpace(username)
	if len(usernameIdentifier) > 0 {
		endpoint = fmt.Sprintf(starredUserEndpointTemplateConstant, usernameIdentifier)
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			endpoint,
			paginateFlagConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listStarredOperationNameConstant, Cause: executionError}
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return nil, nil
	}

	// gh api --paginate concatenates one JSON array per page, so the payload is
	// decoded as a stream of arrays rather than a single document.
	var response []starredRepositoryResponse
	payloadDecoder := json.NewDecoder(strings.NewReader(trimmedOutput))
	for {
		var pageEntries []starredRepositoryResponse
		decodingError := payloadDecoder.Decode(&pageEntries)
		if errors.Is(decodingError, io.EOF) {
			break
		}
		if decodingError != nil {
			return nil, ResponseDecodingError{
				Operation:     listStarredOperationNameConstant,
				Cause:         decodingError,
				PayloadPrefix: payloadPrefix(trimmedOutput),
			}
		}
		response = append(response, pageEntries...)
	}

	repositories := make([]StarredRepositoryPayload, 0, len(response))
	for _, repositoryEntry := range response {
		payload := StarredRepositoryPayload{
			Name:            repositoryEntry.Name,
			FullName:        repositoryEntry.Full,
			Description:     repositoryEntry.Description,
			URL:             repositoryEntry.HTMLURL,
			IsPrivate:       repositoryEntry.Private,
			IsFork:          repositoryEntry.Fork,
			CreatedAt:       repositoryEntry.CreatedAt,
			UpdatedAt:       repositoryEntry.UpdatedAt,
			PushedAt:        repositoryEntry.PushedAt,
			DefaultBranch:   repositoryEntry.DefaultBranch,
			PrimaryLanguage: repositoryEntry.Language,
			SizeKB:          repositoryEntry.Size,
			StarCount:       repositoryEntry.Stargazers,
			ForkCount:       repositoryEntry.Forks,
			WatcherCount:    repositoryEntry.Watchers,
			OpenIssueCount:  repositoryEntry.OpenIssues,
			Topics:          repositoryEntry.Topics,
			Homepage:        repositoryEntry.Homepage,
			Archived:        repositoryEntry.Archived,
			Disabled:        repositoryEntry.Disabled,
		}
		if repositoryEntry.Owner != nil {
			payload.OwnerLogin = repositoryEntry.Owner.Login
		}
		if repositoryEntry.License != nil {
			payload.License = repositoryEntry.License.Name
		}
		repositories = append(repositories, payload)
	}

	return repositories, nil
}

// CountBranches returns the number of branches for a repository using gh api.
func (client *Client) CountBranches(executionContext context.Context, owner string, repository string) (int, error) {
	ownerIdentifier := strings.TrimSpace(owner)
	if len(ownerIdentifier) == 0 {
		return 0, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return 0, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(branchesEndpointTemplateConstant, ownerIdentifier, repositoryIdentifier),
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return 0, OperationError{Operation: countBranchesOperationNameConstant, Cause: executionError}
	}

	var response []json.RawMessage
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return 0, ResponseDecodingError{
			Operation:     countBranchesOperationNameConstant,
			Cause:         decodingError,
			PayloadPrefix: payloadPrefix(executionResult.StandardOutput),
		}
	}

	return len(response), nil
}

func payloadPrefix(payload string) string {
	if len(payload) <= payloadPrefixLengthConstant {
		return payload
	}
	return payload[:payloadPrefixLengthConstant]
}
