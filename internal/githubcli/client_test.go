package githubcli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsb3/github_inventory/internal/execshell"
	"github.com/hsb3/github_inventory/internal/githubcli"
)

const (
	testUsernameConstant       = "octocat"
	testRepositoryConstant     = "hello-world"
	testMalformedJSONConstant  = "{not-json"
	testOwnedListOutputCase    = "owned_list_decodes_payload"
	testOwnedListLimitCase     = "owned_list_forwards_limit"
	testOwnedListDefaultCase   = "owned_list_defaults_limit"
	testStarredPaginationCase  = "starred_concatenated_pages"
	testStarredEndpointCase    = "starred_authenticated_endpoint"
	testBranchCountCase        = "branch_count_from_array_length"
	testDecodeFailureCase      = "decode_failure_keeps_payload_prefix"
	testOwnedRepositoriesJSON  = `[{"name":"alpha","description":"first","url":"https://example.com/alpha","isPrivate":false,"isFork":true,"createdAt":"2023-01-02T03:04:05Z","updatedAt":"2024-05-06T07:08:09Z","defaultBranchRef":{"name":"main"},"primaryLanguage":{"name":"Go"},"diskUsage":2048},{"name":"beta","description":null,"url":"https://example.com/beta","isPrivate":true,"isFork":false,"createdAt":"2022-01-01T00:00:00Z","updatedAt":"2022-02-02T00:00:00Z","defaultBranchRef":null,"primaryLanguage":null,"diskUsage":0}]`
	testStarredRepositoriesJSON = `[{"name":"starred-one","full_name":"owner-one/starred-one","owner":{"login":"owner-one"},"description":"starred","html_url":"https://example.com/one","private":false,"fork":false,"created_at":"2021-01-01T00:00:00Z","updated_at":"2021-02-01T00:00:00Z","pushed_at":"2021-03-01T00:00:00Z","default_branch":"main","language":"Rust","size":512,"stargazers_count":9000,"forks_count":120,"watchers_count":9000,"open_issues_count":4,"license":{"name":"MIT License"},"topics":["cli","tools"],"homepage":"https://one.example.com","archived":false,"disabled":false}]
[{"name":"starred-two","full_name":"owner-two/starred-two","owner":{"login":"owner-two"},"html_url":"https://example.com/two","private":false,"fork":true,"created_at":"2020-01-01T00:00:00Z","updated_at":"2020-02-01T00:00:00Z","pushed_at":"2020-03-01T00:00:00Z","default_branch":"master","language":null,"size":42,"stargazers_count":7,"forks_count":1,"watchers_count":7,"open_issues_count":0,"license":null,"topics":[],"homepage":null,"archived":true,"disabled":false}]`
	testBranchListJSON = `[{"name":"main"},{"name":"develop"},{"name":"feature/one"}]`
)

type stubGitHubExecutor struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return executor.executionResult, executor.executionError
}

func TestClientRequiresExecutor(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(nil)
	require.Nil(testInstance, client)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
}

func TestListOwnedRepositories(testInstance *testing.T) {
	testCases := []struct {
		name              string
		requestedLimit    int
		expectedLimitFlag string
	}{
		{name: testOwnedListLimitCase, requestedLimit: 25, expectedLimitFlag: "25"},
		{name: testOwnedListDefaultCase, requestedLimit: 0, expectedLimitFlag: "1000"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testOwnedRepositoriesJSON}}
			client, creationError := githubcli.NewClient(executor)
			require.NoError(testInstance, creationError)

			repositories, listError := client.ListOwnedRepositories(context.Background(), testUsernameConstant, testCase.requestedLimit)
			require.NoError(testInstance, listError)
			require.Len(testInstance, repositories, 2)

			require.Len(testInstance, executor.recordedCommands, 1)
			recordedArguments := executor.recordedCommands[0].Arguments
			require.Equal(testInstance, []string{
				"repo", "list", testUsernameConstant,
				"--limit", testCase.expectedLimitFlag,
				"--json", "name,description,url,isPrivate,isFork,createdAt,updatedAt,defaultBranchRef,primaryLanguage,diskUsage",
			}, recordedArguments)
		})
	}
}

func TestListOwnedRepositoriesFlattensNestedFields(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testOwnedRepositoriesJSON}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	repositories, listError := client.ListOwnedRepositories(context.Background(), testUsernameConstant, 0)
	require.NoError(testInstance, listError)
	require.Len(testInstance, repositories, 2)

	require.Equal(testInstance, "alpha", repositories[0].Name)
	require.Equal(testInstance, "main", repositories[0].DefaultBranch)
	require.Equal(testInstance, "Go", repositories[0].PrimaryLanguage)
	require.Equal(testInstance, 2048, repositories[0].DiskUsageKB)
	require.True(testInstance, repositories[0].IsFork)

	require.Equal(testInstance, "beta", repositories[1].Name)
	require.Empty(testInstance, repositories[1].DefaultBranch)
	require.Empty(testInstance, repositories[1].PrimaryLanguage)
	require.True(testInstance, repositories[1].IsPrivate)
}

func TestListOwnedRepositoriesRequiresUsername(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(&stubGitHubExecutor{})
	require.NoError(testInstance, creationError)

	_, listError := client.ListOwnedRepositories(context.Background(), "  ", 0)
	require.Error(testInstance, listError)
	require.IsType(testInstance, githubcli.InvalidInputError{}, listError)
}

func TestListStarredRepositoriesDecodesConcatenatedPages(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testStarredRepositoriesJSON}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	repositories, listError := client.ListStarredRepositories(context.Background(), testUsernameConstant)
	require.NoError(testInstance, listError)
	require.Len(testInstance, repositories, 2)

	require.Equal(testInstance, "owner-one/starred-one", repositories[0].FullName)
	require.Equal(testInstance, "owner-one", repositories[0].OwnerLogin)
	require.Equal(testInstance, "MIT License", repositories[0].License)
	require.Equal(testInstance, []string{"cli", "tools"}, repositories[0].Topics)
	require.Equal(testInstance, 9000, repositories[0].StarCount)

	require.Equal(testInstance, "starred-two", repositories[1].Name)
	require.Empty(testInstance, repositories[1].License)
	require.Empty(testInstance, repositories[1].PrimaryLanguage)
	require.True(testInstance, repositories[1].Archived)

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"api", "users/octocat/starred", "--paginate"}, executor.recordedCommands[0].Arguments)
}

func TestListStarredRepositoriesAuthenticatedEndpoint(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: "[]"}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	_, listError := client.ListStarredRepositories(context.Background(), "")
	require.NoError(testInstance, listError)
	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"api", "user/starred", "--paginate"}, executor.recordedCommands[0].Arguments)
}

func TestCountBranchesReturnsArrayLength(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testBranchListJSON}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	branchCount, countError := client.CountBranches(context.Background(), testUsernameConstant, testRepositoryConstant)
	require.NoError(testInstance, countError)
	require.Equal(testInstance, 3, branchCount)

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"api", "repos/octocat/hello-world/branches"}, executor.recordedCommands[0].Arguments)
}

func TestDecodeFailureRetainsPayloadPrefix(testInstance *testing.T) {
	executor := &stubGitHubExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testMalformedJSONConstant}}
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	_, countError := client.CountBranches(context.Background(), testUsernameConstant, testRepositoryConstant)
	require.Error(testInstance, countError)

	decodingError, isDecodingError := countError.(githubcli.ResponseDecodingError)
	require.True(testInstance, isDecodingError)
	require.Equal(testInstance, testMalformedJSONConstant, decodingError.PayloadPrefix)
	require.Contains(testInstance, decodingError.Error(), testMalformedJSONConstant)
}
