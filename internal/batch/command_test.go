package batch_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsb3/github_inventory/internal/batch"
	"github.com/hsb3/github_inventory/internal/execshell"
)

const (
	testBatchAccountConstant       = "octocat"
	testBatchOwnedListResponseJSON = `[` +
		`{"name":"alpha","url":"https://example.com/alpha","updatedAt":"2024-02-01T00:00:00Z"},` +
		`{"name":"beta","url":"https://example.com/beta","updatedAt":"2024-01-01T00:00:00Z"}` +
		`]`
)

type scriptedGitHubExecutor struct {
	outputsByPrefix map[string]string
}

func (executor *scriptedGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	argumentLine := strings.Join(details.Arguments, " ")
	for prefix, output := range executor.outputsByPrefix {
		if strings.HasPrefix(argumentLine, prefix) {
			return execshell.ExecutionResult{StandardOutput: output}, nil
		}
	}
	return execshell.ExecutionResult{StandardOutput: "[]"}, nil
}

func TestBatchCommandHonorsConfiguredReportLimits(testInstance *testing.T) {
	baseDirectory := testInstance.TempDir()
	executor := &scriptedGitHubExecutor{
		outputsByPrefix: map[string]string{
			"repo list": testBatchOwnedListResponseJSON,
			"api repos": `[{"name":"main"}]`,
		},
	}

	builder := batch.CommandBuilder{
		Executor: executor,
		ConfigurationProvider: func() batch.CommandConfiguration {
			return batch.CommandConfiguration{
				BaseDirectory:    baseDirectory,
				Accounts:         []batch.RunConfig{{Account: testBatchAccountConstant}},
				ReportOwnedLimit: 1,
			}
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, nil))
	require.Contains(testInstance, outputBuffer.String(), "[1/1] Processing: octocat")

	reportContents, readError := os.ReadFile(filepath.Join(baseDirectory, testBatchAccountConstant, "README.md"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContents), "*Showing 1 most recently updated repositories out of 2 total.*")
	require.Contains(testInstance, string(reportContents), "[alpha](https://example.com/alpha)")
	require.NotContains(testInstance, string(reportContents), "[beta](https://example.com/beta)")
}

func TestBatchCommandRejectsPositionalArguments(testInstance *testing.T) {
	builder := batch.CommandBuilder{Executor: &scriptedGitHubExecutor{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())

	require.Error(testInstance, command.RunE(command, []string{"unexpected"}))
}
