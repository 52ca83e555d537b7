package inventory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsb3/github_inventory/internal/githubcli"
	"github.com/hsb3/github_inventory/internal/inventory"
	"github.com/hsb3/github_inventory/internal/report"
)

const (
	testMissingUsernameCase      = "missing_username_rejected"
	testNegativeLimitCase        = "negative_limit_rejected"
	testConflictingSelectionCase = "conflicting_dataset_selection_rejected"
	testStarredOnlyNoUserCase    = "starred_only_without_username_allowed"
)

type recordingDocumentBuilder struct {
	recordedInputs []report.BuildInputs
}

func (builder *recordingDocumentBuilder) Build(inputs report.BuildInputs) string {
	builder.recordedInputs = append(builder.recordedInputs, inputs)
	return "# Report\n"
}

func newPipelineFixture(testInstance *testing.T, lister *stubRepositoryLister, counter *stubBranchCounter) (*inventory.PipelineService, *recordingDocumentBuilder) {
	testInstance.Helper()

	collector, collectorError := inventory.NewCollector(lister, nil)
	require.NoError(testInstance, collectorError)
	enricher, enricherError := inventory.NewBranchEnricher(counter, nil, 2)
	require.NoError(testInstance, enricherError)

	documentBuilder := &recordingDocumentBuilder{}
	service, serviceError := inventory.NewPipelineService(collector, enricher, inventory.NewWriter(nil), documentBuilder, nil)
	require.NoError(testInstance, serviceError)
	return service, documentBuilder
}

func TestPipelineOptionValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       inventory.PipelineOptions
		expectFailure bool
	}{
		{
			name:          testMissingUsernameCase,
			options:       inventory.PipelineOptions{},
			expectFailure: true,
		},
		{
			name:          testNegativeLimitCase,
			options:       inventory.PipelineOptions{Username: testAccountConstant, CollectionLimit: -1},
			expectFailure: true,
		},
		{
			name:          testConflictingSelectionCase,
			options:       inventory.PipelineOptions{Username: testAccountConstant, OwnedOnly: true, StarredOnly: true},
			expectFailure: true,
		},
		{
			name:          testStarredOnlyNoUserCase,
			options:       inventory.PipelineOptions{StarredOnly: true},
			expectFailure: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, _ := newPipelineFixture(testInstance, &stubRepositoryLister{}, &stubBranchCounter{})

			outputDirectory := testInstance.TempDir()
			testCase.options.OwnedCSVPath = filepath.Join(outputDirectory, "repos.csv")
			testCase.options.StarredCSVPath = filepath.Join(outputDirectory, "starred_repos.csv")
			testCase.options.ReportPath = filepath.Join(outputDirectory, "README.md")

			_, runError := service.Run(context.Background(), testCase.options)
			if testCase.expectFailure {
				require.Error(testInstance, runError)
				require.IsType(testInstance, inventory.ConfigurationError{}, runError)
				return
			}
			require.NoError(testInstance, runError)
		})
	}
}

func TestPipelineRunWritesAllOutputs(testInstance *testing.T) {
	lister := &stubRepositoryLister{
		ownedPayloads: []githubcli.OwnedRepositoryPayload{
			{Name: "alpha", URL: "https://example.com/alpha", PrimaryLanguage: "Go"},
		},
		starredPayloads: []githubcli.StarredRepositoryPayload{
			{Name: "starred-one", OwnerLogin: "owner-one", StarCount: 10},
		},
	}
	counter := &stubBranchCounter{countsByRepo: map[string]int{"alpha": 2, "starred-one": 4}}
	service, documentBuilder := newPipelineFixture(testInstance, lister, counter)

	outputDirectory := testInstance.TempDir()
	options := inventory.PipelineOptions{
		Username:       testAccountConstant,
		OwnedCSVPath:   filepath.Join(outputDirectory, "repos.csv"),
		StarredCSVPath: filepath.Join(outputDirectory, "starred_repos.csv"),
		ReportPath:     filepath.Join(outputDirectory, "README.md"),
	}

	summary, runError := service.Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.OwnedCount)
	require.Equal(testInstance, 1, summary.StarredCount)
	require.True(testInstance, summary.ReportWritten)

	for _, outputPath := range []string{options.OwnedCSVPath, options.StarredCSVPath, options.ReportPath} {
		_, statError := os.Stat(outputPath)
		require.NoError(testInstance, statError)
	}

	require.Len(testInstance, documentBuilder.recordedInputs, 1)
	recordedInputs := documentBuilder.recordedInputs[0]
	require.Equal(testInstance, testAccountConstant, recordedInputs.Account)
	require.Len(testInstance, recordedInputs.OwnedRows, 1)
	require.Len(testInstance, recordedInputs.StarredRows, 1)
	require.Equal(testInstance, "2", recordedInputs.OwnedRows[0]["number_of_branches"])
	require.Equal(testInstance, "4", recordedInputs.StarredRows[0]["number_of_branches"])
}

func TestPipelineRunOwnedOnlySkipsStarredDataset(testInstance *testing.T) {
	lister := &stubRepositoryLister{
		ownedPayloads: []githubcli.OwnedRepositoryPayload{{Name: "alpha"}},
	}
	service, documentBuilder := newPipelineFixture(testInstance, lister, &stubBranchCounter{})

	outputDirectory := testInstance.TempDir()
	options := inventory.PipelineOptions{
		Username:       testAccountConstant,
		OwnedCSVPath:   filepath.Join(outputDirectory, "repos.csv"),
		StarredCSVPath: filepath.Join(outputDirectory, "starred_repos.csv"),
		ReportPath:     filepath.Join(outputDirectory, "README.md"),
		OwnedOnly:      true,
	}

	summary, runError := service.Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, summary.StarredCount)

	_, statError := os.Stat(options.StarredCSVPath)
	require.True(testInstance, os.IsNotExist(statError))

	require.Len(testInstance, documentBuilder.recordedInputs, 1)
	require.Nil(testInstance, documentBuilder.recordedInputs[0].StarredRows)
	require.NotNil(testInstance, documentBuilder.recordedInputs[0].OwnedRows)
}

func TestPipelineRunProducesIdenticalOutputAcrossRuns(testInstance *testing.T) {
	lister := &stubRepositoryLister{
		ownedPayloads: []githubcli.OwnedRepositoryPayload{
			{Name: "alpha", URL: "https://example.com/alpha", PrimaryLanguage: "Go", DiskUsageKB: 128},
			{Name: "beta", IsPrivate: true},
		},
		starredPayloads: []githubcli.StarredRepositoryPayload{
			{Name: "starred-one", OwnerLogin: "owner-one", StarCount: 10, Topics: []string{"cli", "tools"}},
		},
	}
	counter := &stubBranchCounter{countsByRepo: map[string]int{"alpha": 2, "beta": 1, "starred-one": 4}}
	service, _ := newPipelineFixture(testInstance, lister, counter)

	outputDirectory := testInstance.TempDir()
	options := inventory.PipelineOptions{
		Username:       testAccountConstant,
		OwnedCSVPath:   filepath.Join(outputDirectory, "repos.csv"),
		StarredCSVPath: filepath.Join(outputDirectory, "starred_repos.csv"),
		ReportPath:     filepath.Join(outputDirectory, "README.md"),
	}

	firstSummary, firstRunError := service.Run(context.Background(), options)
	require.NoError(testInstance, firstRunError)
	firstOwnedContents, firstOwnedReadError := os.ReadFile(options.OwnedCSVPath)
	require.NoError(testInstance, firstOwnedReadError)
	firstStarredContents, firstStarredReadError := os.ReadFile(options.StarredCSVPath)
	require.NoError(testInstance, firstStarredReadError)

	secondSummary, secondRunError := service.Run(context.Background(), options)
	require.NoError(testInstance, secondRunError)
	secondOwnedContents, secondOwnedReadError := os.ReadFile(options.OwnedCSVPath)
	require.NoError(testInstance, secondOwnedReadError)
	secondStarredContents, secondStarredReadError := os.ReadFile(options.StarredCSVPath)
	require.NoError(testInstance, secondStarredReadError)

	require.Equal(testInstance, firstSummary.OwnedCount, secondSummary.OwnedCount)
	require.Equal(testInstance, firstSummary.StarredCount, secondSummary.StarredCount)
	require.Equal(testInstance, firstOwnedContents, secondOwnedContents)
	require.Equal(testInstance, firstStarredContents, secondStarredContents)
}
