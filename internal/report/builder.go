package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultOwnedTableLimitConstant      = 30
	defaultStarredTableLimitConstant    = 25
	ownedLanguageLimitConstant          = 5
	starredLanguageLimitConstant        = 8
	ownedDescriptionLimitConstant       = 50
	starredDescriptionLimitConstant     = 60
	unknownLanguageLabelConstant        = "Unknown"
	generationTimestampLayoutConstant   = "2006-01-02 at 15:04 UTC"
	columnNameConstant                  = "name"
	columnURLConstant                   = "url"
	columnOwnerConstant                 = "owner"
	columnDescriptionConstant           = "description"
	columnVisibilityConstant            = "visibility"
	columnIsForkConstant                = "is_fork"
	columnLastUpdateDateConstant        = "last_update_date"
	columnNumberOfBranchesConstant      = "number_of_branches"
	columnPrimaryLanguageConstant       = "primary_language"
	columnSizeKBConstant                = "size_kb"
	columnStarsConstant                 = "stars"
	columnForksConstant                 = "forks"
	columnArchivedConstant              = "archived"
	booleanTrueValueConstant            = "true"
	booleanFalseValueConstant           = "false"
	visibilityPublicValueConstant       = "public"
	visibilityPrivateValueConstant      = "private"
	branchCountUnknownSentinelConstant  = "unknown"
	archivedMarkerConstant              = " 🗄️"
	forkVisibilitySuffixConstant        = " (fork)"
	noOwnedDataMessageConstant          = "No owned repository data found.\n\n"
	noStarredDataMessageConstant        = "No starred repository data found.\n\n"
	ownedTableHeaderConstant            = "| Name | Description | Visibility | Language | Size (MB) | Branches | Updated |\n|------|-------------|------------|----------|-----------|----------|----------|\n"
	starredTableHeaderConstant          = "| Repository | Owner | Description | Language | ⭐ Stars | 🍴 Forks | Updated |\n|------------|-------|-------------|----------|----------|----------|----------|\n"
	sectionSeparatorConstant            = "\n---\n\n"
	documentFooterConstant              = "\n---\n*Generated using GitHub CLI and Go*\n"
)

// Clock supplies the report generation timestamp.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// BuilderOptions tune table sizes and the time source. Zero values select the defaults.
type BuilderOptions struct {
	OwnedTableLimit   int
	StarredTableLimit int
	Clock             Clock
}

// BuildInputs carries the datasets a report is rendered from. Either dataset
// may be nil, in which case its section is omitted.
type BuildInputs struct {
	Account      string
	OwnedRows    []Row
	StarredRows  []Row
	LimitApplied int
}

// Builder renders the markdown inventory report. It performs no I/O.
type Builder struct {
	ownedTableLimit   int
	starredTableLimit int
	clock             Clock
}

// NewBuilder constructs a Builder from options.
func NewBuilder(options BuilderOptions) *Builder {
	if options.OwnedTableLimit <= 0 {
		options.OwnedTableLimit = defaultOwnedTableLimitConstant
	}
	if options.StarredTableLimit <= 0 {
		options.StarredTableLimit = defaultStarredTableLimitConstant
	}
	if options.Clock == nil {
		options.Clock = SystemClock{}
	}
	return &Builder{
		ownedTableLimit:   options.OwnedTableLimit,
		starredTableLimit: options.StarredTableLimit,
		clock:             options.Clock,
	}
}

// Build renders the complete markdown document.
func (builder *Builder) Build(inputs BuildInputs) string {
	var document strings.Builder
	document.WriteString(builder.buildSummarySection(inputs.Account))
	if inputs.OwnedRows != nil {
		document.WriteString(builder.buildOwnedSection(inputs.OwnedRows, inputs.LimitApplied))
	}
	if inputs.StarredRows != nil {
		document.WriteString(builder.buildStarredSection(inputs.StarredRows, inputs.LimitApplied))
	}
	document.WriteString(documentFooterConstant)
	return document.String()
}

func (builder *Builder) buildSummarySection(account string) string {
	var section strings.Builder
	section.WriteString("# GitHub Repository Inventory Report\n\n")
	section.WriteString(fmt.Sprintf("**Generated:** %s  \n", builder.clock.Now().UTC().Format(generationTimestampLayoutConstant)))
	section.WriteString(fmt.Sprintf("**Account:** @%s  \n", account))
	section.WriteString("**Tool:** [GitHub Inventory](https://github.com/hsb3/github_inventory) via GitHub CLI\n\n")

	section.WriteString("## Overview\n\n")
	section.WriteString("This automated report provides a comprehensive analysis of GitHub repositories and starred projects. ")
	section.WriteString("Data is collected using the GitHub CLI and includes repository metadata, activity metrics, and language statistics.\n\n")

	section.WriteString("## Methodology & Notes\n\n")
	section.WriteString("- **Data Source:** GitHub REST API via GitHub CLI\n")
	section.WriteString("- **Repository Sizes:** Displayed in MB (converted from KB)\n")
	section.WriteString("- **Sorting:** Owned repositories by last update date, starred by star count\n")
	section.WriteString("- **Indicators:** 🗄️ = archived, (fork) = forked repository\n")
	section.WriteString("- **Limitations:** Tables show most relevant entries; full data available in CSV exports\n\n")
	section.WriteString("---\n\n")
	return section.String()
}

func (builder *Builder) buildOwnedSection(rows []Row, limitApplied int) string {
	if len(rows) == 0 {
		return noOwnedDataMessageConstant
	}

	sortedRows := append([]Row{}, rows...)
	sort.SliceStable(sortedRows, func(firstIndex int, secondIndex int) bool {
		return sortedRows[firstIndex][columnLastUpdateDateConstant] > sortedRows[secondIndex][columnLastUpdateDateConstant]
	})

	var section strings.Builder
	section.WriteString("## Owned Repositories\n\n")
	section.WriteString(fmt.Sprintf("**Total:** %d repositories\n\n", len(rows)))

	publicCount := countMatching(rows, columnVisibilityConstant, visibilityPublicValueConstant)
	privateCount := countMatching(rows, columnVisibilityConstant, visibilityPrivateValueConstant)
	forkCount := countMatching(rows, columnIsForkConstant, booleanTrueValueConstant)
	originalCount := countMatching(rows, columnIsForkConstant, booleanFalseValueConstant)
	section.WriteString(fmt.Sprintf("- **Public:** %d | **Private:** %d\n", publicCount, privateCount))
	section.WriteString(fmt.Sprintf("- **Original:** %d | **Forks:** %d\n\n", originalCount, forkCount))

	section.WriteString(buildLanguageBreakdown(rows, ownedLanguageLimitConstant))

	section.WriteString(ownedTableHeaderConstant)
	displayedRows := sortedRows
	if len(displayedRows) > builder.ownedTableLimit {
		displayedRows = displayedRows[:builder.ownedTableLimit]
	}
	for _, row := range displayedRows {
		visibility := row[columnVisibilityConstant]
		if row[columnIsForkConstant] == booleanTrueValueConstant {
			visibility += forkVisibilitySuffixConstant
		}
		section.WriteString(fmt.Sprintf(
			"| [%s](%s) | %s | %s | %s | %s | %s | %s |\n",
			row[columnNameConstant],
			row[columnURLConstant],
			truncateDescription(row[columnDescriptionConstant], ownedDescriptionLimitConstant),
			visibility,
			row[columnPrimaryLanguageConstant],
			formatSizeMB(row[columnSizeKBConstant]),
			row[columnNumberOfBranchesConstant],
			row[columnLastUpdateDateConstant],
		))
	}

	if len(rows) > builder.ownedTableLimit {
		if limitApplied > 0 {
			section.WriteString(fmt.Sprintf(
				"\n*Showing %d most recently updated repositories out of %d collected (limited to %d).*\n",
				builder.ownedTableLimit, len(rows), limitApplied,
			))
		} else {
			section.WriteString(fmt.Sprintf(
				"\n*Showing %d most recently updated repositories out of %d total.*\n",
				builder.ownedTableLimit, len(rows),
			))
		}
	} else if limitApplied > 0 && len(rows) == limitApplied {
		section.WriteString(fmt.Sprintf(
			"\n*Showing all %d repositories (limited to %d).*\n",
			len(rows), limitApplied,
		))
	}

	section.WriteString(sectionSeparatorConstant)
	return section.String()
}

func (builder *Builder) buildStarredSection(rows []Row, limitApplied int) string {
	if len(rows) == 0 {
		return noStarredDataMessageConstant
	}

	sortedRows := append([]Row{}, rows...)
	sort.SliceStable(sortedRows, func(firstIndex int, secondIndex int) bool {
		return parseCount(sortedRows[firstIndex][columnStarsConstant]) > parseCount(sortedRows[secondIndex][columnStarsConstant])
	})

	var section strings.Builder
	section.WriteString("## Starred Repositories\n\n")
	section.WriteString(fmt.Sprintf("**Total:** %d starred repositories\n\n", len(rows)))

	publicCount := countMatching(rows, columnVisibilityConstant, visibilityPublicValueConstant)
	privateCount := countMatching(rows, columnVisibilityConstant, visibilityPrivateValueConstant)
	archivedCount := countMatching(rows, columnArchivedConstant, booleanTrueValueConstant)
	section.WriteString(fmt.Sprintf(
		"- **Public:** %d | **Private:** %d | **Archived:** %d\n\n",
		publicCount, privateCount, archivedCount,
	))

	section.WriteString(buildLanguageBreakdown(rows, starredLanguageLimitConstant))

	section.WriteString(starredTableHeaderConstant)
	displayedRows := sortedRows
	if len(displayedRows) > builder.starredTableLimit {
		displayedRows = displayedRows[:builder.starredTableLimit]
	}
	for _, row := range displayedRows {
		name := fmt.Sprintf("[%s](%s)", row[columnNameConstant], row[columnURLConstant])
		if row[columnArchivedConstant] == booleanTrueValueConstant {
			name += archivedMarkerConstant
		}
		section.WriteString(fmt.Sprintf(
			"| %s | %s | %s | %s | %s | %s | %s |\n",
			name,
			row[columnOwnerConstant],
			truncateDescription(row[columnDescriptionConstant], starredDescriptionLimitConstant),
			row[columnPrimaryLanguageConstant],
			formatNumber(row[columnStarsConstant]),
			formatNumber(row[columnForksConstant]),
			row[columnLastUpdateDateConstant],
		))
	}

	if len(rows) > builder.starredTableLimit {
		if limitApplied > 0 {
			section.WriteString(fmt.Sprintf(
				"\n*Showing %d most starred repositories out of %d collected (limited to %d).*\n",
				builder.starredTableLimit, len(rows), limitApplied,
			))
		} else {
			section.WriteString(fmt.Sprintf(
				"\n*Showing %d most starred repositories out of %d total.*\n",
				builder.starredTableLimit, len(rows),
			))
		}
	} else if limitApplied > 0 && len(rows) == limitApplied {
		section.WriteString(fmt.Sprintf(
			"\n*Showing all %d starred repositories (limited to %d).*\n",
			len(rows), limitApplied,
		))
	}

	section.WriteString(sectionSeparatorConstant)
	return section.String()
}

type languageFrequency struct {
	language string
	count    int
}

// buildLanguageBreakdown tallies primary languages, bucketing rows without one
// under "Unknown". Equal counts keep first-seen order.
func buildLanguageBreakdown(rows []Row, limit int) string {
	frequencies := make([]languageFrequency, 0)
	frequencyIndexByLanguage := make(map[string]int)
	for _, row := range rows {
		language := row[columnPrimaryLanguageConstant]
		if len(language) == 0 {
			language = unknownLanguageLabelConstant
		}
		frequencyIndex, seen := frequencyIndexByLanguage[language]
		if !seen {
			frequencyIndexByLanguage[language] = len(frequencies)
			frequencies = append(frequencies, languageFrequency{language: language})
			frequencyIndex = len(frequencies) - 1
		}
		frequencies[frequencyIndex].count++
	}
	if len(frequencies) == 0 {
		return ""
	}

	sort.SliceStable(frequencies, func(firstIndex int, secondIndex int) bool {
		return frequencies[firstIndex].count > frequencies[secondIndex].count
	})
	if len(frequencies) > limit {
		frequencies = frequencies[:limit]
	}

	entries := make([]string, 0, len(frequencies))
	for _, frequency := range frequencies {
		entries = append(entries, fmt.Sprintf("%s: %d", frequency.language, frequency.count))
	}
	return "**Top Languages:** " + strings.Join(entries, " | ") + "\n\n"
}

func countMatching(rows []Row, column string, value string) int {
	matchCount := 0
	for _, row := range rows {
		if row[column] == value {
			matchCount++
		}
	}
	return matchCount
}

func parseCount(value string) int {
	parsedValue, parseError := strconv.Atoi(value)
	if parseError != nil {
		return 0
	}
	return parsedValue
}

// formatNumber groups digits with commas. Empty values and the branch-count
// sentinel pass through unchanged.
func formatNumber(value string) string {
	if len(value) == 0 || value == branchCountUnknownSentinelConstant {
		return value
	}
	parsedValue, parseError := strconv.Atoi(value)
	if parseError != nil {
		return value
	}

	digits := strconv.Itoa(parsedValue)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var grouped strings.Builder
	leadingLength := len(digits) % 3
	if leadingLength > 0 {
		grouped.WriteString(digits[:leadingLength])
	}
	for digitIndex := leadingLength; digitIndex < len(digits); digitIndex += 3 {
		if grouped.Len() > 0 {
			grouped.WriteString(",")
		}
		grouped.WriteString(digits[digitIndex : digitIndex+3])
	}
	if negative {
		return "-" + grouped.String()
	}
	return grouped.String()
}

// formatSizeMB converts a kilobyte figure to megabytes with one decimal place.
// Values below the displayable threshold render as "<0.1".
func formatSizeMB(value string) string {
	if len(value) == 0 || value == branchCountUnknownSentinelConstant {
		return value
	}
	kilobytes, parseError := strconv.Atoi(value)
	if parseError != nil {
		return value
	}
	megabytes := float64(kilobytes) / 1024.0
	if megabytes < 0.1 {
		return "<0.1"
	}
	return fmt.Sprintf("%.1f", megabytes)
}

func truncateDescription(description string, maximumLength int) string {
	descriptionRunes := []rune(description)
	if len(descriptionRunes) <= maximumLength {
		return description
	}
	return string(descriptionRunes[:maximumLength-3]) + "..."
}
