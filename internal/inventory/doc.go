// Package inventory implements the repository inventory pipeline: collecting
// owned and starred repositories through the GitHub CLI, enriching records
// with branch counts, and persisting CSV datasets plus a markdown report.
package inventory
