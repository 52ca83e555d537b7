// Package report renders markdown inventory reports from collected
// repository datasets and reads previously written CSV exports.
package report
