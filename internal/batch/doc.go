// Package batch processes multiple GitHub accounts through the inventory
// pipeline, isolating per-account failures and reporting an aggregate summary.
package batch
