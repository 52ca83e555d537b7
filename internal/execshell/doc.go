// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions github_inventory uses
// to run the GitHub CLI in a testable manner.
package execshell
