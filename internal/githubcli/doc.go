// Package githubcli wraps GitHub CLI invocations behind a typed client used by
// the inventory collector and enricher.
package githubcli
