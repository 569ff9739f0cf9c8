// Package fileutil holds small filesystem helpers shared by the settings store
// and preflight checks.
package fileutil
