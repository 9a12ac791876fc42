// Package types defines the values passed between the installer stages:
// the InstallContext produced by path resolution, manifest entries consumed
// by the copier, the cleanup plan, safety verdicts and the per-stage reports.
//
// Every value here is computed fresh on each invocation. Nothing is persisted.
package types
