// Package stage defines the contracts shared by the pipeline stages:
// the error taxonomy that classifies failures by blast radius
// (configuration errors are fatal to a run, I/O and parse errors are
// scoped to a batch or a row) and the Health records the status command
// reports for each stage dependency.
package stage
