// Package contracts loads and indexes the per-provider schema contracts
// and field mappings that drive the silver transform.
//
// Both documents are declarative YAML sources loaded once at startup. The
// resulting Registry is immutable: stages receive it explicitly and only
// perform lookups. Any structural problem in the sources (duplicate
// providers, mappings that target undeclared fields, unknown transforms)
// is a configuration error and fatal to pipeline startup.
package contracts
