// Package dataprocessing turns heterogeneous spreadsheet price exports
// into the canonical card-row table.
//
// The pipeline is parse (workbook -> raw string table), normalize
// (raw table -> card rows with defaults for absent columns) and
// aggregate (all files -> one table deduplicated by identity key).
// Numeric text is parsed tolerantly: locale-ambiguous separators are
// accepted and malformed tokens are dropped at the finest granularity.
package dataprocessing
