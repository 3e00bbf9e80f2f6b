// Package exporter flattens the finalized measurement hierarchy into
// row-per-measurement tabular output.
//
// Both encodings (delimited CSV and XLSX spreadsheet) are produced from
// the single Flatten routine, which guarantees they are always
// row-for-row identical in content and differ only in container format.
// Empty configurations still produce one marker row so the hierarchy
// stays visible in flat form.
package exporter
