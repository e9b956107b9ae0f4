// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddIn("job_id", jobIDs)
//	wb.AddSince("created_at", since)
//	whereClause, args := wb.Build()
//	// job_id IN (?, ?) AND created_at >= ?
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []any{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
//
// Parameters:
//   - clause: SQL condition fragment (e.g., "metric_name = ?")
//   - args: Arguments to bind to placeholders in the clause
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddIn adds "column IN (?, ?, ...)". An empty values slice is skipped.
// The column name is written verbatim and must not come from user input.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// AddSince adds "column >= ?" when since is non-nil.
func (wb *WhereBuilder) AddSince(column string, since *time.Time) *WhereBuilder {
	if since != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *since)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
