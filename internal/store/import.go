package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ImportMeta describes the script being imported, for the batch log.
type ImportMeta struct {
	// SourceFile is the mdsl file the script was generated from.
	SourceFile string
	// Fingerprint is the IR fingerprint of the compiled program.
	Fingerprint string
}

// ImportResult reports what one import batch did.
type ImportResult struct {
	// BatchID is the generated UUID identifying this batch in
	// import_log.
	BatchID string
	// Statements is the number of SQL statements executed.
	Statements int
}

// ImportScript executes a generated SQL script inside a single
// transaction and records the batch. Either every statement lands or
// none do.
func (s *Store) ImportScript(ctx context.Context, script string, meta ImportMeta) (*ImportResult, error) {
	statements := SplitStatements(script)
	if len(statements) == 0 {
		return nil, fmt.Errorf("script contains no statements")
	}

	batchID := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_log (batch_id, source_file, fingerprint, statement_count) VALUES (?, ?, ?, ?)`,
		batchID, meta.SourceFile, meta.Fingerprint, len(statements))
	if err != nil {
		return nil, fmt.Errorf("record batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return &ImportResult{BatchID: batchID, Statements: len(statements)}, nil
}

// SplitStatements cuts a generated script into executable statements.
// The emitters terminate every statement with ";\n", but a decoded
// escape in source text can put a raw newline (or ";") inside an
// emitted string literal, so the scanner tracks '…' literal state
// (the emitters escape quotes as '') and only cuts outside a literal.
// Comment-only and blank chunks are dropped.
func SplitStatements(script string) []string {
	var out []string
	start := 0
	inLiteral := false
	for i := 0; i < len(script); i++ {
		switch script[i] {
		case '\'':
			inLiteral = !inLiteral
		case '\n':
			if inLiteral || i == start || script[i-1] != ';' {
				continue
			}
			if stmt := cleanStatement(script[start : i-1]); stmt != "" {
				out = append(out, stmt)
			}
			start = i + 1
		}
	}
	if stmt := cleanStatement(script[start:]); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

func cleanStatement(chunk string) string {
	chunk = strings.TrimSpace(stripComments(chunk))
	return strings.TrimSpace(strings.TrimSuffix(chunk, ";"))
}

// stripComments drops `--` comment lines, except lines that start
// inside a string literal carried over from a previous line.
func stripComments(chunk string) string {
	var kept []string
	inLiteral := false
	for _, line := range strings.Split(chunk, "\n") {
		if !inLiteral && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
		if strings.Count(line, "'")%2 == 1 {
			inLiteral = !inLiteral
		}
	}
	return strings.Join(kept, "\n")
}
