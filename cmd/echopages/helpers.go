package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"echopages/internal/fragment"
)

// readDraftContent takes the fragment body from a file argument or, when no
// argument is given, from stdin.
func readDraftContent(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read fragment file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read fragment from stdin: %w", err)
	}
	return string(data), nil
}

func truncate(value string, limit int) string {
	runes := []rune(strings.ReplaceAll(value, "\n", " "))
	if len(runes) <= limit {
		return string(runes)
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func fragmentRows(fragments []fragment.Fragment, bodyWidth int) [][]string {
	rows := make([][]string, 0, len(fragments))
	for _, f := range fragments {
		rows = append(rows, []string{
			f.ID,
			truncate(f.Title, 32),
			truncate(f.Content, bodyWidth),
			f.Author,
			string(f.Genre),
			fmt.Sprintf("%d", f.Score),
			formatTimestamp(f.Timestamp),
		})
	}
	return rows
}

var fragmentHeaders = []string{"ID", "TITLE", "FRAGMENT", "AUTHOR", "GENRE", "SCORE", "PUBLISHED"}

var fragmentAligns = []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
