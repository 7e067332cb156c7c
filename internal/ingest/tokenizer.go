package ingest

import "strings"

// SplitRows splits a raw CSV/TSV export into rows of fields. The delimiter is
// chosen once from the header line: tab wins when the header has strictly more
// tab-separated fields than comma-separated ones. Returns nil when fewer than
// two non-blank lines are present (header plus at least one data row).
func SplitRows(raw string) [][]string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	var clean []string
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		clean = append(clean, line)
	}
	if len(clean) < 2 {
		return nil
	}

	delim := byte(',')
	if strings.Count(clean[0], "\t") > strings.Count(clean[0], ",") {
		delim = '\t'
	}

	rows := make([][]string, 0, len(clean))
	for _, line := range clean {
		rows = append(rows, splitLine(line, delim))
	}
	return rows
}

// splitLine splits one line on delim, honoring double-quote toggling: quotes
// are dropped from the output and a delimiter inside quotes is literal.
func splitLine(line string, delim byte) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case c == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
