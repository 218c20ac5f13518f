//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging loads JSON source objects into the staging tables over the
// COPY protocol, for warehouses that cannot COPY from object storage.
package staging

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseJSONPaths reads a JSONPaths document and returns its expressions
// translated to gjson paths, in document order.
func ParseJSONPaths(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSONPaths document")
	}

	list := gjson.GetBytes(data, "jsonpaths")
	if !list.IsArray() {
		return nil, fmt.Errorf(`JSONPaths document has no "jsonpaths" array`)
	}

	var paths []string
	var parseErr error
	list.ForEach(func(_, expr gjson.Result) bool {
		if expr.Type != gjson.String {
			parseErr = fmt.Errorf("JSONPath expression %d is not a string", len(paths))
			return false
		}
		p, err := TranslatePath(expr.Str)
		if err != nil {
			parseErr = err
			return false
		}
		paths = append(paths, p)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return paths, nil
}

// TranslatePath converts a JSONPath expression in dot or bracket notation
// (e.g. $.artist, $['first name'], $.tags[0]) to a gjson path.
func TranslatePath(expr string) (string, error) {
	s := strings.TrimSpace(expr)
	if !strings.HasPrefix(s, "$") {
		return "", fmt.Errorf("JSONPath %q must start with $", expr)
	}
	s = s[1:]
	if s == "" {
		return "", fmt.Errorf("JSONPath %q selects the whole record", expr)
	}

	var parts []string
	for s != "" {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			name := s[:end]
			if name == "" {
				return "", fmt.Errorf("JSONPath %q has an empty name", expr)
			}
			parts = append(parts, gjson.Escape(name))
			s = s[end:]

		case '[':
			inner := strings.TrimLeft(s[1:], " ")
			if inner != "" && (inner[0] == '\'' || inner[0] == '"') {
				// Quoted names may contain ']' and '.'.
				closing := strings.IndexByte(inner[1:], inner[0])
				if closing < 0 {
					return "", fmt.Errorf("JSONPath %q has an unclosed quote", expr)
				}
				name := inner[1 : closing+1]
				rest := strings.TrimLeft(inner[closing+2:], " ")
				if !strings.HasPrefix(rest, "]") {
					return "", fmt.Errorf("JSONPath %q has an unclosed bracket", expr)
				}
				parts = append(parts, gjson.Escape(name))
				s = rest[1:]
				continue
			}

			end := strings.IndexByte(s, ']')
			if end < 0 {
				return "", fmt.Errorf("JSONPath %q has an unclosed bracket", expr)
			}
			inner = strings.TrimSpace(s[1:end])
			s = s[end+1:]
			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return "", fmt.Errorf("JSONPath %q has an invalid element %q", expr, inner)
			}
			parts = append(parts, strconv.Itoa(idx))

		default:
			return "", fmt.Errorf("JSONPath %q: unexpected %q", expr, s[0])
		}
	}
	return strings.Join(parts, "."), nil
}
