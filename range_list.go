package edgetrust

import (
	"errors"
	"strings"
)

// ParseRangeList parses newline-delimited "address/prefixLength" entries.
//
// Lines end with "\n" or "\r\n" regardless of platform. Blank and
// whitespace-only lines are skipped. The first malformed line aborts the
// parse; a partial list is never returned.
func ParseRangeList(raw string) ([]NetworkRange, error) {
	var ranges []NetworkRange

	lineNumber := 0
	for line := range strings.SplitSeq(raw, "\n") {
		lineNumber++

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r, err := ParseRange(line)
		if err != nil {
			var parseErr *RangeParseError
			if errors.As(err, &parseErr) {
				parseErr.Line = lineNumber
			}
			return nil, err
		}

		ranges = append(ranges, r)
	}

	return ranges, nil
}
