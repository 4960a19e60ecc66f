package compiler

import "strings"

// fieldCount is the number of quoted fields on every source line
const fieldCount = 6

// Field positions on a source line
const (
	fieldStart = iota
	fieldEnd
	fieldCountryCode
	fieldCountryName
	fieldProvince
	fieldCity
)

// absent is the placeholder used for a missing province or city
const absent = "-"

// splitQuoted extracts the quoted substrings of line by position.
// It does not interpret escapes or unquoted separators: everything between a
// quote and the next quote is one field. ok is false unless the line holds
// exactly six complete fields.
func splitQuoted(line string) (fields [fieldCount]string, ok bool) {
	n := 0
	rest := line
	for {
		open := strings.IndexByte(rest, '"')
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			// unterminated field
			break
		}
		if n == fieldCount {
			return fields, false
		}
		fields[n] = rest[:end]
		n++
		rest = rest[end+1:]
	}
	return fields, n == fieldCount
}
