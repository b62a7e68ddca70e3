// Package content holds small text helpers shared by the tool services.
package content

const binarySampleSize = 8000

// IsBinaryContent reports whether content looks binary: a NUL byte within
// the first 8000 bytes, unless a UTF-16 or UTF-32 BOM is present.
func IsBinaryContent(content []byte) bool {
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}
	if len(content) >= 4 && content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF {
		return false
	}

	for i := range min(len(content), binarySampleSize) {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

// SplitLines splits on LF and CRLF. A trailing newline does not produce an
// empty final element; a lone CR is kept as content.
func SplitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		} else if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
