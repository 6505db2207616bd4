package generation

import (
	"fmt"
	"strconv"
	"strings"
)

// hunk is one @@ section of a unified diff
type hunk struct {
	oldStart int
	lines    []string // with leading ' ', '-' or '+'
}

// ApplyDiff applies a unified diff to the original content. Hunks are
// applied line by line; context and deletion lines must match the
// original or the whole diff is rejected.
func ApplyDiff(original, diff string) (string, error) {
	hunks, err := parseHunks(diff)
	if err != nil {
		return "", err
	}
	if len(hunks) == 0 {
		return "", fmt.Errorf("diff contains no hunks")
	}

	src := strings.Split(original, "\n")
	var out []string
	cursor := 0 // index into src of the next unconsumed line

	for _, h := range hunks {
		// hunk start is 1-based; 0 means the file was empty
		start := h.oldStart - 1
		if start < 0 {
			start = 0
		}
		if start < cursor || start > len(src) {
			return "", fmt.Errorf("hunk at line %d overlaps or exceeds the file", h.oldStart)
		}
		out = append(out, src[cursor:start]...)
		cursor = start

		for _, line := range h.lines {
			if line == "" {
				line = " "
			}
			op, text := line[0], line[1:]
			switch op {
			case ' ':
				if cursor >= len(src) || src[cursor] != text {
					return "", fmt.Errorf("context mismatch at line %d", cursor+1)
				}
				out = append(out, text)
				cursor++
			case '-':
				if cursor >= len(src) || src[cursor] != text {
					return "", fmt.Errorf("deletion mismatch at line %d", cursor+1)
				}
				cursor++
			case '+':
				out = append(out, text)
			case '\\':
				// "\ No newline at end of file"
			default:
				return "", fmt.Errorf("unexpected diff line %q", line)
			}
		}
	}

	out = append(out, src[cursor:]...)
	return strings.Join(out, "\n"), nil
}

func parseHunks(diff string) ([]hunk, error) {
	var hunks []hunk
	var current *hunk

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "),
			strings.HasPrefix(line, "diff "), strings.HasPrefix(line, "index "):
			continue
		case strings.HasPrefix(line, "@@"):
			start, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			hunks = append(hunks, hunk{oldStart: start})
			current = &hunks[len(hunks)-1]
		default:
			if current == nil {
				continue
			}
			current.lines = append(current.lines, line)
		}
	}

	// trailing blank line from splitting the block text
	for i := range hunks {
		lines := hunks[i].lines
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		hunks[i].lines = lines
	}

	return hunks, nil
}

// parseHunkHeader extracts the old-file start line from a header like
// "@@ -12,5 +12,7 @@"
func parseHunkHeader(line string) (int, error) {
	rest := strings.TrimPrefix(line, "@@")
	idx := strings.Index(rest, "@@")
	if idx >= 0 {
		rest = rest[:idx]
	}
	for _, field := range strings.Fields(rest) {
		if !strings.HasPrefix(field, "-") {
			continue
		}
		spec := strings.TrimPrefix(field, "-")
		if comma := strings.Index(spec, ","); comma >= 0 {
			spec = spec[:comma]
		}
		start, err := strconv.Atoi(spec)
		if err != nil {
			return 0, fmt.Errorf("malformed hunk header %q", line)
		}
		return start, nil
	}
	return 0, fmt.Errorf("malformed hunk header %q", line)
}
