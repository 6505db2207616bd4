package generation

import (
	"strings"
)

// OpAction describes how a parsed block lands in the sandbox
type OpAction string

const (
	// ActionWrite replaces the file with the block content
	ActionWrite OpAction = "write"

	// ActionPatch applies a unified diff to the existing file
	ActionPatch OpAction = "patch"
)

// FileOp is one file-affecting block extracted from an engine completion
type FileOp struct {
	Path    string
	Action  OpAction
	Content string // full content for write, raw diff text for patch
}

// Parse extracts file operations from a completed engine response.
// The engine is prompted to emit fenced blocks whose info string names
// the target path:
//
//	```go cmd/server/main.go
//	package main
//	```
//
// and unified diffs as ```diff blocks. Fenced blocks without a usable
// path (plain prose code samples) are ignored.
func Parse(text string) []FileOp {
	var ops []FileOp

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		info, ok := fenceInfo(lines[i])
		if !ok {
			continue
		}

		var body []string
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if isFenceClose(lines[j]) {
				end = j
				break
			}
			body = append(body, lines[j])
		}
		if end == -1 {
			// unterminated fence, drop the tail
			break
		}
		i = end

		content := strings.Join(body, "\n")
		fields := strings.Fields(info)

		if len(fields) > 0 && fields[0] == "diff" {
			path := diffTargetPath(content)
			if path != "" {
				ops = append(ops, FileOp{Path: path, Action: ActionPatch, Content: content})
			}
			continue
		}

		path := blockPath(fields)
		if path == "" {
			continue
		}
		ops = append(ops, FileOp{Path: path, Action: ActionWrite, Content: content})
	}

	return ops
}

// fenceInfo reports whether the line opens a fence and returns its
// info string
func fenceInfo(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "```")), true
}

func isFenceClose(line string) bool {
	return strings.TrimSpace(line) == "```"
}

// blockPath picks the file path out of a fence info string. The last
// field wins so both "go main.go" and a bare "main.go" work; a lone
// language tag carries no path.
func blockPath(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	candidate := fields[len(fields)-1]
	if len(fields) == 1 && !looksLikePath(candidate) {
		return ""
	}
	return cleanBlockPath(candidate)
}

// looksLikePath distinguishes "main.go" from a bare language tag like
// "python"
func looksLikePath(s string) bool {
	return strings.ContainsAny(s, "/.")
}

func cleanBlockPath(path string) string {
	path = strings.TrimPrefix(path, "./")
	return strings.Trim(path, "`\"'")
}

// diffTargetPath extracts the target file from the +++ header of a
// unified diff
func diffTargetPath(diff string) string {
	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, "+++ ") {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, "+++ "))
		path = strings.TrimPrefix(path, "b/")
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	return ""
}
