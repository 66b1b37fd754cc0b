package prompts

import "strings"

// NoChanges is returned by Diff when both contents are line-for-line equal.
const NoChanges = "No changes"

// Diff compares two contents line by line, pairing lines by index.
//
// For every index where the lines differ it emits "- old" (if the old side
// has a line there) followed by "+ new" (if the new side has one). Lines are
// not aligned, so an insertion near the top of a document shows up as every
// following line changing. That is the intended output for reviewing prompt
// edits, not an approximation of an LCS diff.
func Diff(oldContent, newContent string) string {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	n := max(len(oldLines), len(newLines))
	var out []string
	for i := 0; i < n; i++ {
		hasOld := i < len(oldLines)
		hasNew := i < len(newLines)
		if hasOld && hasNew && oldLines[i] == newLines[i] {
			continue
		}
		if hasOld {
			out = append(out, "- "+oldLines[i])
		}
		if hasNew {
			out = append(out, "+ "+newLines[i])
		}
	}

	if len(out) == 0 {
		return NoChanges
	}
	return strings.Join(out, "\n")
}

// splitLines splits on newline. Empty content has no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
