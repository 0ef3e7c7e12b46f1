package vault

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp classifies a DiffLine
type DiffOp int

const (
	DiffAdded DiffOp = iota + 1
	DiffRemoved
)

// DiffLine is one changed entry between two summary lists
type DiffLine struct {
	Op   DiffOp
	Text string
}

// String renders the line with a +/- marker
func (l DiffLine) String() string {
	if l.Op == DiffAdded {
		return "+ " + l.Text
	}
	return "- " + l.Text
}

// DiffSummaries compares two summary lists line by line. Unchanged entries
// are omitted. Output follows the order of the inputs.
func DiffSummaries(committed, current []Summary) []DiffLine {
	before := renderSummaries(committed)
	after := renderSummaries(current)
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	for _, d := range diffs {
		var op DiffOp
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		case diffmatchpatch.DiffDelete:
			op = DiffRemoved
		default:
			continue
		}
		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			lines = append(lines, DiffLine{Op: op, Text: text})
		}
	}
	return lines
}

func renderSummaries(summaries []Summary) string {
	var sb strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", s.Service, s.Username, s.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}
