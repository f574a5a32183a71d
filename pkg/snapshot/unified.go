package snapshot

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines kept around each hunk.
const DefaultContext = 3

// Unified diffs two HTML captures into unified-diff hunks, keeping context
// unchanged lines around every change. It returns nil when nothing changed.
func Unified(origName, newName, a, b string, context int) *diff.FileDiff {
	x, y := splitHTML(a), splitHTML(b)
	m := difflib.NewMatcher(x, y)
	if !changedOps(m.GetOpCodes()) {
		return nil
	}
	if context < 0 {
		context = 0
	}

	fd := &diff.FileDiff{OrigName: origName, NewName: newName}
	for _, group := range m.GetGroupedOpCodes(context) {
		fd.Hunks = append(fd.Hunks, hunk(group, x, y))
	}
	return fd
}

func hunk(group []difflib.OpCode, x, y []string) *diff.Hunk {
	var lines []DiffLine
	for _, op := range group {
		lines = appendOp(lines, op, x, y)
	}

	var body bytes.Buffer
	for _, l := range lines {
		body.WriteByte(byte(l.Op))
		body.WriteString(l.Text)
		body.WriteByte('\n')
	}

	first, last := group[0], group[len(group)-1]
	origStart, origLines := first.I1+1, last.I2-first.I1
	newStart, newLines := first.J1+1, last.J2-first.J1
	// An empty side is addressed by the line before it.
	if origLines == 0 {
		origStart--
	}
	if newLines == 0 {
		newStart--
	}
	return &diff.Hunk{
		OrigStartLine: int32(origStart),
		OrigLines:     int32(origLines),
		NewStartLine:  int32(newStart),
		NewLines:      int32(newLines),
		Body:          body.Bytes(),
	}
}

// appendOp expands one matcher opcode into diff lines. Replacements list
// the removed lines before the added ones.
func appendOp(out []DiffLine, op difflib.OpCode, x, y []string) []DiffLine {
	if op.Tag == 'e' {
		for _, s := range x[op.I1:op.I2] {
			out = append(out, DiffLine{Equal, s})
		}
		return out
	}
	for _, s := range x[op.I1:op.I2] {
		out = append(out, DiffLine{Delete, s})
	}
	for _, s := range y[op.J1:op.J2] {
		out = append(out, DiffLine{Insert, s})
	}
	return out
}

func changedOps(ops []difflib.OpCode) bool {
	for _, op := range ops {
		if op.Tag != 'e' {
			return true
		}
	}
	return false
}
