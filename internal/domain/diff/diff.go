// Package diff computes structured differences between two document
// snapshots at field and line granularity. Diffing is pure: it never touches
// storage, and malformed input degrades to additions/deletions rather than
// failing, since diff output is advisory.
package diff

import (
	"strings"

	"github.com/propside/syncd/internal/snapshot"
)

// Block describes one contiguous change at a field path. LineStart/LineEnd
// are 1-based line positions in the newer snapshot and are only set for
// line-level modifications of multi-line text fields.
type Block struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	LineStart int    `json:"line_start,omitempty"`
	LineEnd   int    `json:"line_end,omitempty"`
}

// Result is a structured difference between two snapshots.
type Result struct {
	Additions     []Block `json:"additions"`
	Deletions     []Block `json:"deletions"`
	Modifications []Block `json:"modifications"`
	Unchanged     int     `json:"unchanged"`
}

// Summary is the compact change count stored alongside each version.
type Summary struct {
	Additions       int      `json:"additions"`
	Deletions       int      `json:"deletions"`
	Modifications   int      `json:"modifications"`
	SectionsChanged []string `json:"sections_changed,omitempty"`
}

// Compute diffs two snapshots. Paths present in exactly one snapshot become
// additions (only in b) or deletions (only in a). Paths present in both with
// differing values become modifications; equal paths only bump Unchanged.
// Output order follows snapshot field insertion order, not lexical sort.
func Compute(a, b snapshot.Value) Result {
	oldFlat := snapshot.Flatten(a)
	newFlat := snapshot.Flatten(b)

	oldByPath := make(map[string]snapshot.Value, len(oldFlat))
	for _, pv := range oldFlat {
		oldByPath[pv.Path] = pv.Value
	}
	newPaths := make(map[string]struct{}, len(newFlat))
	for _, pv := range newFlat {
		newPaths[pv.Path] = struct{}{}
	}

	var res Result
	for _, pv := range newFlat {
		oldVal, existed := oldByPath[pv.Path]
		if !existed {
			res.Additions = append(res.Additions, Block{Path: pv.Path, Content: pv.Value.Render()})
			continue
		}
		if snapshot.Equal(oldVal, pv.Value) {
			res.Unchanged++
			continue
		}
		res.Modifications = append(res.Modifications, modifyBlocks(pv.Path, oldVal, pv.Value)...)
	}
	for _, pv := range oldFlat {
		if _, stillThere := newPaths[pv.Path]; !stillThere {
			res.Deletions = append(res.Deletions, Block{Path: pv.Path, Content: pv.Value.Render()})
		}
	}
	return res
}

// Summarize condenses a diff into counts plus the top-level sections whose
// content changed between the two snapshots.
func Summarize(res Result, a, b snapshot.Value) Summary {
	return Summary{
		Additions:       len(res.Additions),
		Deletions:       len(res.Deletions),
		Modifications:   len(res.Modifications),
		SectionsChanged: changedSections(a, b),
	}
}

func changedSections(a, b snapshot.Value) []string {
	var changed []string
	seen := make(map[string]struct{})
	for _, f := range b.Fields() {
		seen[f.Key] = struct{}{}
		oldVal, ok := a.Field(f.Key)
		if !ok || !snapshot.Equal(oldVal, f.Value) {
			changed = append(changed, f.Key)
		}
	}
	for _, f := range a.Fields() {
		if _, ok := seen[f.Key]; !ok {
			changed = append(changed, f.Key)
		}
	}
	return changed
}

// modifyBlocks emits modification blocks for one changed path. Multi-line
// text gets a line-level comparison confined to the path; anything else is a
// single block carrying the new value.
func modifyBlocks(path string, oldVal, newVal snapshot.Value) []Block {
	if oldVal.Kind() == snapshot.KindString && newVal.Kind() == snapshot.KindString &&
		(strings.Contains(oldVal.StringVal(), "\n") || strings.Contains(newVal.StringVal(), "\n")) {
		return lineBlocks(path, oldVal.StringVal(), newVal.StringVal())
	}
	return []Block{{Path: path, Content: newVal.Render()}}
}

type lineOp int

const (
	opKeep lineOp = iota
	opAdd
	opDelete
)

type lineEdit struct {
	op   lineOp
	line string
}

// lineBlocks runs an LCS comparison over the two texts and groups the edits
// into one block per contiguous changed run. Block content prefers the new
// side's lines; a pure deletion run carries the removed lines and pins both
// line markers to the position in the new text where the cut happened.
func lineBlocks(path, oldText, newText string) []Block {
	edits := lineEdits(strings.Split(oldText, "\n"), strings.Split(newText, "\n"))

	var blocks []Block
	newLine := 0 // 1-based position of the last emitted new-side line
	i := 0
	for i < len(edits) {
		if edits[i].op == opKeep {
			newLine++
			i++
			continue
		}
		var added, removed []string
		start := newLine + 1
		for i < len(edits) && edits[i].op != opKeep {
			switch edits[i].op {
			case opAdd:
				added = append(added, edits[i].line)
				newLine++
			case opDelete:
				removed = append(removed, edits[i].line)
			}
			i++
		}
		block := Block{Path: path}
		if len(added) > 0 {
			block.Content = strings.Join(added, "\n")
			block.LineStart = start
			block.LineEnd = newLine
		} else {
			block.Content = strings.Join(removed, "\n")
			block.LineStart = newLine
			block.LineEnd = newLine
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// lineEdits produces an ordered edit script via an LCS table walk.
func lineEdits(oldLines, newLines []string) []lineEdit {
	m, n := len(oldLines), len(newLines)
	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if oldLines[i-1] == newLines[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	var reversed []lineEdit
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && oldLines[i-1] == newLines[j-1]:
			reversed = append(reversed, lineEdit{op: opKeep, line: newLines[j-1]})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			reversed = append(reversed, lineEdit{op: opAdd, line: newLines[j-1]})
			j--
		default:
			reversed = append(reversed, lineEdit{op: opDelete, line: oldLines[i-1]})
			i--
		}
	}

	edits := make([]lineEdit, len(reversed))
	for k := range reversed {
		edits[k] = reversed[len(reversed)-1-k]
	}
	return edits
}
