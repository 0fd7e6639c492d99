package sync

import (
	"strings"

	"github.com/propside/syncd/internal/snapshot"
)

const (
	markerLocal     = "<<<<<<< proposal"
	markerSeparator = "======="
	markerCloud     = ">>>>>>> cloud"
)

// MergePreview combines the local and cloud snapshots field by field.
// Fields present on only one side carry over; differing string fields are
// joined with conflict markers so a reviewer can settle them before
// resolving with a merged snapshot. Differing non-string fields take the
// local value.
func MergePreview(local, cloud snapshot.Value) snapshot.Value {
	merged := local
	for _, f := range cloud.Fields() {
		localVal, ok := snapshot.Get(merged, f.Key)
		if !ok {
			merged, _ = snapshot.Set(merged, f.Key, f.Value)
			continue
		}
		if snapshot.Equal(localVal, f.Value) {
			continue
		}
		if localVal.Kind() == snapshot.KindString && f.Value.Kind() == snapshot.KindString {
			merged, _ = snapshot.Set(merged, f.Key, snapshot.String(mergeText(localVal.StringVal(), f.Value.StringVal())))
		}
	}
	return merged
}

// mergeText keeps lines both sides agree on and wraps divergent runs in
// conflict markers.
func mergeText(local, cloud string) string {
	if local == cloud {
		return local
	}
	localLines := strings.Split(local, "\n")
	cloudLines := strings.Split(cloud, "\n")

	common := commonLines(localLines, cloudLines)
	var out []string
	li, ci := 0, 0
	for _, line := range common {
		var pendingLocal, pendingCloud []string
		for li < len(localLines) && localLines[li] != line {
			pendingLocal = append(pendingLocal, localLines[li])
			li++
		}
		for ci < len(cloudLines) && cloudLines[ci] != line {
			pendingCloud = append(pendingCloud, cloudLines[ci])
			ci++
		}
		out = appendConflict(out, pendingLocal, pendingCloud)
		out = append(out, line)
		li++
		ci++
	}
	out = appendConflict(out, localLines[li:], cloudLines[ci:])
	return strings.Join(out, "\n")
}

func appendConflict(out, local, cloud []string) []string {
	if len(local) == 0 && len(cloud) == 0 {
		return out
	}
	out = append(out, markerLocal)
	out = append(out, local...)
	out = append(out, markerSeparator)
	out = append(out, cloud...)
	return append(out, markerCloud)
}

// commonLines returns the longest common subsequence of lines.
func commonLines(a, b []string) []string {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return out
}
