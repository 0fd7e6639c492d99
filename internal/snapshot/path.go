package snapshot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPath indicates a malformed dot-separated field path.
var ErrInvalidPath = errors.New("invalid field path")

var pathSegment = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_\- ]*$`)

// ValidatePath checks that a dot-separated field path is well formed:
// non-empty, no empty segments, segments limited to word-ish characters.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(path, ".") {
		if !pathSegment.MatchString(seg) {
			return fmt.Errorf("%w: bad segment %q", ErrInvalidPath, seg)
		}
	}
	return nil
}

// Get resolves a dot-separated path against a value. The boolean result
// distinguishes "path absent" from an explicit null at the path.
func Get(v Value, path string) (Value, bool) {
	current := v
	for _, seg := range strings.Split(path, ".") {
		if current.Kind() != KindObject {
			return Value{}, false
		}
		next, ok := current.Field(seg)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// Set returns a copy of v with the value at path replaced by nv.
// Intermediate objects are created as needed; existing siblings are kept.
// An intermediate that exists but is not an object is replaced by one.
func Set(v Value, path string, nv Value) (Value, error) {
	if err := ValidatePath(path); err != nil {
		return Value{}, err
	}
	return setSegments(v, strings.Split(path, "."), nv), nil
}

func setSegments(v Value, segs []string, nv Value) Value {
	if len(segs) == 1 {
		return v.withField(segs[0], nv)
	}
	child, ok := v.Field(segs[0])
	if !ok || child.Kind() != KindObject {
		child = Object()
	}
	return v.withField(segs[0], setSegments(child, segs[1:], nv))
}

// PathValue is one flattened leaf of a snapshot.
type PathValue struct {
	Path  string
	Value Value
}

// Flatten walks a snapshot depth-first in field insertion order and returns
// its leaves as dot-path/value pairs. Scalars, lists, and empty objects are
// leaves; non-empty objects recurse.
func Flatten(v Value) []PathValue {
	var out []PathValue
	flattenInto(&out, "", v)
	return out
}

func flattenInto(out *[]PathValue, prefix string, v Value) {
	if v.Kind() == KindObject && v.Len() > 0 {
		for _, f := range v.Fields() {
			path := f.Key
			if prefix != "" {
				path = prefix + "." + f.Key
			}
			flattenInto(out, path, f.Value)
		}
		return
	}
	if prefix == "" {
		// A scalar snapshot flattens to a single root entry.
		prefix = "."
	}
	*out = append(*out, PathValue{Path: prefix, Value: v})
}
