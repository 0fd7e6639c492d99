package snapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/propside/syncd/internal/snapshot"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONRoundTripPreservesFieldOrder(t *testing.T) {
	raw := `{"zeta":1,"alpha":{"b":"x","a":null},"mid":[1,"two",true]}`

	v, err := snapshot.Parse([]byte(raw))
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(data))

	// Field order survives, not just content.
	fields := v.Fields()
	require.Equal(t, "zeta", fields[0].Key)
	require.Equal(t, "alpha", fields[1].Key)
	require.Equal(t, "mid", fields[2].Key)
}

func TestValue_FieldDistinguishesMissingFromNull(t *testing.T) {
	v := snapshot.Object(snapshot.F("present", snapshot.Null()))

	got, ok := v.Field("present")
	require.True(t, ok)
	require.True(t, got.IsNull())

	_, ok = v.Field("absent")
	require.False(t, ok)
}

func TestValue_Equal(t *testing.T) {
	a := snapshot.Object(
		snapshot.F("x", snapshot.Number(1)),
		snapshot.F("y", snapshot.String("s")),
	)
	// Same content, different field order: equal.
	b := snapshot.Object(
		snapshot.F("y", snapshot.String("s")),
		snapshot.F("x", snapshot.Number(1)),
	)
	require.True(t, snapshot.Equal(a, b))

	c := snapshot.Object(snapshot.F("x", snapshot.Number(2)))
	require.False(t, snapshot.Equal(a, c))
	require.False(t, snapshot.Equal(snapshot.Null(), snapshot.Bool(false)))
}

func TestValue_WordCount(t *testing.T) {
	v := snapshot.Object(
		snapshot.F("title", snapshot.String("Technical Volume")),
		snapshot.F("body", snapshot.Object(
			snapshot.F("intro", snapshot.String("one two three")),
		)),
		snapshot.F("tags", snapshot.List(snapshot.String("alpha beta"), snapshot.Number(4))),
	)
	require.Equal(t, 7, v.WordCount())
}

func TestValue_Render(t *testing.T) {
	require.Equal(t, "", snapshot.Null().Render())
	require.Equal(t, "true", snapshot.Bool(true).Render())
	require.Equal(t, "500000", snapshot.Number(500000).Render())
	require.Equal(t, "1.5", snapshot.Number(1.5).Render())
	require.Equal(t, "hello", snapshot.String("hello").Render())
	require.Equal(t, `[1,"a"]`, snapshot.List(snapshot.Number(1), snapshot.String("a")).Render())
}
