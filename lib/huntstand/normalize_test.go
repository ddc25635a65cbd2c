package huntstand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeID(t *testing.T) {
	safe := []any{
		1, int64(42), float64(1234), "123", "abcDEF123", "550e8400-e29b-41d4-a716-446655440000", " 99 ",
	}
	for _, id := range safe {
		require.True(t, SafeID(id), "expected %v to be safe", id)
	}

	unsafe := []any{
		nil, "", "   ", "../etc/passwd", "123/456", "abc?x=1", "g123", "12 34", "id;drop", float64(1.5),
		map[string]any{}, []any{"1"},
	}
	for _, id := range unsafe {
		require.False(t, SafeID(id), "expected %v to be unsafe", id)
	}
}

func TestObjectList(t *testing.T) {
	require.Empty(t, ObjectList(nil))

	bare := []any{map[string]any{"a": 1.0}, map[string]any{"b": 2.0}}
	require.Equal(t, bare, ObjectList(bare))

	envelope := map[string]any{"objects": bare, "meta": map[string]any{"total": 2.0}}
	require.Equal(t, bare, ObjectList(envelope))

	other := map[string]any{"x": "one", "y": "two"}
	values := ObjectList(other)
	require.Len(t, values, 2)
	require.ElementsMatch(t, []any{"one", "two"}, values)

	require.Empty(t, ObjectList("just a string"))
}

func TestIDString(t *testing.T) {
	require.Equal(t, "1234", IDString(float64(1234)))
	require.Equal(t, "abc-def", IDString(" abc-def "))
	require.Equal(t, "", IDString(nil))
	require.Equal(t, "7", IDString(7))
}

func TestStringField(t *testing.T) {
	m := map[string]any{
		"empty": "",
		"blank": "   ",
		"name":  "Stand A",
		"id":    float64(12),
		"flag":  true,
	}
	require.Equal(t, "Stand A", stringField(m, "missing", "empty", "blank", "name"))
	require.Equal(t, "12", stringField(m, "id"))
	require.Equal(t, "true", stringField(m, "flag"))
	require.Equal(t, "", stringField(m, "missing", "empty"))
}

func TestCapitalize(t *testing.T) {
	require.Equal(t, "Active", Capitalize("active"))
	require.Equal(t, "Invited", Capitalize("invited"))
	require.Equal(t, "", Capitalize(""))
	// rest of the string stays untouched
	require.Equal(t, "ABc", Capitalize("aBc"))
}
