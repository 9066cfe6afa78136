package props

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfKinds(t *testing.T) {
	testCases := []struct {
		name string
		in   interface{}
		kind Kind
		text string
	}{
		{"nil", nil, KindNull, ""},
		{"string", "hi", KindString, "hi"},
		{"int", 42, KindNumber, "42"},
		{"float", 1.5, KindNumber, "1.5"},
		{"bool", true, KindBool, "true"},
		{"slice", []string{"a"}, KindRef, "[a]"},
		{"parent ref", ParentRef{Name: "x"}, KindRef, "ref:x"},
		{"func", func() {}, KindRef, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Of(tc.in)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.text, v.Text())
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Null.Truthy())
	assert.False(t, String("").Truthy())
	assert.True(t, String("0").Truthy())
	assert.False(t, Number(0).Truthy())
	assert.False(t, Number(math.NaN()).Truthy())
	assert.True(t, Number(-1).Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.True(t, Ref(map[string]bool{}).Truthy())
	var nilMap map[string]bool
	assert.False(t, Of(nilMap).Truthy())
}

func TestAttrText(t *testing.T) {
	s, ok := Bool(true).AttrText()
	assert.True(t, ok)
	assert.Equal(t, "", s)

	_, ok = Bool(false).AttrText()
	assert.False(t, ok)

	_, ok = Ref(func() {}).AttrText()
	assert.False(t, ok)

	s, ok = Number(3).AttrText()
	assert.True(t, ok)
	assert.Equal(t, "3", s)
}

func TestBagOrderAndDelete(t *testing.T) {
	b := NewBag(
		Entry{Name: "b", Value: String("1")},
		Entry{Name: "a", Value: String("2")},
		Entry{Name: "c", Value: String("3")},
	)
	b.Set("b", String("updated"))
	b.Delete("a")

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Name)
	assert.Equal(t, "updated", entries[0].Value.Text())
	assert.Equal(t, "c", entries[1].Name)

	v, ok := b.Lookup("C")
	assert.True(t, ok)
	assert.Equal(t, "3", v.Text())

	clone := b.Clone()
	clone.Set("d", Bool(true))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 3, clone.Len())
}

func TestFromMapIsSorted(t *testing.T) {
	b := FromMap(map[string]interface{}{"z": 1, "a": "x", "m": true})

	var names []string
	for _, e := range b.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "m", "z"}, names)
}

func TestSchemaSplit(t *testing.T) {
	schema := Schema{
		{Name: "userName", Reflect: true},
		{Name: "secret", Private: true},
		{Name: "count"},
		{Name: "variant", Reflect: true, Default: String("primary")},
	}

	in := NewBag(
		Entry{Name: "id", Value: String("main")},
		Entry{Name: "user-name", Value: String("ada")},
		Entry{Name: "secret", Value: String("s3")},
		Entry{Name: "count", Value: Number(2)},
	)

	p := schema.Split(in)

	assert.Equal(t, []Entry{{Name: "id", Value: String("main")}}, p.Attributes.Entries())

	userName, ok := p.Public.Get("user-name")
	require.True(t, ok)
	assert.Equal(t, "ada", userName.Text())
	variant, ok := p.Public.Get("variant")
	require.True(t, ok)
	assert.Equal(t, "primary", variant.Text())
	_, exposed := p.Public.Get("secret")
	assert.False(t, exposed)
	_, exposed = p.Public.Get("count")
	assert.False(t, exposed)

	for _, name := range []string{"userName", "secret", "count", "variant"} {
		_, ok := p.Properties.Get(name)
		assert.True(t, ok, name)
	}
}

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "user-name", KebabCase("userName"))
	assert.Equal(t, "title", KebabCase("title"))
	assert.Equal(t, "a-b-c", KebabCase("aBC"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", FormatNumber(10))
	assert.Equal(t, "0.25", FormatNumber(0.25))
	assert.Equal(t, "-3", FormatNumber(-3))
}
