package normalize

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type film struct {
	FilmID int    `json:"film_id"`
	Title  string `json:"title"`
}

const items = `[{"film_id":1,"title":"Inception"},{"film_id":2,"title":"The Shawshank Redemption"},{"film_id":3,"title":"The Dark Knight"}]`

func toStrings(raw []json.RawMessage) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = string(r)
	}
	return out
}

func TestEquivalentShapesGiveSameList(t *testing.T) {
	want := toStrings(List([]byte(items)))
	require.Len(t, want, 3)

	shapes := map[string]string{
		"films":     `{"total":3,"films":` + items + `}`,
		"movies":    `{"count":3,"movies":` + items + `}`,
		"data":      `{"total_films":3,"data":` + items + `}`,
		"bare list": items,
	}
	for name, payload := range shapes {
		t.Run(name, func(t *testing.T) {
			got := List([]byte(payload), "films", "movies")
			assert.Equal(t, want, toStrings(got))
		})
	}
}

func TestPriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		keys     []string
		wantLen  int
		wantRule Rule
	}{
		{"known key beats data", `{"data":[1,2,3],"films":[1]}`, []string{"films"}, 1, RuleKnownKey},
		{"caller key order", `{"movies":[1,2],"films":[1]}`, []string{"films", "movies"}, 1, RuleKnownKey},
		{"known key that is not a list is skipped", `{"films":"none","data":[1,2]}`, []string{"films"}, 2, RuleDataKey},
		{"data beats positional", `{"items":[1],"data":[1,2]}`, []string{"films"}, 2, RuleDataKey},
		{"first list in key order", `{"total":2,"zeta":[1,2],"alpha":[1]}`, []string{"films"}, 2, RuleFirstList},
		{"bare list", `[1,2,3,4]`, []string{"films"}, 4, RuleBareList},
		{"nothing", `{"total":0,"message":"none"}`, []string{"films"}, 0, RuleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := Match([]byte(tt.payload), tt.keys...)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestObjectFieldsKeepSourceOrder(t *testing.T) {
	payload := `{"b":{"x":[1]},"total":3,"a":[1,2],"z":[9]}`

	fields, err := objectFields([]byte(payload))
	require.NoError(t, err)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	assert.Equal(t, []string{"b", "total", "a", "z"}, keys)
	assert.JSONEq(t, `{"x":[1]}`, string(fields[0].value))
	assert.JSONEq(t, `[1,2]`, string(fields[2].value))

	got, rule := Match([]byte(payload), "films")
	assert.Equal(t, RuleFirstList, rule)
	assert.Equal(t, []string{"1", "2"}, toStrings(got))
}

func TestNoMergingOfLists(t *testing.T) {
	got := List([]byte(`{"a":[1],"b":[2,3]}`))
	assert.Equal(t, []string{"1"}, toStrings(got))
}

func TestUnusablePayloadsNeverFail(t *testing.T) {
	for _, payload := range []string{``, `null`, `42`, `"films"`, `{`, `{"films": [1,`, `true`} {
		got := List([]byte(payload), "films")
		assert.NotNil(t, got, payload)
		assert.Empty(t, got, payload)
	}
}

func TestIdempotent(t *testing.T) {
	payload := []byte(`{"regions":[{"country_code":"US"},{"country_code":"GB"}]}`)
	first := toStrings(List(payload, "regions"))
	second := toStrings(List(payload, "regions"))
	assert.Equal(t, first, second)
	assert.Equal(t, `{"regions":[{"country_code":"US"},{"country_code":"GB"}]}`, string(payload))
}

func TestStrict(t *testing.T) {
	_, err := Strict([]byte(`{"films":[]}`), "films")
	require.NoError(t, err)

	_, err = Strict([]byte(items), "films")
	require.NoError(t, err)

	_, err = Strict([]byte(`{"data":[1]}`), "films")
	assert.ErrorIs(t, err, ErrUnrecognizedShape)

	_, err = Strict([]byte(`{"whatever":[1]}`), "films")
	assert.ErrorIs(t, err, ErrUnrecognizedShape)
}

func TestDecode(t *testing.T) {
	films, err := Decode[film]([]byte(`{"films":`+items+`}`), PolicyStrict, "films")
	require.NoError(t, err)
	require.Len(t, films, 3)
	assert.Equal(t, "The Shawshank Redemption", films[1].Title)

	lenient, err := Decode[film]([]byte(`{"results":[{"film_id":1,"title":"A"},"junk",{"film_id":2,"title":"B"}]}`), PolicyLenient, "films")
	require.NoError(t, err)
	assert.Len(t, lenient, 2)

	_, err = Decode[film]([]byte(`{"films":[{"film_id":"x"}]}`), PolicyStrict, "films")
	assert.Error(t, err)

	_, err = Decode[film]([]byte(`{"data":[]}`), PolicyStrict, "films")
	assert.ErrorIs(t, err, ErrUnrecognizedShape)
}
