package insight

import (
	"encoding/json"
	"sort"
	"testing"

	"yt-stock-insight/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) map[string]json.RawMessage {
	t.Helper()
	env := ParseEnvelope(content)
	require.Equal(t, KindParsed, env.Kind, env.Reason)
	return env.Fields
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Kind
	}{
		{"plain object", `{"direction":"LONG"}`, KindParsed},
		{"fenced object", "```json\n{\"direction\":\"LONG\"}\n```", KindParsed},
		{"object inside prose", "Sure! Here it is:\n{\"direction\": \"SHORT\"}\nHope this helps.", KindParsed},
		{"empty", "   ", KindEmpty},
		{"empty object", "{}", KindEmpty},
		{"no object", "I cannot answer that.", KindMalformed},
		{"broken object", "result: {direction: LONG", KindMalformed},
		{"array is not an object", `[1,2,3]`, KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ParseEnvelope(tt.content)
			assert.Equal(t, tt.want, env.Kind)
			if tt.want == KindParsed {
				assert.NotEmpty(t, env.Fields)
			} else {
				assert.NotEmpty(t, env.Reason)
			}
		})
	}
}

func TestNormalize_Scenario(t *testing.T) {
	got := Normalize(parse(t, `{"direction":"long","Support":[181.2,175.0,190.5]}`))

	assert.Equal(t, entity.FinancialInsight{
		Narrative:  entity.NarrativeNonDecisive,
		Direction:  entity.DirectionLong,
		Support:    []float64{190.5, 181.2, 175.0},
		Resistance: []float64{},
		BuyArea:    []entity.PriceRange{},
		SellArea:   []entity.PriceRange{},
	}, got)
}

func TestNormalize_AllFields(t *testing.T) {
	got := Normalize(parse(t, `{
		"narrative": "decisive",
		"direction": "SHORT",
		"Support": [100, "$120.5", "abc", null, 90],
		"Resistance": [300, 250, "1,000"],
		"Buy_Area": [[100, 110], [95, 90], [1, 2, 3], ["x", 2]],
		"Sell_Area": [[310, 300], [400, 420]]
	}`))

	assert.Equal(t, entity.NarrativeDecisive, got.Narrative)
	assert.Equal(t, entity.DirectionShort, got.Direction)
	assert.Equal(t, []float64{120.5, 100, 90}, got.Support)
	assert.Equal(t, []float64{250, 300, 1000}, got.Resistance)
	assert.Equal(t, []entity.PriceRange{{110, 100}, {95, 90}}, got.BuyArea)
	assert.Equal(t, []entity.PriceRange{{300, 310}, {400, 420}}, got.SellArea)
}

func TestNormalize_FieldLevelDefects(t *testing.T) {
	got := Normalize(parse(t, `{"narrative": 7, "direction": "sideways", "Support": "n/a", "buy area": {"a": 1}}`))

	assert.Equal(t, entity.NarrativeNonDecisive, got.Narrative)
	assert.Equal(t, entity.DirectionLong, got.Direction)
	assert.Empty(t, got.Support)
	assert.NotNil(t, got.Support)
	assert.Empty(t, got.BuyArea)
	assert.NotNil(t, got.SellArea)
}

func TestNormalize_KeyVariants(t *testing.T) {
	got := Normalize(parse(t, `{"NARRATIVE":"NON DECISIVE","buy_area":[[1,2]],"sell-area":[[4,3]],"support":5}`))

	assert.Equal(t, entity.NarrativeNonDecisive, got.Narrative)
	assert.Equal(t, []entity.PriceRange{{2, 1}}, got.BuyArea)
	assert.Equal(t, []entity.PriceRange{{3, 4}}, got.SellArea)
	assert.Equal(t, []float64{5}, got.Support)
}

func TestNormalize_CollidingKeysAreDeterministic(t *testing.T) {
	fields := parse(t, `{"support":[1],"Support":[9],"sell area":[[5,6]],"Sell_Area":[[7,8]]}`)
	for i := 0; i < 50; i++ {
		got := Normalize(fields)
		assert.Equal(t, []float64{9}, got.Support)
		assert.Equal(t, []entity.PriceRange{{7, 8}}, got.SellArea)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{"direction":"long","Support":[181.2,175.0,190.5]}`,
		`{"narrative":"DECISIVE","direction":"short","Resistance":[3,1,2],"Buy_Area":[[1,5],[9,2]],"Sell_Area":[[8,3]]}`,
	}
	for _, in := range inputs {
		once := Normalize(parse(t, in))
		twice := NormalizeInsight(once)
		assert.Equal(t, once, twice, in)
	}

	defaults := Normalize(nil)
	assert.Equal(t, defaults, NormalizeInsight(defaults))
}

func TestNormalize_Ordering(t *testing.T) {
	got := Normalize(parse(t, `{"Support":[3,9,1,7],"Resistance":[3,9,1,7],"Buy_Area":[[1,9],[4,4]],"Sell_Area":[[9,1],[2,3]]}`))

	assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(got.Support))))
	assert.True(t, sort.Float64sAreSorted(got.Resistance))
	for _, p := range got.BuyArea {
		assert.GreaterOrEqual(t, p[0], p[1])
	}
	for _, p := range got.SellArea {
		assert.LessOrEqual(t, p[0], p[1])
	}
	// outer order is kept
	assert.Equal(t, entity.PriceRange{9, 1}, got.BuyArea[0])
	assert.Equal(t, entity.PriceRange{1, 9}, got.SellArea[0])
}
