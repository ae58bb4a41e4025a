package insight

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"yt-stock-insight/internal/entity"
)

const (
	fieldNarrative  = "narrative"
	fieldDirection  = "direction"
	fieldSupport    = "support"
	fieldResistance = "resistance"
	fieldBuyArea    = "buyarea"
	fieldSellArea   = "sellarea"
)

// Normalize coerces loosely typed fields into a FinancialInsight. Each field is
// handled on its own: bad entries are dropped and an unusable field falls back
// to its default, so Normalize never fails. When several raw keys collapse to
// the same field ("Buy_Area", "buy area") the first in byte order wins.
func Normalize(fields map[string]json.RawMessage) entity.FinancialInsight {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byKey := make(map[string]json.RawMessage, len(fields))
	for _, k := range keys {
		ck := canonicalKey(k)
		if _, seen := byKey[ck]; seen {
			continue
		}
		byKey[ck] = fields[k]
	}

	return entity.FinancialInsight{
		Narrative:  enumValue(byKey[fieldNarrative], entity.NarrativeNonDecisive, entity.NarrativeDecisive, entity.NarrativeNonDecisive),
		Direction:  enumValue(byKey[fieldDirection], entity.DirectionLong, entity.DirectionLong, entity.DirectionShort),
		Support:    sortedLevels(byKey[fieldSupport], true),
		Resistance: sortedLevels(byKey[fieldResistance], false),
		BuyArea:    ranges(byKey[fieldBuyArea], true),
		SellArea:   ranges(byKey[fieldSellArea], false),
	}
}

// NormalizeInsight re-applies the normalization rules to an existing insight.
func NormalizeInsight(in entity.FinancialInsight) entity.FinancialInsight {
	raw, err := json.Marshal(in)
	if err != nil {
		return Normalize(nil)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Normalize(nil)
	}
	return Normalize(fields)
}

func canonicalKey(k string) string {
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(k)))
}

func enumValue(raw json.RawMessage, def string, allowed ...string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	return def
}

func sortedLevels(raw json.RawMessage, descending bool) []float64 {
	levels := []float64{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// a lone scalar counts as a one-element list
		if v, ok := number(raw); ok {
			levels = append(levels, v)
		}
		return levels
	}
	for _, item := range items {
		if v, ok := number(item); ok {
			levels = append(levels, v)
		}
	}
	sortFloats(levels, descending)
	return levels
}

func ranges(raw json.RawMessage, descending bool) []entity.PriceRange {
	out := []entity.PriceRange{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			continue
		}
		a, okA := number(pair[0])
		b, okB := number(pair[1])
		if !okA || !okB {
			continue
		}
		if (descending && a < b) || (!descending && a > b) {
			a, b = b, a
		}
		out = append(out, entity.PriceRange{a, b})
	}
	return out
}

// number accepts JSON numbers and numeric strings such as "$1,250.5".
func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, isFinite(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sortFloats(v []float64, descending bool) {
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(v)))
		return
	}
	sort.Float64s(v)
}
