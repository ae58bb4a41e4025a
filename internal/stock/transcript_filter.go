package stock

import (
	"strings"

	"yt-stock-insight/internal/entity"
)

// FilterTranscript keeps, in order, the text of every segment that mentions an
// alias of symbol and contains query (both compared lowercase, as substrings).
// An unknown symbol yields ErrUnknownSymbol rather than an empty result.
func FilterTranscript(table *SymbolTable, segments []entity.TranscriptSegment, symbol, query string) ([]string, error) {
	aliases, err := table.Aliases(symbol)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	out := []string{}
	for _, seg := range segments {
		text := strings.ToLower(seg.Text)
		if !strings.Contains(text, q) {
			continue
		}
		for _, a := range aliases {
			if strings.Contains(text, a) {
				out = append(out, seg.Text)
				break
			}
		}
	}
	return out, nil
}
