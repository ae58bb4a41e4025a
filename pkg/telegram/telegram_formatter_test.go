package telegram

import (
	"fmt"
	"strings"
	"testing"

	"yt-stock-insight/internal/executor/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInsightEventForTelegram(t *testing.T) {
	msg := FormatInsightEventForTelegram(dto.InsightEvent{
		VideoTitle: "Tesla levels to watch",
		VideoURL:   "https://www.youtube.com/watch?v=abc",
		UploadDate: "02/06/2024",
		Symbols:    []string{"tesla"},
		Narrative:  "DECISIVE",
		Direction:  "SHORT",
		Support:    []float64{190.5, 181.2},
		SellArea:   [][2]float64{{245, 255}},
	})

	assert.Contains(t, msg, "*Tesla levels to watch*")
	assert.Contains(t, msg, "`tesla`")
	assert.Contains(t, msg, "🔴 *Direction:* SHORT")
	assert.Contains(t, msg, "$190.50, $181.20")
	assert.Contains(t, msg, "$245.00-$255.00")
	assert.NotContains(t, msg, "Buy Area")
	assert.True(t, strings.HasSuffix(msg, "https://www.youtube.com/watch?v=abc\n"))
}

func TestFormatChannelRunForTelegram_SplitsLongRuns(t *testing.T) {
	res := &dto.ChannelExtractionResult{Channel: "Market Talk", Persisted: 300}
	for i := 0; i < 300; i++ {
		res.Outcomes = append(res.Outcomes, dto.VideoOutcome{
			Title:  fmt.Sprintf("Tesla video number %03d with a reasonably long title", i),
			Status: "PERSISTED",
		})
	}
	res.Outcomes = append(res.Outcomes, dto.VideoOutcome{Title: "hidden", Status: "SKIPPED"})

	messages := FormatChannelRunForTelegram(res)

	require.Greater(t, len(messages), 1)
	for _, m := range messages {
		assert.LessOrEqual(t, len(m), maxMessageLen)
	}
	assert.Contains(t, messages[0], "Persisted: 300")
	assert.Contains(t, messages[1], "Part 2")
	assert.NotContains(t, strings.Join(messages, ""), "hidden")
}
