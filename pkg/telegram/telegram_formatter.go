package telegram

import (
	"fmt"
	"strings"
	"time"

	"yt-stock-insight/internal/entity"
	"yt-stock-insight/internal/executor/dto"
)

const maxMessageLen = 4090

// FormatInsightEventForTelegram formats a persisted video insight into a Markdown string for Telegram.
func FormatInsightEventForTelegram(evt dto.InsightEvent) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎬 *%s*\n", evt.VideoTitle))
	if len(evt.Symbols) > 0 {
		sb.WriteString(fmt.Sprintf("📈 *Symbols:* `%s`\n", strings.Join(evt.Symbols, ", ")))
	}
	sb.WriteString(fmt.Sprintf("📅 *Uploaded:* %s\n\n", evt.UploadDate))

	var directionIcon string
	switch evt.Direction {
	case entity.DirectionLong:
		directionIcon = "🟢"
	case entity.DirectionShort:
		directionIcon = "🔴"
	default:
		directionIcon = "🟡"
	}
	sb.WriteString(fmt.Sprintf("%s *Direction:* %s\n", directionIcon, evt.Direction))

	narrativeIcon := "😐"
	if evt.Narrative == entity.NarrativeDecisive {
		narrativeIcon = "💪"
	}
	sb.WriteString(fmt.Sprintf("%s *Narrative:* %s\n\n", narrativeIcon, evt.Narrative))

	if len(evt.Support) > 0 {
		sb.WriteString(fmt.Sprintf("🛡 *Support:* %s\n", formatLevels(evt.Support)))
	}
	if len(evt.Resistance) > 0 {
		sb.WriteString(fmt.Sprintf("🧱 *Resistance:* %s\n", formatLevels(evt.Resistance)))
	}
	if len(evt.BuyArea) > 0 {
		sb.WriteString(fmt.Sprintf("💵 *Buy Area:* %s\n", formatRanges(evt.BuyArea)))
	}
	if len(evt.SellArea) > 0 {
		sb.WriteString(fmt.Sprintf("💰 *Sell Area:* %s\n", formatRanges(evt.SellArea)))
	}

	sb.WriteString(fmt.Sprintf("\n🔗 %s\n", evt.VideoURL))
	return sb.String()
}

// FormatChannelRunForTelegram formats a channel extraction summary into one or
// more Markdown strings, each within Telegram's message limit.
func FormatChannelRunForTelegram(result *dto.ChannelExtractionResult) []string {
	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📺 *Channel Run: %s*\n", result.Channel))
			current.WriteString(fmt.Sprintf("✅ Persisted: %d | ⏭ Skipped: %d | ❌ Failed: %d\n", result.Persisted, result.Skipped, result.Failed))
			current.WriteString(fmt.Sprintf("⏱ Duration: %s\n\n", result.Duration))
		} else {
			current.WriteString(fmt.Sprintf("---*Channel Run %s Part %d*---\n\n", result.Channel, part))
		}
	}
	startNewPart()

	for _, o := range result.Outcomes {
		if o.Status == "SKIPPED" {
			continue
		}
		entry := fmt.Sprintf("• [%s] %s", o.Status, o.Title)
		if o.Reason != "" {
			entry += fmt.Sprintf(" _(%s)_", o.Reason)
		}
		entry += "\n"

		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}

	messages = append(messages, current.String())
	return messages
}

// FormatErrorAlertMessage formats an error alert.
func FormatErrorAlertMessage(t time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, t.Format("02 Jan 2006 15:04"), errType, errMsg, data)
}

func formatLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = fmt.Sprintf("$%.2f", v)
	}
	return strings.Join(parts, ", ")
}

func formatRanges(ranges [][2]float64) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = fmt.Sprintf("$%.2f-$%.2f", r[0], r[1])
	}
	return strings.Join(parts, ", ")
}
