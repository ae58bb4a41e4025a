package repository

import "fmt"

// BuildInsightPrompt asks for the trade thesis of a (summarized) transcript as JSON.
func BuildInsightPrompt(title, transcript string) string {
	return fmt.Sprintf(`You are a markets analyst. Analyze the following transcript of the video "%s" and extract financial insights in JSON format:

%s

The response must strictly follow this format and contain nothing else:
{
  "narrative": "DECISIVE" or "NON-DECISIVE",
  "direction": "LONG" or "SHORT",
  "Support": [<list of float values>],
  "Resistance": [<list of float values>],
  "Buy_Area": [[<float>, <float>], ...] sorted descending,
  "Sell_Area": [[<float>, <float>], ...] sorted ascending
}`, title, transcript)
}

// BuildSummaryPrompt asks for a length-bounded summary of a transcript.
func BuildSummaryPrompt(transcript string, maxChars int) string {
	return fmt.Sprintf(`Summarize the following financial video transcript in at most %d characters. Keep every price level, ticker, support, resistance, entry and exit zone that is mentioned. Answer with the summary only.

%s`, maxChars, transcript)
}
