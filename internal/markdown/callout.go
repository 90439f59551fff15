package markdown

import (
	"strings"
)

// CalloutCategory is the semantic category detected from a callout's
// leading symbol and title.
type CalloutCategory string

const (
	CalloutWarning     CalloutCategory = "warning"
	CalloutError       CalloutCategory = "error"
	CalloutSuccess     CalloutCategory = "success"
	CalloutTip         CalloutCategory = "tip"
	CalloutPerformance CalloutCategory = "performance"
	CalloutInfo        CalloutCategory = "info"
)

// CalloutStyle is the fixed presentation for a category.
type CalloutStyle struct {
	Icon  string
	Color string
}

// Styles returns the fixed color scheme and icon for a category.
func (c CalloutCategory) Style() CalloutStyle {
	if s, ok := calloutStyles[c]; ok {
		return s
	}
	return calloutStyles[CalloutInfo]
}

var calloutStyles = map[CalloutCategory]CalloutStyle{
	CalloutWarning:     {Icon: "⚠️", Color: "#f59e0b"},
	CalloutError:       {Icon: "🚨", Color: "#ef4444"},
	CalloutSuccess:     {Icon: "✅", Color: "#22c55e"},
	CalloutTip:         {Icon: "💡", Color: "#3b82f6"},
	CalloutPerformance: {Icon: "⚡", Color: "#a855f7"},
	CalloutInfo:        {Icon: "ℹ️", Color: "#64748b"},
}

// Keyword table checked in order; the first category whose symbol or
// title keyword matches wins, info is the fallback.
var calloutKeywords = []struct {
	category CalloutCategory
	symbols  []string
	words    []string
}{
	{CalloutError, []string{"❌", "🚨", "🔴"}, []string{"error", "failed", "failure", "bug", "issue"}},
	{CalloutWarning, []string{"⚠️", "⚠"}, []string{"warning", "caution", "important", "deprecated"}},
	{CalloutSuccess, []string{"✅", "🎉", "🟢"}, []string{"success", "completed", "done", "passed"}},
	{CalloutPerformance, []string{"⚡", "🚀"}, []string{"performance", "optimization", "speed", "benchmark"}},
	{CalloutTip, []string{"💡", "📝"}, []string{"tip", "hint", "note", "suggestion", "recommendation"}},
}

// DetectCalloutCategory classifies a callout by its leading symbol
// and bold title text.
func DetectCalloutCategory(symbol, title string) CalloutCategory {
	lower := strings.ToLower(title)
	for _, entry := range calloutKeywords {
		for _, s := range entry.symbols {
			if strings.Contains(symbol, s) {
				return entry.category
			}
		}
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.category
			}
		}
	}
	return CalloutInfo
}
