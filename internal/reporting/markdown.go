// Package reporting renders a completed profile run as a Markdown report.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"influencer-stats/internal/pipeline"
	"influencer-stats/internal/stats"
)

// activityGlyphs maps intensity levels 0..4 to display characters.
var activityGlyphs = [5]string{"·", "░", "▒", "▓", "█"}

// RenderMarkdown renders result as a Markdown string.
func RenderMarkdown(result *pipeline.Result) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Profile Report: %s @%s\n\n", result.Platform, result.Handle))
	sb.WriteString(fmt.Sprintf("Fetched: %s\n\n", result.FetchedAt.Format(time.RFC3339)))
	if result.FromCache {
		sb.WriteString("Source: session cache\n\n")
	}

	// Fetch diagnostics
	sb.WriteString("## Fetch\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Posts | %d |\n", len(result.Posts)))
	sb.WriteString(fmt.Sprintf("| Chunks | %d |\n", result.Chunks))
	if len(result.StopReasons) > 0 {
		reasons := make([]string, len(result.StopReasons))
		for i, r := range result.StopReasons {
			reasons[i] = string(r)
		}
		sb.WriteString(fmt.Sprintf("| Stop Reasons | %s |\n", strings.Join(reasons, ", ")))
	}
	sb.WriteString("\n")

	// Statistics
	s := result.Stats
	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Sample Size (mature posts) | %d |\n", s.SampleSize))
	sb.WriteString(fmt.Sprintf("| Avg Posts/Day | %.2f |\n", s.AvgPostsPerDay))
	sb.WriteString(fmt.Sprintf("| Avg Views | %d |\n", s.AvgViews))
	sb.WriteString(fmt.Sprintf("| Median Views | %d |\n", s.MedianViews))
	sb.WriteString(fmt.Sprintf("| Avg Engagement Rate | %.4f |\n", s.AvgEngagementRate))
	sb.WriteString(fmt.Sprintf("| Median Engagement Rate | %.4f |\n", s.MedEngagementRate))
	sb.WriteString("\n")

	// Activity
	sb.WriteString(fmt.Sprintf("## Activity (last %d days)\n\n", len(result.Activity.Days)))
	if len(result.Activity.Days) > 0 {
		first := result.Activity.Days[0].Date
		last := result.Activity.Days[len(result.Activity.Days)-1].Date
		var grid strings.Builder
		for _, day := range result.Activity.Days {
			grid.WriteString(activityGlyphs[stats.LevelFor(day.Count, result.Activity.MaxCount)])
		}
		sb.WriteString(fmt.Sprintf("`%s`\n\n", grid.String()))
		sb.WriteString(fmt.Sprintf("%s to %s, max %d posts/day\n\n",
			first.Format("2006-01-02"), last.Format("2006-01-02"), result.Activity.MaxCount))
	}

	// Promotions
	sb.WriteString("## Detected Promotions\n\n")
	if result.PromoError != "" {
		sb.WriteString(fmt.Sprintf("Classification degraded (mention detection only): %s\n\n", result.PromoError))
	}
	if len(result.Promos) == 0 {
		sb.WriteString("None detected in the classified window.\n")
	} else {
		sb.WriteString("| Date | Brand | Category | Confidence | Link |\n")
		sb.WriteString("|------|-------|----------|------------|------|\n")
		for _, p := range result.Promos {
			date := "?"
			if p.TakenAt != nil {
				date = p.TakenAt.Format("2006-01-02")
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %s |\n",
				date, strOr(p.Brand, "?"), strOr(p.Category, "?"), p.Confidence, p.URL))
		}
	}

	return sb.String()
}

func strOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
