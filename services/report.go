package services

import (
	"fmt"
	"io"
	"strings"

	"social-analytics/models"
	"social-analytics/utils"
)

// ReportService prints a colored terminal report of a dashboard view.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Print writes the report for v to w.
func (s *ReportService) Print(w io.Writer, v *models.DashboardView) {
	if len(v.Series) == 0 && len(v.TopPosts) == 0 && len(v.Video) == 0 {
		s.logger.Info("[report] No data in window %s ending %s", v.Window, v.ReferenceDate.Format("2006-01-02"))
	}

	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	sum := v.Summary

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 ACCOUNT ANALYTICS (%s)\033[0m\n", windowLabel(v.Window))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if v.From != nil {
		fmt.Fprintf(w, "  Period            : %s → %s\n", v.From.Format("Jan 2, 2006"), v.ReferenceDate.Format("Jan 2, 2006"))
	} else {
		fmt.Fprintf(w, "  Period            : all time through %s\n", v.ReferenceDate.Format("Jan 2, 2006"))
	}
	fmt.Fprintf(w, "  Impressions       : \033[1m%d\033[0m  %s\n", sum.TotalImpressions, trendArrow(v.Trends.ImpressionsChange))
	fmt.Fprintf(w, "  Likes             : \033[1m%d\033[0m  %s\n", sum.TotalLikes, trendArrow(v.Trends.LikesChange))
	fmt.Fprintf(w, "  Reposts / Replies : \033[1m%d\033[0m / \033[1m%d\033[0m\n", sum.TotalReposts, sum.TotalReplies)
	fmt.Fprintf(w, "  Engagement rate   : \033[1;32m%.1f%%\033[0m (%+.1f pts)\n", sum.EngagementRate, v.Trends.EngagementRateDelta)
	fmt.Fprintf(w, "  Followers         : \033[1m%d\033[0m (net %+d, %+d vs previous)\n",
		sum.CurrentFollowers, sum.NetFollowerChange, v.Trends.NetFollowersDelta)
	if sum.TotalPosts > 0 {
		fmt.Fprintf(w, "  Posts             : \033[1m%d\033[0m\n", sum.TotalPosts)
	}
	fmt.Fprintln(w)

	// Video
	if len(v.Video) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Video\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Views           : \033[1m%d\033[0m\n", sum.VideoViews)
		fmt.Fprintf(w, "  Watch time      : \033[1m%d min\033[0m\n", sum.WatchTimeMinutes)
		fmt.Fprintf(w, "  Completion rate : \033[1m%.1f%%\033[0m\n", sum.AvgCompletionRate)
		fmt.Fprintf(w, "  Est. revenue    : \033[1;32m$%.2f\033[0m\n", sum.EstimatedRevenue)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top Posts\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(v.TopPosts) == 0 {
		fmt.Fprintf(w, "  No posts in this period\n")
	} else {
		for i, p := range v.TopPosts {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%d\033[0m\n",
				i+1, truncate(oneLine(p.Text), 38), p.Impressions)
			fmt.Fprintf(w, "     %s · %s · %s\n", p.DisplayDate, p.HookType, p.ContentType)
		}
	}
	fmt.Fprintln(w)

	// Hook performance
	fmt.Fprintf(w, "\033[1;33m  Hook Performance\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(v.HookPerformance) == 0 {
		fmt.Fprintf(w, "  No hook data\n")
	} else {
		top := v.HookPerformance[0].AvgImpressions
		for _, h := range v.HookPerformance {
			bar := ""
			if top > 0 {
				bar = strings.Repeat("█", int(h.AvgImpressions*20/top))
			}
			fmt.Fprintf(w, "  %-16s %-20s %d avg (%.1f%%, %d posts)\n",
				h.Hook, bar, h.AvgImpressions, h.AvgEngagement, h.Posts)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func windowLabel(w models.TimeWindow) string {
	if w == models.WindowAll {
		return "all time"
	}
	return fmt.Sprintf("last %d days", w.Days())
}

func trendArrow(change float64) string {
	switch {
	case change > 0:
		return fmt.Sprintf("\033[32m▲ %.1f%%\033[0m", change)
	case change < 0:
		return fmt.Sprintf("\033[31m▼ %.1f%%\033[0m", -change)
	default:
		return "–"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
