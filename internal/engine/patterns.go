package engine

import (
	"sort"
	"time"

	"almanac/pkg/models"
)

// NoFavorite is reported for favorite weekday/hour when nothing was
// published
const NoFavorite = -1

// PatternSummary holds derived publishing-behavior statistics
type PatternSummary struct {
	WeekendCount      int `json:"weekend_count"`
	FavoriteWeekday   int `json:"favorite_weekday"` // time.Weekday index, Sunday = 0; -1 when none
	FavoriteHour      int `json:"favorite_hour"`    // 0-23; -1 when none
	LongestStreakDays int `json:"longest_streak_days"`
}

// DetectPatterns computes behavioral statistics over the published items in
// the given set. Ties for favorite weekday and hour resolve to the lowest
// index. The streak runs over distinct publish dates, so multiple posts on
// one day count once, and any gap other than exactly one day resets it.
func DetectPatterns(items []models.ContentItem) PatternSummary {
	summary := PatternSummary{
		FavoriteWeekday: NoFavorite,
		FavoriteHour:    NoFavorite,
	}

	var weekdayCounts [7]int
	var hourCounts [24]int
	distinctDates := make(map[time.Time]struct{})

	for _, item := range items {
		if item.Status != models.StatusPublished {
			continue
		}

		wd := item.Timestamp.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			summary.WeekendCount++
		}
		weekdayCounts[wd]++
		hourCounts[item.Timestamp.Hour()]++

		day := time.Date(item.Timestamp.Year(), item.Timestamp.Month(), item.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		distinctDates[day] = struct{}{}
	}

	summary.FavoriteWeekday = favoriteIndex(weekdayCounts[:])
	summary.FavoriteHour = favoriteIndex(hourCounts[:])
	summary.LongestStreakDays = longestStreak(distinctDates)
	return summary
}

// favoriteIndex returns the index with the strictly highest count, lowest
// index winning ties, or NoFavorite when all counts are zero
func favoriteIndex(counts []int) int {
	best := NoFavorite
	bestCount := 0
	for i, count := range counts {
		if count > bestCount {
			best = i
			bestCount = count
		}
	}
	return best
}

func longestStreak(distinctDates map[time.Time]struct{}) int {
	if len(distinctDates) == 0 {
		return 0
	}

	dates := make([]time.Time, 0, len(distinctDates))
	for d := range distinctDates {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
