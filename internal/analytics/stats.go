package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DailyStats содержит статистику за день
type DailyStats struct {
	Date           string         `json:"date"`
	TotalEvents    int            `json:"total_events"`
	UniqueSessions int            `json:"unique_sessions"`
	ByEventType    map[string]int `json:"by_event_type"`
	ByDevice       map[string]int `json:"by_device"`
	ByLanguage     map[string]int `json:"by_language"`
	ByOS           map[string]int `json:"by_os"`
	ByBrowser      map[string]int `json:"by_browser"`
	TopSubjects    []SubjectCount `json:"top_subjects"`
}

// SubjectCount содержит число событий по точке интереса
type SubjectCount struct {
	SubjectID string `json:"poi_id"`
	Events    int    `json:"events"`
}

const topSubjectsLimit = 5

// AnalyzeDay анализирует события за указанную дату
func AnalyzeDay(events []Event, targetDate time.Time) *DailyStats {
	// Нормализуем дату до начала дня
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:        startOfDay.Format("2006-01-02"),
		ByEventType: make(map[string]int),
		ByDevice:    make(map[string]int),
		ByLanguage:  make(map[string]int),
		ByOS:        make(map[string]int),
		ByBrowser:   make(map[string]int),
	}

	sessions := make(map[string]bool)
	subjects := make(map[string]int)

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		stats.TotalEvents++
		sessions[ev.SessionID] = true
		stats.ByEventType[string(ev.Type)]++
		stats.ByDevice[string(ev.DeviceType)]++
		stats.ByLanguage[ev.Language]++
		stats.ByOS[ev.OS]++
		stats.ByBrowser[ev.Browser]++
		if ev.SubjectID != "" {
			subjects[ev.SubjectID]++
		}
	}

	stats.UniqueSessions = len(sessions)
	stats.TopSubjects = topSubjects(subjects, topSubjectsLimit)
	return stats
}

func topSubjects(counts map[string]int, limit int) []SubjectCount {
	out := make([]SubjectCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, SubjectCount{SubjectID: id, Events: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Events != out[j].Events {
			return out[i].Events > out[j].Events
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GenerateReportSummary создает текстовое резюме (для чата или LLM)
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portal analytics for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "Events: %d\nSessions: %d\n", ds.TotalEvents, ds.UniqueSessions)

	writeCounts(&b, "Event types", ds.ByEventType)
	writeCounts(&b, "Devices", ds.ByDevice)
	writeCounts(&b, "Languages", ds.ByLanguage)

	if len(ds.TopSubjects) > 0 {
		b.WriteString("\nTop points of interest:\n")
		for _, s := range ds.TopSubjects {
			fmt.Fprintf(&b, "- %s: %d\n", s.SubjectID, s.Events)
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %d\n", k, counts[k])
	}
}

// ToJSON сериализует статистику в JSON для детального анализа
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
