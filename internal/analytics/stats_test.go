package analytics

import (
	"strings"
	"testing"
	"time"
)

func TestAnalyzeDay(t *testing.T) {
	// Тестовая дата
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	events := []Event{
		// События в целевой день
		{Timestamp: testDate.Add(2 * time.Hour), SessionID: "s1", SubjectID: "poi-1", DeviceType: DeviceMobile, OS: "Android", Browser: "Chrome", Language: "pl", Type: EventPageView},
		{Timestamp: testDate.Add(3 * time.Hour), SessionID: "s1", SubjectID: "poi-1", DeviceType: DeviceMobile, OS: "Android", Browser: "Chrome", Language: "pl", Type: EventFavoriteAdd},
		{Timestamp: testDate.Add(5 * time.Hour), SessionID: "s2", SubjectID: "poi-2", DeviceType: DeviceDesktop, OS: "Windows", Browser: "Firefox", Language: "en", Type: EventTicketClick},
		{Timestamp: testDate.Add(6 * time.Hour), SessionID: "s2", DeviceType: DeviceDesktop, OS: "Windows", Browser: "Firefox", Language: "en", Type: EventPageView},
		// События в другой день (не должны учитываться)
		{Timestamp: testDate.AddDate(0, 0, 1), SessionID: "s3", Type: EventPageView},
		{Timestamp: testDate.Add(-time.Second), SessionID: "s4", Type: EventPageView},
	}

	stats := AnalyzeDay(events, testDate.Add(13*time.Hour))

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.TotalEvents != 4 {
		t.Errorf("Expected 4 events, got %d", stats.TotalEvents)
	}
	if stats.UniqueSessions != 2 {
		t.Errorf("Expected 2 sessions, got %d", stats.UniqueSessions)
	}
	if stats.ByEventType["page_view"] != 2 || stats.ByEventType["ticket_click"] != 1 {
		t.Errorf("Unexpected event type counts: %v", stats.ByEventType)
	}
	if stats.ByDevice["mobile"] != 2 || stats.ByDevice["desktop"] != 2 {
		t.Errorf("Unexpected device counts: %v", stats.ByDevice)
	}
	if stats.ByLanguage["en"] != 2 {
		t.Errorf("Unexpected language counts: %v", stats.ByLanguage)
	}
	if len(stats.TopSubjects) != 2 || stats.TopSubjects[0].SubjectID != "poi-1" || stats.TopSubjects[0].Events != 2 {
		t.Errorf("Unexpected top subjects: %+v", stats.TopSubjects)
	}
}

func TestAnalyzeDayEmptyData(t *testing.T) {
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDay(nil, testDate)

	if stats.TotalEvents != 0 || stats.UniqueSessions != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if len(stats.TopSubjects) != 0 {
		t.Errorf("Expected no subjects, got %v", stats.TopSubjects)
	}
}

func TestTopSubjectsLimitAndOrder(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 5, "c": 5, "d": 2, "e": 3, "f": 4, "g": 1}
	top := topSubjects(counts, 5)
	want := []string{"b", "c", "f", "e", "d"}
	if len(top) != len(want) {
		t.Fatalf("want %d, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].SubjectID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, top[i].SubjectID)
		}
	}
}

func TestGenerateReportSummary(t *testing.T) {
	stats := &DailyStats{
		Date:           "2024-01-15",
		TotalEvents:    7,
		UniqueSessions: 3,
		ByEventType:    map[string]int{"page_view": 5, "favorite_add": 2},
		ByDevice:       map[string]int{"mobile": 7},
		ByLanguage:     map[string]int{"de": 7},
		TopSubjects:    []SubjectCount{{SubjectID: "poi-9", Events: 4}},
	}

	summary := stats.GenerateReportSummary()

	for _, expected := range []string{"2024-01-15", "Events: 7", "Sessions: 3", "page_view: 5", "favorite_add: 2", "mobile: 7", "de: 7", "poi-9: 4"} {
		if !strings.Contains(summary, expected) {
			t.Errorf("Expected summary to contain '%s'. Summary: %s", expected, summary)
		}
	}
}

func TestToJSON(t *testing.T) {
	stats := AnalyzeDay([]Event{{Timestamp: time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC), SessionID: "s", Type: EventCalendarAdd}}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	jsonStr, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(jsonStr, `"calendar_add": 1`) {
		t.Errorf("Expected JSON to contain event type count, got: %s", jsonStr)
	}
}
