package analytics

import "time"

// EventType это тип действия пользователя на портале.
type EventType string

const (
	EventPageView            EventType = "page_view"
	EventCategorySelect      EventType = "category_select"
	EventFilterChange        EventType = "filter_change"
	EventEventView           EventType = "event_view"
	EventPOIView             EventType = "poi_view"
	EventFavoriteAdd         EventType = "favorite_add"
	EventFavoriteRemove      EventType = "favorite_remove"
	EventCalendarAdd         EventType = "calendar_add"
	EventTicketClick         EventType = "ticket_click"
	EventNewsletterSubscribe EventType = "newsletter_subscribe"
	EventLocationGPSEnable   EventType = "location_gps_enable"
	EventLocationReset       EventType = "location_reset"
	EventLocationMapClick    EventType = "location_map_click"
	EventFavoritesDrawerOpen EventType = "favorites_drawer_open"
)

var knownEventTypes = map[EventType]struct{}{
	EventPageView:            {},
	EventCategorySelect:      {},
	EventFilterChange:        {},
	EventEventView:           {},
	EventPOIView:             {},
	EventFavoriteAdd:         {},
	EventFavoriteRemove:      {},
	EventCalendarAdd:         {},
	EventTicketClick:         {},
	EventNewsletterSubscribe: {},
	EventLocationGPSEnable:   {},
	EventLocationReset:       {},
	EventLocationMapClick:    {},
	EventFavoritesDrawerOpen: {},
}

// Known проверяет, входит ли t в закрытый набор типов.
// Буфер его не проверяет, это делает сервер приёма.
func (t EventType) Known() bool {
	_, ok := knownEventTypes[t]
	return ok
}

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// Event описывает одно действие пользователя в формате /analytics/batch.
// Все поля, кроме Data, заполняются буфером при создании.
type Event struct {
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
	SubjectID  string         `json:"poi_id"`
	DeviceType DeviceType     `json:"device_type"`
	OS         string         `json:"os"`
	Browser    string         `json:"browser"`
	Language   string         `json:"language"`
	Type       EventType      `json:"event_type"`
	Data       map[string]any `json:"data,omitempty"`
}
