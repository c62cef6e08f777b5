package analytics

import "strings"

const (
	tabletMinWidth  = 768
	desktopMinWidth = 1024

	unknown = "Unknown"
)

// Probe описывает окружение, в котором записано событие.
type Probe interface {
	ViewportWidth() int
	UserAgent() string
}

// StaticProbe отдаёт фиксированные значения из конфигурации.
type StaticProbe struct {
	Width int
	Agent string
}

func (p StaticProbe) ViewportWidth() int { return p.Width }
func (p StaticProbe) UserAgent() string  { return p.Agent }

func DeviceTypeForWidth(width int) DeviceType {
	switch {
	case width < tabletMinWidth:
		return DeviceMobile
	case width < desktopMinWidth:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

type uaToken struct {
	needle string
	name   string
}

// Порядок важен: побеждает первое совпадение.
var osTokens = []uaToken{
	{"Windows", "Windows"},
	{"Mac", "macOS"},
	{"Linux", "Linux"},
	{"Android", "Android"},
	{"iOS", "iOS"},
}

var browserTokens = []uaToken{
	{"Firefox", "Firefox"},
	{"Chrome", "Chrome"},
	{"Safari", "Safari"},
	{"Edge", "Edge"},
}

func DetectOS(userAgent string) string {
	return firstMatch(userAgent, osTokens)
}

func DetectBrowser(userAgent string) string {
	return firstMatch(userAgent, browserTokens)
}

func firstMatch(ua string, tokens []uaToken) string {
	for _, t := range tokens {
		if strings.Contains(ua, t.needle) {
			return t.name
		}
	}
	return unknown
}
