package automation

// countryTimezones maps ISO country codes to a representative timezone.
// Countries spanning several zones get their most populous one; precision
// beyond that requires an explicit timezone from the caller.
var countryTimezones = map[string]string{
	"AU": "Australia/Sydney",
	"BR": "America/Sao_Paulo",
	"CA": "America/Toronto",
	"CN": "Asia/Shanghai",
	"DE": "Europe/Berlin",
	"ES": "Europe/Madrid",
	"FR": "Europe/Paris",
	"GB": "Europe/London",
	"HK": "Asia/Hong_Kong",
	"ID": "Asia/Jakarta",
	"IN": "Asia/Kolkata",
	"IT": "Europe/Rome",
	"JP": "Asia/Tokyo",
	"KR": "Asia/Seoul",
	"MX": "America/Mexico_City",
	"MY": "Asia/Kuala_Lumpur",
	"NL": "Europe/Amsterdam",
	"RU": "Europe/Moscow",
	"SG": "Asia/Singapore",
	"TH": "Asia/Bangkok",
	"TW": "Asia/Taipei",
	"US": "America/New_York",
	"VN": "Asia/Ho_Chi_Minh",
}

// RequestMeta carries the request-scoped signals timezone inference uses.
type RequestMeta struct {
	// Timezone is the explicit timezone request header, when present.
	Timezone string
	// Country is the gateway's geolocation country code, when present.
	Country string
}

// ResolveTimezone infers the automation's timezone: explicit request
// header, else geolocation country lookup, else the matched pattern
// family's hint, else the configured default.
func ResolveTimezone(meta RequestMeta, match ScheduleMatch, fallback string) string {
	if meta.Timezone != "" {
		return meta.Timezone
	}
	if tz, ok := countryTimezones[meta.Country]; ok {
		return tz
	}
	if match.CJK {
		return "Asia/Shanghai"
	}
	return fallback
}
