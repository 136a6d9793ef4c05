package automation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ScheduleMatch is a recurring schedule detected in an instruction.
type ScheduleMatch struct {
	// Cron is a five-field expression "minute hour * * *".
	Cron string
	// CJK reports which pattern family matched; used as a timezone hint
	// when the request carries no explicit timezone or geolocation.
	CJK bool
}

var (
	cjkPattern = regexp.MustCompile(`(每天|每日|天天)\s*(早上|上午|中午|下午|晚上|夜里|凌晨)?\s*(\d{1,2})\s*[点:：]\s*(半|\d{1,2})?`)

	englishDayPattern  = regexp.MustCompile(`(?i)\b(every\s+day|daily|each\s+day|every\s+(morning|afternoon|evening|night))\b`)
	englishTimePattern = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

// DetectSchedule scans an instruction for recurring-schedule phrasing and
// derives a cron expression. Two families are recognized: a day-frequency
// token plus an hour/minute with period-of-day disambiguation, and the
// equivalent English pattern with an optional am/pm clock.
func DetectSchedule(instruction string) (ScheduleMatch, bool) {
	if m := cjkPattern.FindStringSubmatch(instruction); m != nil {
		hour, err := strconv.Atoi(m[3])
		if err != nil || hour > 23 {
			return ScheduleMatch{}, false
		}
		minute := 0
		switch {
		case m[4] == "半":
			minute = 30
		case m[4] != "":
			minute, err = strconv.Atoi(strings.TrimSuffix(m[4], "分"))
			if err != nil || minute > 59 {
				return ScheduleMatch{}, false
			}
		}
		hour = applyPeriod(hour, m[2])
		return ScheduleMatch{Cron: fmt.Sprintf("%d %d * * *", minute, hour), CJK: true}, true
	}

	if englishDayPattern.MatchString(instruction) {
		m := englishTimePattern.FindStringSubmatch(instruction)
		if m == nil {
			return ScheduleMatch{}, false
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			return ScheduleMatch{}, false
		}
		minute := 0
		if m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				return ScheduleMatch{}, false
			}
		}
		switch strings.ToLower(m[3]) {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		return ScheduleMatch{Cron: fmt.Sprintf("%d %d * * *", minute, hour)}, true
	}

	return ScheduleMatch{}, false
}

// applyPeriod maps a period-of-day token onto the 24-hour clock.
func applyPeriod(hour int, period string) int {
	switch period {
	case "下午":
		if hour < 12 {
			hour += 12
		}
	case "晚上", "夜里":
		// 晚上12点 is midnight, not noon.
		switch {
		case hour == 12:
			hour = 0
		case hour < 12:
			hour += 12
		}
	case "凌晨":
		if hour == 12 {
			hour = 0
		}
	}
	// 早上/上午/中午 already read as 24-hour morning or midday values.
	return hour
}
