package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const productID = "-//matricula-api//timetable//EN"

// WeeklyBlock is one recurring class meeting.
type WeeklyBlock struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Weekday     time.Weekday
	Start       string // HH:MM
	End         string // HH:MM
}

// Term bounds the recurrence of every block.
type Term struct {
	Name     string
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// BuildWeekly renders an iCalendar document where every block repeats weekly from
// its first occurrence on or after the term start until the term end.
func BuildWeekly(term Term, blocks []WeeklyBlock) (string, error) {
	loc := term.Location
	if loc == nil {
		loc = time.UTC
	}
	if !term.End.After(term.Start) {
		return "", fmt.Errorf("term end must be after term start")
	}

	cal := ics.NewCalendarFor(productID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if term.Name != "" {
		cal.SetName(term.Name)
		cal.SetXWRCalName(term.Name)
	}

	until := time.Date(term.End.Year(), term.End.Month(), term.End.Day(), 23, 59, 59, 0, loc).UTC()
	stamp := time.Now().UTC()

	for _, block := range blocks {
		startClock, err := parseClock(block.Start)
		if err != nil {
			return "", fmt.Errorf("block %s: %w", block.UID, err)
		}
		endClock, err := parseClock(block.End)
		if err != nil {
			return "", fmt.Errorf("block %s: %w", block.UID, err)
		}
		day := FirstWeekday(term.Start, block.Weekday)
		if day.After(term.End) {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), startClock.hour, startClock.minute, 0, 0, loc)
		end := time.Date(day.Year(), day.Month(), day.Day(), endClock.hour, endClock.minute, 0, 0, loc)

		event := cal.AddEvent(block.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(block.Summary)
		if block.Description != "" {
			event.SetDescription(block.Description)
		}
		if block.Location != "" {
			event.SetLocation(block.Location)
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;UNTIL=%s", until.Format("20060102T150405Z")))
	}

	return cal.Serialize(), nil
}

// FirstWeekday returns the first date on or after from that falls on weekday.
func FirstWeekday(from time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// ParseWeekday maps lowercase English day names to time.Weekday.
func ParseWeekday(day string) (time.Weekday, error) {
	switch strings.ToLower(day) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", day)
}

type clock struct {
	hour   int
	minute int
}

func parseClock(raw string) (clock, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return clock{}, fmt.Errorf("invalid time %q", raw)
	}
	return clock{hour: t.Hour(), minute: t.Minute()}, nil
}
