// Package calendar renders events as iCalendar documents for "add to calendar" links.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"pinpoint/internal/domain"
)

const productID = "-//pinpoint//events//EN"

// ContentType is the media type of an encoded calendar.
const ContentType = "text/calendar; charset=utf-8"

// UIDDomain qualifies event ids in VEVENT UIDs.
const UIDDomain = "pinpoint.events"

// WriteEvent encodes e as a single-VEVENT calendar. Unscheduled events cannot be exported
// and fail with a validation error.
func WriteEvent(w io.Writer, e *domain.Event, stamp time.Time) error {
	if e.StartTime == nil {
		return domain.NewValidationError("event has no start time to export")
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, toVEvent(e, stamp))

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toVEvent(e *domain.Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID+"@"+UIDDomain)
	ve.Props.SetText(ical.PropSummary, e.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, e.StartTime.UTC())
	if e.EndTime != nil {
		ve.Props.SetDateTime(ical.PropDateTimeEnd, e.EndTime.UTC())
	}
	if e.Description != "" {
		ve.Props.SetText(ical.PropDescription, e.Description)
	}
	ve.Props.SetText(ical.PropLocation, Location(e.Venue))
	ve.Props.SetText(ical.PropCategories, strings.ToUpper(string(e.Category)))

	geo := ical.NewProp(ical.PropGeo)
	geo.Value = strconv.FormatFloat(e.Location.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(e.Location.Lng, 'f', -1, 64)
	ve.Props.Set(geo)
	return ve
}

// Location formats a venue the way it is printed on event cards.
func Location(v domain.Venue) string {
	return fmt.Sprintf("Room %s, Block %s, %s", v.Room, v.Block, v.Campus)
}
