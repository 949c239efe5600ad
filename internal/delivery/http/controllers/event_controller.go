package controllers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pinpoint/internal/adapters/calendar"
	"pinpoint/internal/delivery/http/helpers"
	"pinpoint/internal/delivery/http/middleware"
	"pinpoint/internal/domain"
)

// VenueRequest is the venue object of CreateEventRequest.
type VenueRequest struct {
	Room   string `json:"room"`
	Block  string `json:"block"`
	Campus string `json:"campus"`
}

// LocationRequest is the location object of CreateEventRequest. Both coordinates are required.
type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string           `json:"title"`
	Venue       *VenueRequest    `json:"venue"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Location    *LocationRequest `json:"location"`
	StartTime   *time.Time       `json:"start_time"`
	EndTime     *time.Time       `json:"end_time"`
}

// Validate implements Validator. Field rules are checked by the domain; this only rejects
// missing objects that would otherwise decode to zero values.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Venue == nil {
		errs = append(errs, "venue is required")
	}
	if c.Location == nil {
		errs = append(errs, "location is required")
	} else {
		if c.Location.Lat == nil {
			errs = append(errs, "location.lat is required")
		}
		if c.Location.Lng == nil {
			errs = append(errs, "location.lng is required")
		}
	}
	return errs
}

// Fields converts the request into domain event fields. Call only after Validate passed.
func (c CreateEventRequest) Fields() domain.EventFields {
	f := domain.EventFields{
		Title:       c.Title,
		Venue:       domain.Venue{Room: c.Venue.Room, Block: c.Venue.Block, Campus: c.Venue.Campus},
		Category:    domain.Category(c.Category),
		Description: c.Description,
		Location:    domain.Coordinates{Lat: *c.Location.Lat, Lng: *c.Location.Lng},
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
	f.Normalize()
	return f
}

// NullableTime is a patch field that tells an absent key apart from an explicit null.
type NullableTime struct {
	Set  bool
	Time *time.Time
}

// UnmarshalJSON is only called when the key is present, including for null.
func (n *NullableTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	n.Time = &t
	return nil
}

// UpdateVenueRequest is the venue object of UpdateEventRequest.
type UpdateVenueRequest struct {
	Room   *string `json:"room"`
	Block  *string `json:"block"`
	Campus *string `json:"campus"`
}

// UpdateLocationRequest is the location object of UpdateEventRequest.
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. Absent keys leave the
// field unchanged; start_time and end_time accept null to clear the instant.
type UpdateEventRequest struct {
	Title       *string                `json:"title"`
	Venue       *UpdateVenueRequest    `json:"venue"`
	Category    *string                `json:"category"`
	Description *string                `json:"description"`
	Location    *UpdateLocationRequest `json:"location"`
	StartTime   NullableTime           `json:"start_time" swaggertype:"string" format:"date-time"`
	EndTime     NullableTime           `json:"end_time" swaggertype:"string" format:"date-time"`
}

// Patch converts the request into a domain patch.
func (u UpdateEventRequest) Patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:       u.Title,
		Description: u.Description,
		StartTime:   domain.OptionalTime{Set: u.StartTime.Set, Time: u.StartTime.Time},
		EndTime:     domain.OptionalTime{Set: u.EndTime.Set, Time: u.EndTime.Time},
	}
	if u.Venue != nil {
		p.Room, p.Block, p.Campus = u.Venue.Room, u.Venue.Block, u.Venue.Campus
	}
	if u.Location != nil {
		p.Lat, p.Lng = u.Location.Lat, u.Location.Lng
	}
	if u.Category != nil {
		c := domain.Category(*u.Category)
		p.Category = &c
	}
	return p
}

// EventResponse is the success envelope for endpoints returning one event.
type EventResponse struct {
	Data  *domain.EventView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListResponse is the success envelope for endpoints returning a list of events.
type EventListResponse struct {
	Data  []*domain.EventView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Now     func() time.Time
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Now:     time.Now,
	}
}

func principal(r *http.Request) domain.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event owned by the authenticated organizer. attendee_count starts at 0.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event fields"
// @Success 200 {object} EventResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.CreateEvent(r.Context(), principal(r), req.Fields())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// ListEvents godoc
// @Summary List events
// @Description List events newest first. text matches title, description and venue case-insensitively; status filters on the derived status.
// @Tags events
// @Produce json
// @Param text query string false "Substring to search for"
// @Param category query string false "Category" Enums(tech, sports, cultural, art, music, academic)
// @Param status query string false "Derived status" Enums(unscheduled, upcoming, live, ended)
// @Success 200 {object} EventListResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{Text: strings.TrimSpace(q.Get("text"))}
	if filter.Text == "" {
		filter.Text = strings.TrimSpace(q.Get("q"))
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Get("category"))); raw != "" {
		filter.Category = domain.Category(raw)
		if !filter.Category.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category: "+raw)
			return
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Get("status"))); raw != "" {
		st, ok := domain.ParseStatusState(raw)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown status: "+raw)
			return
		}
		filter.Status = st
	}

	views, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event. Only the owning organizer may update it. attendee_count, organizer_id and id cannot be set.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} EventResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.UpdateEvent(r.Context(), principal(r), r.PathValue("eventID"), req.Patch())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and its joined and saved records. Only the owning organizer may delete it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), principal(r), r.PathValue("eventID")); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusMessage{Status: "deleted"})
}

// JoinEvent godoc
// @Summary Join an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [post]
func (c *EventController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.JoinEvent(r.Context(), principal(r), r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UnjoinEvent godoc
// @Summary Leave an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [delete]
func (c *EventController) UnjoinEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.UnjoinEvent(r.Context(), principal(r), r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// SaveEvent godoc
// @Summary Bookmark an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.status: saved"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/save [post]
func (c *EventController) SaveEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.SaveEvent(r.Context(), principal(r), r.PathValue("eventID")); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusMessage{Status: "saved"})
}

// UnsaveEvent godoc
// @Summary Remove a bookmark
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.status: unsaved"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/save [delete]
func (c *EventController) UnsaveEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.UnsaveEvent(r.Context(), principal(r), r.PathValue("eventID")); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusMessage{Status: "unsaved"})
}

// ExportCalendar godoc
// @Summary Export an event as iCalendar
// @Description Returns a VCALENDAR with one VEVENT. Unscheduled events cannot be exported.
// @Tags events
// @Produce text/calendar
// @Param eventID path string true "Event ID"
// @Success 200 {string} string "text/calendar body"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/calendar.ics [get]
func (c *EventController) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	var buf bytes.Buffer
	if err := calendar.WriteEvent(&buf, view.Event, c.Now()); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="event-`+view.ID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ListJoinedEvents godoc
// @Summary List events the caller joined
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventListResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/joined-events [get]
func (c *EventController) ListJoinedEvents(w http.ResponseWriter, r *http.Request) {
	views, err := c.Service.ListJoinedEvents(r.Context(), principal(r))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// ListSavedEvents godoc
// @Summary List events the caller saved
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventListResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/saved-events [get]
func (c *EventController) ListSavedEvents(w http.ResponseWriter, r *http.Request) {
	views, err := c.Service.ListSavedEvents(r.Context(), principal(r))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// ListOwnedEvents godoc
// @Summary List events the caller organizes
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventListResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events [get]
func (c *EventController) ListOwnedEvents(w http.ResponseWriter, r *http.Request) {
	views, err := c.Service.ListOwnedEvents(r.Context(), principal(r))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}
