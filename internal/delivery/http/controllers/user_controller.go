package controllers

import (
	"log/slog"
	"net/http"

	"pinpoint/internal/delivery/http/helpers"
	"pinpoint/internal/domain"
)

// UpdateUserRequest is the request body for PUT /users/me. Every field is optional.
type UpdateUserRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Organization *string `json:"organization"`
}

// Patch converts the request into a domain profile patch.
func (u UpdateUserRequest) Patch() domain.ProfilePatch {
	return domain.ProfilePatch{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organization: u.Organization,
	}
}

// ProfileResponse is the success envelope for /users/me.
type ProfileResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ClubListResponse is the success envelope for GET /clubs.
type ClubListResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get current user profile
// @Description Returns the authenticated user with the ids of the events they joined and saved.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := c.Service.GetProfile(r.Context(), principal(r))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Description Change first name, last name or organization. Only organizers may set organization.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateUserRequest true "Fields to change"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [put]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.UpdateProfile(r.Context(), principal(r), req.Patch())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// ListClubs godoc
// @Summary List clubs
// @Description Lists organizer accounts.
// @Tags users
// @Produce json
// @Success 200 {object} ClubListResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /clubs [get]
func (c *UserController) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := c.Service.ListClubs(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, clubs)
}
