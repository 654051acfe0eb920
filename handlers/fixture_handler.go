package handlers

import (
	"net/http"

	"github.com/schoolsports/tournament-engine/middleware"
	"github.com/schoolsports/tournament-engine/services"
)

type FixtureHandler struct {
	fixtures services.FixtureService
	scores   services.ScoreService
}

func NewFixtureHandler(fixtures services.FixtureService, scores services.ScoreService) *FixtureHandler {
	return &FixtureHandler{fixtures: fixtures, scores: scores}
}

func (h *FixtureHandler) Start(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.fixtures.Start(r.Context(), middleware.CurrentUser(r), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil)
}

func (h *FixtureHandler) End(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerParticipationID int `json:"winner_participation_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.fixtures.End(r.Context(), middleware.CurrentUser(r), fixtureID, input.WinnerParticipationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil)
}

func (h *FixtureHandler) SwapTeams(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ParticipationID      int `json:"participation_id"`
		OtherFixtureID       int `json:"other_fixture_id"`
		OtherParticipationID int `json:"other_participation_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.fixtures.SwapTeams(r.Context(), middleware.CurrentUser(r),
		fixtureID, input.ParticipationID, input.OtherFixtureID, input.OtherParticipationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FixtureHandler) Edit(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EditFixtureInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.fixtures.Edit(r.Context(), middleware.CurrentUser(r), fixtureID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FixtureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.fixtures.Delete(r.Context(), middleware.CurrentUser(r), fixtureID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FixtureHandler) LogEvent(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.LogEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.scores.LogEvent(r.Context(), middleware.CurrentUser(r), fixtureID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil)
}

func (h *FixtureHandler) MatchDetails(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.scores.GetMatchDetails(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details, nil)
}
