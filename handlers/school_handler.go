package handlers

import (
	"net/http"

	"github.com/schoolsports/tournament-engine/middleware"
	"github.com/schoolsports/tournament-engine/services"
)

type SchoolHandler struct {
	schools services.SchoolService
}

func NewSchoolHandler(schools services.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSchoolInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	school, err := h.schools.Create(r.Context(), middleware.CurrentUser(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"school": school}, nil)
}

func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	schoolID, err := urlParamInt(r, "schoolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	school, err := h.schools.GetByID(r.Context(), schoolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"school": school}, nil)
}

func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schools.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"schools": schools}, nil)
}
