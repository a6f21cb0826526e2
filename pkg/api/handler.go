package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"welltracker/pkg/sheets"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
)

// Handler serves the well routes from a WellStore.
type Handler struct {
	store         WellStore
	deletedSheet  string
	resolvedSheet string
}

func NewHandler(store WellStore, deletedSheet, resolvedSheet string) *Handler {
	return &Handler{
		store:         store,
		deletedSheet:  deletedSheet,
		resolvedSheet: resolvedSheet,
	}
}

func (h *Handler) getIndex(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, indexResponse{Sheets: h.store.Sheets()})
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) getPeReList(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	values, err := h.store.CategoryValues(r.Context(), req.Sheet)
	switch {
	case eris.Is(err, sheets.ErrInvalidSheet):
		sendError(w, http.StatusBadRequest, msgInvalidSheet)
	case eris.Is(err, sheets.ErrMissingColumn):
		sendError(w, http.StatusInternalServerError, msgMissingPeRe)
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, values)
	}
}

// getTotalGain reports failures with a 200 status; the client only looks at
// the body.
func (h *Handler) getTotalGain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	total, err := h.store.TotalGain(r.Context(), req.Sheet)
	if err != nil {
		log.WithError(err).WithField("sheet", req.Sheet).Error("Failed to total gain")
		sendError(w, http.StatusOK, err.Error())
		return
	}
	sendJSON(w, http.StatusOK, totalGainResponse{TotalGain: total})
}

func (h *Handler) getWells(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	wells, err := h.store.Wells(r.Context(), req.Sheet, req.PeRe)
	switch {
	case eris.Is(err, sheets.ErrInvalidSheet):
		sendError(w, http.StatusBadRequest, msgInvalidSheet)
	case eris.Is(err, sheets.ErrMissingColumn):
		sendError(w, http.StatusInternalServerError, msgPeReMissing)
	case eris.Is(err, sheets.ErrNotFound):
		sendError(w, http.StatusNotFound, fmt.Sprintf(msgNoWellsFmt, req.PeRe, req.Sheet))
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, wells)
	}
}

// saveWell serves both /save_well and /save_well2.
func (h *Handler) saveWell(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	err := h.store.SaveWell(r.Context(), req.Sheet, req.Well)
	switch {
	case eris.Is(err, sheets.ErrInvalidSheet):
		sendError(w, http.StatusBadRequest, msgInvalidSheet)
	case eris.Is(err, sheets.ErrNoData):
		sendError(w, http.StatusBadRequest, msgNoWellData)
	case eris.Is(err, sheets.ErrMissingColumn):
		sendError(w, http.StatusBadRequest, msgNoWellColumn)
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (h *Handler) addWell(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	err := h.store.AddWell(r.Context(), req.Sheet, req.NewWell)
	switch {
	case eris.Is(err, sheets.ErrInvalidSheet):
		sendError(w, http.StatusBadRequest, msgInvalidSheet)
	case eris.Is(err, sheets.ErrNoData):
		sendError(w, http.StatusBadRequest, msgNoNewWellData)
	case eris.Is(err, sheets.ErrNoEmptyRow):
		sendError(w, http.StatusInternalServerError, msgNoEmptyRow)
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// deleteWell always answers 200; success says whether a row went away.
func (h *Handler) deleteWell(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.WellName == nil {
		sendJSON(w, http.StatusOK, successResponse{Error: msgWellNameRequired})
		return
	}

	err := h.store.DeleteWell(r.Context(), req.Sheet, *req.WellName)
	switch {
	case eris.Is(err, sheets.ErrNotFound):
		sendJSON(w, http.StatusOK, successResponse{Error: msgWellNotFound})
	case err != nil:
		log.WithError(err).WithField("sheet", req.Sheet).Error("Failed to delete well")
		sendJSON(w, http.StatusOK, successResponse{Error: err.Error()})
	default:
		sendJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// moveWell returns the handler that archives a well into archive.
func (h *Handler) moveWell(archive string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		if !slices.Contains(h.store.Sheets(), req.Sheet) {
			sendError(w, http.StatusBadRequest, msgInvalidSheet)
			return
		}
		if req.WellName == nil {
			sendError(w, http.StatusBadRequest, msgWellNameRequired)
			return
		}

		err := h.store.MoveWell(r.Context(), req.Sheet, *req.WellName, archive)
		switch {
		case eris.Is(err, sheets.ErrInvalidSheet):
			sendError(w, http.StatusBadRequest, msgInvalidSheet)
		case eris.Is(err, sheets.ErrNotFound):
			sendError(w, http.StatusNotFound, msgWellNotFound)
		case err != nil:
			sendFault(w, r, err)
		default:
			sendJSON(w, http.StatusOK, successResponse{Success: true})
		}
	}
}

func (h *Handler) getDropdownOptions(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	options, err := h.store.DropdownOptions(r.Context(), req.Sheet)
	switch {
	case eris.Is(err, sheets.ErrInvalidSheet):
		sendError(w, http.StatusBadRequest, msgInvalidSheet)
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, options)
	}
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	name := ""
	if req.WellName != nil {
		name = *req.WellName
	}

	comments, err := h.store.History(r.Context(), name)
	switch {
	case eris.Is(err, sheets.ErrNameRequired):
		sendError(w, http.StatusBadRequest, msgWellNameRequired)
	case eris.Is(err, sheets.ErrMissingColumn):
		sendError(w, http.StatusBadRequest, msgNoHistoryColumns)
	case err != nil:
		sendFault(w, r, err)
	default:
		sendJSON(w, http.StatusOK, historyResponse{Comments: comments})
	}
}

// decodeRequest reads the JSON body. An empty body decodes to the zero
// request; anything else that is not a JSON object is rejected with 400.
func decodeRequest(w http.ResponseWriter, r *http.Request) (wellRequest, bool) {
	var req wellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).WithField("path", r.URL.Path).Debug("Rejected request body")
		sendError(w, http.StatusBadRequest, msgInvalidBody)
		return req, false
	}
	return req, true
}

func sendFault(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	sendError(w, http.StatusInternalServerError, err.Error())
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, errorResponse{Error: msg})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: msgInternalEncodeErr})
	}
	sendResponse(w, status, body)
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
