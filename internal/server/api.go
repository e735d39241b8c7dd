package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/validation"
	"github.com/region23/calendar/pkg/errors"
	"github.com/region23/calendar/pkg/logger"
)

// DaysResponse дни окна
type DaysResponse struct {
	Days []string `json:"days"`
}

// RangeResponse окно дат пресета
type RangeResponse struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ClosurePayload тело POST /api/closures
type ClosurePayload struct {
	Resource  string `json:"resource"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := validation.ValidateDateRange(q.Get("start"), q.Get("end"), s.service.Location())
	if err != nil {
		s.writeError(w, err)
		return
	}

	days, err := s.service.Days(rng.Start, rng.End)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := DaysResponse{Days: make([]string, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, d.Format(calendar.DateLayout))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ValidatePreset(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	rng, err := s.service.Preset(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, RangeResponse{
		ID:    string(id),
		Start: rng.Start.Format(calendar.DateLayout),
		End:   rng.End.Format(calendar.DateLayout),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.service.Location()

	start, err := validation.ValidateDate(q.Get("start"), loc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	end, err := validation.ValidateDate(q.Get("end"), loc)
	if err != nil {
		s.writeError(w, err)
		return
	}

	grid, err := s.service.Grid(start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := validation.ValidateDate(q.Get("date"), s.service.Location())
	if err != nil {
		s.writeError(w, err)
		return
	}
	hour, err := validation.ValidateHour(q.Get("hour"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	detail, err := s.service.Slot(date, hour)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSubmitClosure(w http.ResponseWriter, r *http.Request) {
	var payload ClosurePayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}

	req, err := payload.toRequest(s.service.Location())
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Key = strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))

	receipt, err := s.service.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, receipt)
}

// idempotencyKeyHeader передается сервису бронирования без изменений
const idempotencyKeyHeader = "Idempotency-Key"

// toRequest разбирает даты; пустые даты попадают в ошибку валидации формы
func (p ClosurePayload) toRequest(loc *time.Location) (calendar.ClosureRequest, error) {
	req := calendar.ClosureRequest{Resource: p.Resource, Reason: p.Reason}

	if p.StartDate != "" {
		d, err := validation.ValidateDate(p.StartDate, loc)
		if err != nil {
			return req, err
		}
		req.Start = d
	}
	if p.EndDate != "" {
		d, err := validation.ValidateDate(p.EndDate, loc)
		if err != nil {
			return req, err
		}
		req.End = d
	}
	return req, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	ce, ok := errors.GetCalendarError(err)
	if !ok {
		s.logger.Error("Unexpected API error", logger.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "internal error"})
		return
	}

	s.writeJSON(w, statusFor(ce.Code), ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
		Fields:  calendar.InvalidFields(ce),
	})
}

func statusFor(code string) int {
	switch code {
	case errors.ErrUnknownPreset.Code:
		return http.StatusNotFound
	case errors.ErrValidation.Code, errors.ErrInvalidResource.Code:
		return http.StatusUnprocessableEntity
	case errors.ErrSubmissionFailed.Code:
		return http.StatusBadGateway
	case errors.ErrInvalidRange.Code, errors.ErrRangeTooLong.Code, errors.ErrInvalidDate.Code,
		errors.ErrInvalidHour.Code, errors.ErrInvalidSlot.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
