package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/providers"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	"github.com/reservenow/backend/pkg/utils"
)

const (
	reservationRateLimit  = 5
	reservationRateWindow = 10 * time.Minute
	reservationMaxBody    = 16 << 10
	reservationDateLayout = "2006-01-02"
)

// ReservationSubmitter validates and dispatches reservation forms
type ReservationSubmitter interface {
	Preview(ctx context.Context, restaurantID string, req *entities.ReservationRequest) (string, entities.ValidationResult, error)
	Submit(ctx context.Context, restaurantID string, req *entities.ReservationRequest, opener providers.LinkOpener) (*entities.Submission, entities.ValidationResult, error)
}

// ReservationHandler serves the reservation form endpoints
type ReservationHandler struct {
	service  ReservationSubmitter
	limiter  *submissionLimiter
	location *time.Location
	metrics  *observability.Metrics
}

// NewReservationHandler creates a reservation handler. counter may be nil,
// in which case submissions are limited per process.
// Form dates are read as calendar days in loc.
func NewReservationHandler(service ReservationSubmitter, counter providers.RateCounter, loc *time.Location, metrics *observability.Metrics) *ReservationHandler {
	return &ReservationHandler{
		service:  service,
		limiter:  newSubmissionLimiter(counter, reservationRateLimit, reservationRateWindow),
		location: loc,
		metrics:  metrics,
	}
}

type reservationPayload struct {
	Name            string `json:"name"`
	PartySize       int    `json:"partySize"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"specialRequests"`
}

type validationFailure struct {
	Error  string               `json:"error"`
	Fields entities.FieldErrors `json:"fields"`
}

// toRequest converts the payload. A date that is present but unreadable is
// returned as a field error so it is reported with the rest of the form.
func (p reservationPayload) toRequest(loc *time.Location) (*entities.ReservationRequest, entities.FieldErrors) {
	req := &entities.ReservationRequest{
		Name:            p.Name,
		PartySize:       p.PartySize,
		Time:            p.Time,
		Phone:           p.Phone,
		SpecialRequests: p.SpecialRequests,
	}

	if date := strings.TrimSpace(p.Date); date != "" {
		parsed, err := time.ParseInLocation(reservationDateLayout, date, loc)
		if err != nil {
			return req, entities.FieldErrors{services.FieldDate: "Date must look like 2026-01-31"}
		}
		req.Date = parsed
	}
	return req, nil
}

// httpLinkOpener records how the deep link should reach the caller. A JSON
// client opens the link itself in a new tab; a plain form post can only be
// redirected.
type httpLinkOpener struct {
	allowNew  bool
	navigated string
}

func (o *httpLinkOpener) OpenNew(ctx context.Context, url string) bool {
	return o.allowNew
}

func (o *httpLinkOpener) Navigate(ctx context.Context, url string) {
	o.navigated = url
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

// TimeSlots handles GET /api/reservations/time-slots
func (h *ReservationHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{
		"timeSlots": utils.ReservationTimeSlots(),
	})
}

// PreviewReservation handles POST /api/restaurants/{id}/reservations/preview
func (h *ReservationHandler) PreviewReservation(w http.ResponseWriter, r *http.Request) {
	req, fieldErrs, ok := h.decode(w, r)
	if !ok {
		return
	}

	message, result, err := h.service.Preview(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, observability.LoggerFromContext(r.Context()), err)
		return
	}
	if errs := mergeFieldErrors(result.Errors, fieldErrs); len(errs) > 0 {
		respondWithJSON(w, http.StatusUnprocessableEntity, validationFailure{Error: "validation failed", Fields: errs})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

// SubmitReservation handles POST /api/restaurants/{id}/reservations
func (h *ReservationHandler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, fieldErrs, ok := h.decode(w, r)
	if !ok {
		return
	}

	key := "reservation:rate:" + clientIP(r)
	release, retryAfter, allowed := h.limiter.reserve(ctx, key)
	if !allowed {
		if h.metrics != nil {
			observability.RecordRateLimited(ctx, h.metrics)
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		respondWithError(w, http.StatusTooManyRequests, "too many reservation requests, please try again later")
		return
	}

	// A bad date must block dispatch even though the service never sees it
	if len(fieldErrs) > 0 {
		release()
		_, result, err := h.service.Preview(ctx, r.PathValue("id"), req)
		if err != nil {
			respondWithAppError(w, observability.LoggerFromContext(ctx), err)
			return
		}
		respondWithJSON(w, http.StatusUnprocessableEntity, validationFailure{
			Error:  "validation failed",
			Fields: mergeFieldErrors(result.Errors, fieldErrs),
		})
		return
	}

	opener := &httpLinkOpener{allowNew: !wantsHTML(r)}
	submission, result, err := h.service.Submit(ctx, r.PathValue("id"), req, opener)
	if err != nil {
		release()
		respondWithAppError(w, observability.LoggerFromContext(ctx), err)
		return
	}
	if !result.Valid() {
		release()
		respondWithJSON(w, http.StatusUnprocessableEntity, validationFailure{Error: "validation failed", Fields: result.Errors})
		return
	}

	if submission.Opened == entities.OpenModeCurrentContext {
		http.Redirect(w, r, opener.navigated, http.StatusSeeOther)
		return
	}
	respondWithJSON(w, http.StatusOK, submission)
}

func (h *ReservationHandler) decode(w http.ResponseWriter, r *http.Request) (*entities.ReservationRequest, entities.FieldErrors, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, reservationMaxBody)

	var payload reservationPayload
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		payload, err = formPayload(r)
	} else {
		err = json.NewDecoder(r.Body).Decode(&payload)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, nil, false
		}
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, nil, false
	}

	req, fieldErrs := payload.toRequest(h.location)
	return req, fieldErrs, true
}

// formPayload reads a browser form post. A party size that is not a number
// is left at zero and reported by validation.
func formPayload(r *http.Request) (reservationPayload, error) {
	if err := r.ParseForm(); err != nil {
		return reservationPayload{}, err
	}
	partySize, _ := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("partySize")))
	return reservationPayload{
		Name:            r.PostForm.Get("name"),
		PartySize:       partySize,
		Date:            r.PostForm.Get("date"),
		Time:            r.PostForm.Get("time"),
		Phone:           r.PostForm.Get("phone"),
		SpecialRequests: r.PostForm.Get("specialRequests"),
	}, nil
}

// mergeFieldErrors prefers extra over base for the same field
func mergeFieldErrors(base, extra entities.FieldErrors) entities.FieldErrors {
	if len(extra) == 0 {
		return base
	}
	merged := make(entities.FieldErrors, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
