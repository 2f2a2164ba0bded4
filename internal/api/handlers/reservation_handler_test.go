package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reservenow/backend/internal/api/handlers"
	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/providers"
)

const validForm = `{"name":"Ali","partySize":2,"date":"2026-10-20","time":"7:30 PM","phone":"0123456789","specialRequests":""}`

func newReservationMux(h *handlers.ReservationHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reservations/time-slots", h.TimeSlots)
	mux.HandleFunc("POST /api/restaurants/{id}/reservations/preview", h.PreviewReservation)
	mux.HandleFunc("POST /api/restaurants/{id}/reservations", h.SubmitReservation)
	return mux
}

func post(t *testing.T, mux http.Handler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type submissionResponse struct {
	SubmissionID string `json:"submissionId"`
	URL          string `json:"url"`
	Message      string `json:"message"`
	Opened       string `json:"opened"`
}

func TestReservationHandler_Submit_JSONClient(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	w := post(t, mux, "/api/restaurants/nasi-kandar-corner/reservations", validForm, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp submissionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "new", resp.Opened)
	assert.NotEmpty(t, resp.SubmissionID)

	link, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", link.Host)
	assert.Equal(t, "/60123456789", link.Path)
	assert.Contains(t, link.Query().Get("text"), "Party Size: 2 people")
	assert.Contains(t, link.Query().Get("text"), "None")
}

func TestReservationHandler_Submit_BrowserFormRedirects(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	form := url.Values{
		"name":      {"Ali"},
		"partySize": {"2"},
		"date":      {"2026-10-20"},
		"time":      {"7:30 PM"},
		"phone":     {"0123456789"},
	}
	w := post(t, mux, "/api/restaurants/sushi-zen/reservations", form.Encode(), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "text/html,application/xhtml+xml",
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://wa.me/60129876543?text="))
}

func TestReservationHandler_Submit_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	body := `{"name":"A","partySize":25,"date":"20/10/2026","time":"7:30 PM","phone":"0203456789"}`
	w := post(t, mux, "/api/restaurants/nasi-kandar-corner/reservations", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Name must be at least 2 characters", resp.Fields["name"])
	assert.Equal(t, "Maximum 20 people", resp.Fields["partySize"])
	assert.Equal(t, "Date must look like 2026-01-31", resp.Fields["date"])
	assert.Equal(t, "Please enter a valid Malaysian mobile number", resp.Fields["phone"])
}

func TestReservationHandler_Submit_BadDateAlone(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	body := strings.Replace(validForm, "2026-10-20", "tomorrow", 1)
	w := post(t, mux, "/api/restaurants/nasi-kandar-corner/reservations", body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReservationHandler_Submit_UnknownRestaurant(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	w := post(t, mux, "/api/restaurants/nope/reservations", validForm, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationHandler_Submit_BadPayload(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	assert.Equal(t, http.StatusBadRequest, post(t, mux, "/api/restaurants/sushi-zen/reservations", `{"name":`, nil).Code)

	huge := `{"specialRequests":"` + strings.Repeat("x", 20<<10) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(t, mux, "/api/restaurants/sushi-zen/reservations", huge, nil).Code)
}

func TestReservationHandler_Submit_RateLimit(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	// invalid forms do not use up the allowance
	for i := 0; i < 3; i++ {
		w := post(t, mux, "/api/restaurants/sushi-zen/reservations", `{"name":""}`, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}

	for i := 0; i < 5; i++ {
		w := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil)
		require.Equal(t, http.StatusOK, w.Code, "submission %d", i)
	}

	w := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	other := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, map[string]string{"X-Forwarded-For": "10.9.9.9"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestReservationHandler_Submit_ConcurrentRequestsRespectLimit(t *testing.T) {
	f := newFixture(t)
	slow := &slowSubmitter{ReservationSubmitter: f.reservations, delay: 20 * time.Millisecond}
	mux := newReservationMux(handlers.NewReservationHandler(slow, nil, kualaLumpur, nil))

	var accepted, limited atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil)
			switch w.Code {
			case http.StatusOK:
				accepted.Add(1)
			case http.StatusTooManyRequests:
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, accepted.Load())
	assert.EqualValues(t, 25, limited.Load())
}

type slowSubmitter struct {
	handlers.ReservationSubmitter
	delay time.Duration
}

func (s *slowSubmitter) Submit(ctx context.Context, restaurantID string, req *entities.ReservationRequest, opener providers.LinkOpener) (*entities.Submission, entities.ValidationResult, error) {
	time.Sleep(s.delay)
	return s.ReservationSubmitter.Submit(ctx, restaurantID, req, opener)
}

type MockRateCounter struct {
	mock.Mock
}

func (m *MockRateCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockRateCounter) Decrement(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestReservationHandler_Submit_SharedRateLimit(t *testing.T) {
	f := newFixture(t)
	key := "reservation:rate:10.0.0.1"

	t.Run("successful submission keeps its slot", func(t *testing.T) {
		counter := new(MockRateCounter)
		counter.On("Increment", mock.Anything, key, 10*time.Minute).Return(int64(1), 10*time.Minute, nil).Once()

		mux := newReservationMux(handlers.NewReservationHandler(f.reservations, counter, kualaLumpur, nil))
		w := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil)

		require.Equal(t, http.StatusOK, w.Code)
		counter.AssertExpectations(t)
		counter.AssertNotCalled(t, "Decrement", mock.Anything, mock.Anything)
	})

	t.Run("invalid form gives its slot back", func(t *testing.T) {
		counter := new(MockRateCounter)
		counter.On("Increment", mock.Anything, key, 10*time.Minute).Return(int64(1), 10*time.Minute, nil).Once()
		counter.On("Decrement", mock.Anything, key).Return(nil).Once()

		mux := newReservationMux(handlers.NewReservationHandler(f.reservations, counter, kualaLumpur, nil))
		w := post(t, mux, "/api/restaurants/sushi-zen/reservations", `{"name":""}`, nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		counter.AssertExpectations(t)
	})

	t.Run("blocks once the window is used up", func(t *testing.T) {
		counter := new(MockRateCounter)
		counter.On("Increment", mock.Anything, key, 10*time.Minute).Return(int64(6), 5*time.Minute, nil).Once()
		counter.On("Decrement", mock.Anything, key).Return(nil).Once()

		mux := newReservationMux(handlers.NewReservationHandler(f.reservations, counter, kualaLumpur, nil))
		w := post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.Equal(t, 300, retryAfter)
		counter.AssertExpectations(t)
	})

	t.Run("counter failure falls back to the process limit", func(t *testing.T) {
		counter := new(MockRateCounter)
		counter.On("Increment", mock.Anything, key, 10*time.Minute).Return(int64(0), time.Duration(0), errors.New("connection refused"))

		mux := newReservationMux(handlers.NewReservationHandler(f.reservations, counter, kualaLumpur, nil))
		for i := 0; i < 5; i++ {
			require.Equal(t, http.StatusOK, post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil).Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, post(t, mux, "/api/restaurants/sushi-zen/reservations", validForm, nil).Code)
	})
}

func TestReservationHandler_Preview(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	w := post(t, mux, "/api/restaurants/sushi-zen/reservations/preview", validForm, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["message"], "Restaurant: Sushi Zen")
	assert.Contains(t, resp["message"], "Date: Tuesday, 20 Oct 2026")

	w = post(t, mux, "/api/restaurants/sushi-zen/reservations/preview", `{"name":"Ali"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReservationHandler_TimeSlots(t *testing.T) {
	f := newFixture(t)
	mux := newReservationMux(handlers.NewReservationHandler(f.reservations, nil, kualaLumpur, nil))

	w := do(t, mux, http.MethodGet, "/api/reservations/time-slots")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	slots := resp["timeSlots"]
	require.Len(t, slots, 26)
	assert.Equal(t, "11:00 AM", slots[0])
	assert.Equal(t, "11:30 PM", slots[len(slots)-1])
}
