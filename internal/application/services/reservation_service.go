package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/providers"
	"github.com/reservenow/backend/internal/infrastructure/observability"
)

// DefaultSinkTimeout bounds the reservation log call
const DefaultSinkTimeout = 5 * time.Second

// RestaurantLookup resolves restaurant ids
type RestaurantLookup interface {
	GetByID(id string) (*entities.Restaurant, error)
}

// LinkBuilder builds a messaging deep link for a contact number
type LinkBuilder interface {
	Build(phoneNumber, message string) string
}

// ReservationService turns a reservation form into a messaging deep link.
// The submission is logged to the sink first on a best-effort basis; a sink
// failure is logged and never changes the outcome.
type ReservationService struct {
	restaurants RestaurantLookup
	validator   *ReservationValidator
	messages    *MessageBuilder
	links       LinkBuilder
	sink        providers.SubmissionSink
	sinkTimeout time.Duration
	metrics     *observability.Metrics
	now         func() time.Time
	newID       func() string
}

// ReservationServiceOption configures a ReservationService
type ReservationServiceOption func(*ReservationService)

// WithSink sets the submission log sink
func WithSink(sink providers.SubmissionSink, timeout time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.sink = sink
		if timeout > 0 {
			s.sinkTimeout = timeout
		}
	}
}

// WithMetrics records dispatch metrics
func WithMetrics(metrics *observability.Metrics) ReservationServiceOption {
	return func(s *ReservationService) {
		s.metrics = metrics
	}
}

// WithClock replaces the time source used for log timestamps
func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

// NewReservationService creates a reservation service
func NewReservationService(
	restaurants RestaurantLookup,
	validator *ReservationValidator,
	messages *MessageBuilder,
	links LinkBuilder,
	opts ...ReservationServiceOption,
) *ReservationService {
	s := &ReservationService{
		restaurants: restaurants,
		validator:   validator,
		messages:    messages,
		links:       links,
		sinkTimeout: DefaultSinkTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview validates req and renders the message without sending anything
func (s *ReservationService) Preview(ctx context.Context, restaurantID string, req *entities.ReservationRequest) (string, entities.ValidationResult, error) {
	restaurant, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		return "", entities.ValidationResult{}, err
	}

	result := s.validator.Validate(req)
	if !result.Valid() {
		return "", result, nil
	}
	return s.messages.Build(restaurant, req), result, nil
}

// Submit validates req and, when it passes, dispatches it. An invalid form
// returns its field errors and a nil submission.
func (s *ReservationService) Submit(ctx context.Context, restaurantID string, req *entities.ReservationRequest, opener providers.LinkOpener) (*entities.Submission, entities.ValidationResult, error) {
	restaurant, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		return nil, entities.ValidationResult{}, err
	}

	result := s.validator.Validate(req)
	if !result.Valid() {
		return nil, result, nil
	}

	return s.Dispatch(ctx, restaurant, req, opener), result, nil
}

// Dispatch logs the request to the sink, builds the deep link to the
// restaurant's number and opens it. It always succeeds once the link has
// been handed to opener; whether a message is actually sent is unknowable.
func (s *ReservationService) Dispatch(ctx context.Context, restaurant *entities.Restaurant, req *entities.ReservationRequest, opener providers.LinkOpener) *entities.Submission {
	ctx, span := observability.StartSpan(ctx, "ReservationService.Dispatch")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("restaurant.id", restaurant.ID))

	entry := s.logEntry(restaurant, req)
	s.record(ctx, entry)

	message := s.messages.Build(restaurant, req)
	link := s.links.Build(restaurant.WhatsAppNumber, message)
	mode := providers.OpenLink(ctx, opener, link)

	if s.metrics != nil {
		observability.RecordDispatchMetric(ctx, s.metrics, string(mode))
	}

	observability.LoggerFromContext(ctx).Info().
		Str("submission_id", entry.SubmissionID).
		Str("restaurant_id", restaurant.ID).
		Str("opened", string(mode)).
		Msg("reservation request handed off")

	return &entities.Submission{
		ID:      entry.SubmissionID,
		URL:     link,
		Message: message,
		Opened:  mode,
	}
}

func (s *ReservationService) logEntry(restaurant *entities.Restaurant, req *entities.ReservationRequest) *entities.SubmissionLog {
	special := req.SpecialRequests
	if special == "" {
		special = entities.NoSpecialRequests
	}
	return &entities.SubmissionLog{
		SubmissionID:    s.newID(),
		Timestamp:       s.now().UTC().Format(time.RFC3339Nano),
		RestaurantName:  restaurant.Name,
		RestaurantID:    restaurant.ID,
		CustomerName:    req.Name,
		PartySize:       req.PartySize,
		Date:            FormatReservationDate(req.Date),
		Time:            req.Time,
		Phone:           req.Phone,
		SpecialRequests: special,
		Status:          entities.SubmissionStatusSent,
	}
}

// record calls the sink with its own deadline. The request context is
// detached so a client disconnect does not cut the log short.
func (s *ReservationService) record(ctx context.Context, entry *entities.SubmissionLog) {
	if s.sink == nil {
		return
	}

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sinkTimeout)
	defer cancel()

	if err := s.sink.Record(sinkCtx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("submission_id", entry.SubmissionID).
			Msg("reservation log failed, continuing")
		if s.metrics != nil {
			observability.RecordSinkFailure(ctx, s.metrics)
		}
	}
}
