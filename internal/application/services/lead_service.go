package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

// MsgIncompleteLead is returned when a submission lacks name, phone or consent
const MsgIncompleteLead = "Datos incompletos"

const notifyTimeout = 15 * time.Second

// LeadService accepts contact submissions and fans them out
type LeadService struct {
	repo      repositories.LeadRepository
	notifiers []providers.LeadNotifier
	bus       providers.LeadEventBus
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewLeadService creates a new lead service. bus may be nil.
func NewLeadService(repo repositories.LeadRepository, notifiers []providers.LeadNotifier, bus providers.LeadEventBus, metrics *observability.Metrics) *LeadService {
	return &LeadService{
		repo:      repo,
		notifiers: notifiers,
		bus:       bus,
		metrics:   metrics,
		logger:    observability.Component("lead_service"),
	}
}

// Submit validates, stores and notifies a lead. Storage and channel
// failures are logged; an error is returned only when the lead was neither
// stored nor delivered anywhere.
func (s *LeadService) Submit(ctx context.Context, lead *entities.Lead) (entities.LeadDelivery, error) {
	lead.FullName = strings.TrimSpace(lead.FullName)
	lead.Phone = strings.TrimSpace(lead.Phone)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.ZipCode = strings.TrimSpace(lead.ZipCode)
	if lead.FullName == "" || lead.Phone == "" || !lead.PrivacyAccepted {
		return entities.LeadDelivery{}, apperrors.NewValidationError(MsgIncompleteLead)
	}

	ctx, span := observability.StartSpan(ctx, "lead.submit")
	defer span.End()

	delivery := entities.LeadDelivery{Channels: make(map[string]bool, len(s.notifiers))}

	if err := s.repo.Create(ctx, lead); err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to persist lead")
	} else {
		delivery.Persisted = true
		delivery.LeadID = lead.ID
	}

	// Notifications outlive a client that hangs up early.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, n := range s.notifiers {
		wg.Add(1)
		go func(n providers.LeadNotifier) {
			defer wg.Done()
			err := n.NotifyLead(notifyCtx, lead)
			if err != nil {
				s.logger.Error().Err(err).Str("channel", n.Channel()).Msg("lead notification failed")
			}
			observability.RecordLeadNotification(notifyCtx, s.metrics, n.Channel(), err == nil)

			mu.Lock()
			delivery.Channels[n.Channel()] = err == nil
			mu.Unlock()
		}(n)
	}
	wg.Wait()

	s.publish(notifyCtx, lead, delivery)

	if !delivery.Delivered() {
		return delivery, apperrors.NewExternalError("lead could not be stored or delivered", nil)
	}
	return delivery, nil
}

func (s *LeadService) publish(ctx context.Context, lead *entities.Lead, delivery entities.LeadDelivery) {
	if s.bus == nil {
		return
	}
	event := &entities.LeadEvent{
		ID:        uuid.New().String(),
		Lead:      *lead,
		Delivery:  delivery,
		Timestamp: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, providers.EventChannelLeads, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish lead event")
	}
}

// Subscribe streams accepted leads until ctx is done
func (s *LeadService) Subscribe(ctx context.Context) (<-chan *entities.LeadEvent, error) {
	if s.bus == nil {
		return nil, apperrors.NewInternalError("lead event bus not configured", nil)
	}
	return s.bus.Subscribe(ctx, providers.EventChannelLeads)
}
