package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/port"
	"billvox/internal/voice"
)

// VoiceService owns the live voice billing sessions. Sessions are in-memory;
// one business can run several concurrently (multiple counters).
type VoiceService interface {
	StartSession(ctx context.Context, businessID, userID uuid.UUID) (*voice.Session, error)
	GetSession(sessionID uuid.UUID) (*voice.Session, error)
	FinalizeSession(ctx context.Context, sessionID uuid.UUID) (*domain.Invoice, error)
	EndSession(sessionID uuid.UUID)
}

type voiceService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*voice.Session

	products    port.ProductRepository
	corrections port.CorrectionStore
	customers   port.CustomerRepository
	remote      port.RemoteIntentParser
	billing     BillingService
	locale      string
}

// NewVoiceService creates a new VoiceService implementation. remote may be
// nil, which keeps every session purely on the local cascade.
func NewVoiceService(
	products port.ProductRepository,
	corrections port.CorrectionStore,
	customers port.CustomerRepository,
	remote port.RemoteIntentParser,
	billing BillingService,
	locale string,
) VoiceService {
	return &voiceService{
		sessions:    make(map[uuid.UUID]*voice.Session),
		products:    products,
		corrections: corrections,
		customers:   customers,
		remote:      remote,
		billing:     billing,
		locale:      locale,
	}
}

// StartSession snapshots the catalog and correction log, then opens a session
// over them. The snapshot is fixed for the session's lifetime.
func (s *voiceService) StartSession(ctx context.Context, businessID, userID uuid.UUID) (*voice.Session, error) {
	inventory, err := s.products.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("voice.StartSession: %w", err)
	}
	corrections, err := s.corrections.List(ctx, businessID)
	if err != nil {
		log.Printf("service.Voice: listing corrections: %v", err)
		corrections = nil
	}

	session := voice.NewSession(voice.Config{
		BusinessID:      businessID,
		UserID:          userID,
		Inventory:       inventory,
		Corrections:     corrections,
		Remote:          s.remote,
		CorrectionStore: s.corrections,
		Customers:       s.customers,
		Locale:          s.locale,
	})
	session.StartListening()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

func (s *voiceService) GetSession(sessionID uuid.UUID) (*voice.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// FinalizeSession hands the session snapshot to billing and resets the
// session on success so the counter can start the next bill immediately.
func (s *voiceService) FinalizeSession(ctx context.Context, sessionID uuid.UUID) (*domain.Invoice, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	lines, settings, customer := session.Snapshot()
	invoice, err := s.billing.Finalize(ctx, FinalizeInput{
		BusinessID: session.BusinessID,
		UserID:     session.UserID,
		Lines:      lines,
		Settings:   settings,
		Customer:   customer,
	})
	if err != nil {
		return nil, err
	}

	session.Reset()
	session.StartListening()
	return invoice, nil
}

func (s *voiceService) EndSession(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
