package application

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/pkg/domain"
)

// AuditService records store mutations in a hash-chained history.
type AuditService struct {
	log    domain.AuditLog
	store  *ResponseStore
	actor  string
	logger *zap.Logger
}

func NewAuditService(log domain.AuditLog, store *ResponseStore, actor string, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{log: log, store: store, actor: actor, logger: logger}
}

// Attach starts recording and returns a function that stops it.
// Loads are not recorded; they do not change the responses.
func (s *AuditService) Attach() func() {
	return s.store.Subscribe(s.record)
}

func (s *AuditService) record(ev ChangeEvent) {
	event := &domain.Event{Actor: s.actor}
	switch ev.Kind {
	case ChangeResponse:
		event.Action = domain.ActionResponseSet
		event.Metadata = map[string]any{
			"item":   ev.ItemCode,
			"role":   string(ev.Role),
			"choice": string(s.store.GetResponse(ev.ItemCode, ev.Role)),
		}
	case ChangeRole:
		event.Action = domain.ActionRoleSet
		event.Metadata = map[string]any{"role": string(ev.Role)}
	case ChangeCommit:
		if len(ev.Sections) == 0 {
			return
		}
		event.Action = domain.ActionSectionsCommit
		event.Metadata = map[string]any{"sections": ev.Sections}
	case ChangeReset:
		event.Action = domain.ActionResponsesReset
	default:
		return
	}

	if err := s.log.Append(event); err != nil {
		s.logger.Warn("History append error", zap.String("action", event.Action), zap.Error(err))
		return
	}
	s.logger.Debug("History recorded", zap.String("action", event.Action), zap.String("id", event.ID))
}

// Timeline returns the recorded events, oldest first.
func (s *AuditService) Timeline() ([]*domain.Event, error) {
	return s.log.LoadAll()
}

// VerifyIntegrity walks the hash chain and reports every broken link.
func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, err := s.log.LoadAll()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""

	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch. History chain broken.", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Content hash mismatch. Possible tampering.", i, e.ID))
		}
		lastHash = e.Hash
	}

	return violations, nil
}
