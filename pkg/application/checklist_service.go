package application

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

// ChecklistService binds the read-only definition to the response store for one session.
type ChecklistService struct {
	source domain.DefinitionSource
	store  *ResponseStore
	logger *zap.Logger
	brand  string

	once    sync.Once
	mu      sync.RWMutex
	def     *checklist.Definition
	loadErr error
}

func NewChecklistService(source domain.DefinitionSource, store *ResponseStore, brand string, logger *zap.Logger) *ChecklistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if brand == "" {
		brand = report.DefaultBrand
	}
	return &ChecklistService{source: source, store: store, brand: brand, logger: logger}
}

// LoadDefinition loads the definition once. A failure is terminal for the session:
// later calls return the same error without trying again.
func (s *ChecklistService) LoadDefinition(ctx context.Context) (*checklist.Definition, error) {
	s.once.Do(func() {
		def, err := s.load(ctx)
		s.mu.Lock()
		s.def, s.loadErr = def, err
		s.mu.Unlock()
	})
	return s.Definition()
}

func (s *ChecklistService) load(ctx context.Context) (*checklist.Definition, error) {
	if s.source == nil {
		return nil, domain.ErrNoDefinition
	}
	def, err := s.source.LoadDefinition(ctx)
	if err != nil {
		s.logger.Error("Failed to load checklist JSON", zap.String("location", s.source.Location()), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Checklist loaded",
		zap.String("location", s.source.Location()),
		zap.Int("sections", len(def.Sections)),
		zap.Int("items", def.ItemCount()))
	return def, nil
}

// Definition returns the loaded definition, or ErrNoDefinition before a successful load.
func (s *ChecklistService) Definition() (*checklist.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.def == nil {
		if s.loadErr != nil {
			return nil, s.loadErr
		}
		return nil, domain.ErrNoDefinition
	}
	return s.def, nil
}

// Store returns the session's response store.
func (s *ChecklistService) Store() *ResponseStore {
	return s.store
}

// Brand returns the name that prefixes report titles.
func (s *ChecklistService) Brand() string {
	return s.brand
}

// Summary evaluates the current responses.
func (s *ChecklistService) Summary() (scoring.Summary, error) {
	def, err := s.Definition()
	if err != nil {
		return scoring.Summary{}, err
	}
	return scoring.Evaluate(def, s.store.Snapshot()), nil
}

// Answer records choice for the active role.
func (s *ChecklistService) Answer(itemCode, choice string) error {
	return s.AnswerAs(itemCode, s.store.Role(), choice)
}

// AnswerAs records choice for role after checking the item exists and the choice is offered to role.
func (s *ChecklistService) AnswerAs(itemCode string, role response.Role, choice string) error {
	def, err := s.Definition()
	if err != nil {
		return err
	}
	if _, ok := def.FindItem(itemCode); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownItem, itemCode)
	}
	role = response.NormalizeRole(string(role))
	c, err := response.ParseChoice(choice, role)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidChoice, err)
	}
	s.store.SetResponse(itemCode, role, c)
	return nil
}

// SetRole switches the active role.
func (s *ChecklistService) SetRole(role string) response.Role {
	return s.store.SetRole(role)
}

// Commit marks the given sections as committed.
func (s *ChecklistService) Commit(sectionIDs ...string) error {
	def, err := s.Definition()
	if err != nil {
		return err
	}
	for _, id := range sectionIDs {
		if _, ok := def.FindSection(id); !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownSection, id)
		}
	}
	s.store.CommitSections(sectionIDs...)
	return nil
}

// CommitAll marks every section as committed and returns their ids.
func (s *ChecklistService) CommitAll() ([]string, error) {
	def, err := s.Definition()
	if err != nil {
		return nil, err
	}
	ids := def.SectionIDs()
	s.store.CommitSections(ids...)
	return ids, nil
}

// Reset clears every response and commit flag.
func (s *ChecklistService) Reset() {
	s.store.Clear()
}

// Report projects the current responses for role.
func (s *ChecklistService) Report(role response.Role) (*report.Report, error) {
	def, err := s.Definition()
	if err != nil {
		return nil, err
	}
	return report.Build(def, s.store.Snapshot(), role, s.brand), nil
}

// SectionView is a section with the responses a presentation layer needs to render it.
type SectionView struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Title     string     `json:"title"`
	Committed bool       `json:"committed"`
	Items     []ItemView `json:"items"`
}

// ItemView is one item with both roles' answers and the choices offered to the active role.
type ItemView struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Subitems    []string          `json:"subitems,omitempty"`
	Note        string            `json:"note,omitempty"`
	Author      response.Choice   `json:"author"`
	Reviewer    response.Choice   `json:"reviewer"`
	Current     response.Choice   `json:"current"`
	Choices     []response.Choice `json:"choices"`
	Points      float64           `json:"points"`
}

// Sections returns the definition joined with the current responses, in definition order.
func (s *ChecklistService) Sections() ([]SectionView, error) {
	def, err := s.Definition()
	if err != nil {
		return nil, err
	}
	state := s.store.Snapshot()
	role := state.CurrentRole()
	choices := response.ChoicesFor(role)

	views := make([]SectionView, 0, len(def.Sections))
	for _, section := range def.Sections {
		sv := SectionView{
			ID:        section.ID,
			Label:     section.Label,
			Title:     section.Title(),
			Committed: state.IsCommitted(section.ID),
			Items:     make([]ItemView, 0, len(section.Items)),
		}
		for _, item := range section.Items {
			rec := state.Record(item.Code)
			sv.Items = append(sv.Items, ItemView{
				Code:        item.Code,
				Description: item.Description,
				Priority:    item.Priority.String(),
				Subitems:    item.Subitems,
				Note:        item.Note,
				Author:      rec.Author,
				Reviewer:    rec.Reviewer,
				Current:     rec.Get(role),
				Choices:     choices,
				Points:      scoring.ScoreOf(item.Priority, rec.Reviewer),
			})
		}
		views = append(views, sv)
	}
	return views, nil
}
