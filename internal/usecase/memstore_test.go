package usecase

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/xavierca1/doula-crm/internal/entity"
)

// memStore is a transactional in-memory CRM used to check what a conversion
// leaves behind. Writes made inside WithinTx are undone when fn fails.
type memStore struct {
	leads         map[string]entity.Lead
	accounts      map[string]entity.Account
	contacts      map[string]entity.Contact
	opportunities map[string]entity.Opportunity
	outbox        []entity.OutboxEvent

	dirtyLeads  map[string]bool
	searchCalls int

	failContactCreate error
	failOutbox        error
	onMarkConverted   func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{
		leads:         map[string]entity.Lead{},
		accounts:      map[string]entity.Account{},
		contacts:      map[string]entity.Contact{},
		opportunities: map[string]entity.Opportunity{},
		dirtyLeads:    map[string]bool{},
	}
}

func (s *memStore) useCase() *ConvertLeadUseCase {
	return NewConvertLeadUseCase(
		memLeads{s}, memAccounts{s}, memContacts{s}, memOpportunities{s}, memOutbox{s},
		memTx{s}, nil, nil,
	)
}

type memTx struct{ s *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	leads := maps.Clone(t.s.leads)
	accounts := maps.Clone(t.s.accounts)
	contacts := maps.Clone(t.s.contacts)
	opportunities := maps.Clone(t.s.opportunities)
	outbox := slices.Clone(t.s.outbox)
	t.s.dirtyLeads = map[string]bool{}

	if err := fn(ctx); err != nil {
		t.s.accounts = accounts
		t.s.contacts = contacts
		t.s.opportunities = opportunities
		t.s.outbox = outbox
		for id := range t.s.dirtyLeads {
			t.s.leads[id] = leads[id]
		}
		return err
	}
	return nil
}

type memLeads struct{ s *memStore }

func (r memLeads) Upsert(ctx context.Context, lead *entity.Lead) error {
	r.s.leads[lead.ID] = *lead
	return nil
}

func (r memLeads) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	lead, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &lead, nil
}

func (r memLeads) MarkConverted(ctx context.Context, c entity.LeadConversion) (bool, error) {
	if r.s.onMarkConverted != nil {
		r.s.onMarkConverted(r.s)
	}
	lead, ok := r.s.leads[c.LeadID]
	if !ok || lead.IsConverted {
		return false, nil
	}
	at := c.ConvertedAt
	lead.IsConverted = true
	lead.Status = entity.LeadStatusConverted
	lead.ConvertedAt = &at
	lead.ConvertedContactID = c.ContactID
	lead.ConvertedAccountID = c.AccountID
	lead.ConvertedOpportunityID = c.OpportunityID
	r.s.leads[c.LeadID] = lead
	r.s.dirtyLeads[c.LeadID] = true
	return true, nil
}

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(ctx context.Context, a *entity.Account) error {
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, entity.ErrAccountNotFound
	}
	return &a, nil
}

func (r memAccounts) SearchByName(ctx context.Context, term string, limit int) ([]entity.AccountSearchResult, error) {
	r.s.searchCalls++
	var out []entity.AccountSearchResult
	for _, a := range r.s.accounts {
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(term)) {
			out = append(out, entity.AccountSearchResult{ID: a.ID, Name: a.Name, Type: a.Type, Status: a.Status})
		}
	}
	slices.SortFunc(out, func(x, y entity.AccountSearchResult) int { return strings.Compare(x.Name, y.Name) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAccounts) SetPrimaryContactIfEmpty(ctx context.Context, accountID, contactID string) error {
	a, ok := r.s.accounts[accountID]
	if !ok {
		return entity.ErrAccountNotFound
	}
	if a.PrimaryContactID == "" {
		a.PrimaryContactID = contactID
		r.s.accounts[accountID] = a
	}
	return nil
}

type memContacts struct{ s *memStore }

func (r memContacts) Create(ctx context.Context, c *entity.Contact) error {
	if r.s.failContactCreate != nil {
		return r.s.failContactCreate
	}
	if _, ok := r.s.accounts[c.AccountID]; !ok {
		return entity.ErrInvalidReference
	}
	r.s.contacts[c.ID] = *c
	return nil
}

type memOpportunities struct{ s *memStore }

func (r memOpportunities) Create(ctx context.Context, o *entity.Opportunity) error {
	r.s.opportunities[o.ID] = *o
	return nil
}

type memOutbox struct{ s *memStore }

func (r memOutbox) Enqueue(ctx context.Context, e *entity.OutboxEvent) error {
	if r.s.failOutbox != nil {
		return r.s.failOutbox
	}
	r.s.outbox = append(r.s.outbox, *e)
	return nil
}

func (r memOutbox) ClaimPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (r memOutbox) MarkPublished(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r memOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}
