package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/logging"
)

// errLostConversionRace means another request flipped the lead between our read
// and our conditional update.
var errLostConversionRace = errors.New("lead was converted concurrently")

type ConvertLeadUseCase struct {
	LeadRepo        entity.LeadRepositoryInterface
	AccountRepo     entity.AccountRepositoryInterface
	ContactRepo     entity.ContactRepositoryInterface
	OpportunityRepo entity.OpportunityRepositoryInterface
	Outbox          entity.OutboxRepositoryInterface
	Tx              TxManager
	SearchCache     AccountSearchCache
	Logger          logrus.FieldLogger
	Now             func() time.Time
}

func NewConvertLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	accountRepo entity.AccountRepositoryInterface,
	contactRepo entity.ContactRepositoryInterface,
	opportunityRepo entity.OpportunityRepositoryInterface,
	outbox entity.OutboxRepositoryInterface,
	tx TxManager,
	searchCache AccountSearchCache,
	logger logrus.FieldLogger,
) *ConvertLeadUseCase {
	if tx == nil {
		tx = NoTx
	}
	return &ConvertLeadUseCase{
		LeadRepo:        leadRepo,
		AccountRepo:     accountRepo,
		ContactRepo:     contactRepo,
		OpportunityRepo: opportunityRepo,
		Outbox:          outbox,
		Tx:              tx,
		SearchCache:     searchCache,
		Logger:          logging.OrDiscard(logger),
		Now:             time.Now,
	}
}

// Execute converts a lead into a Contact, a new or existing Account and, optionally,
// an Opportunity. Every write happens in one transaction and the lead flips with a
// conditional update, so a lead converts at most once and a failure leaves nothing behind.
func (uc *ConvertLeadUseCase) Execute(ctx context.Context, opts ConvertLeadOptions) (*ConvertLeadOutput, error) {
	if errs := ValidateConvertLeadOptions(opts); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	log := uc.Logger.WithField("lead_id", opts.LeadID)

	// 1. Precondition: the lead exists and is still unconverted
	lead, err := uc.LeadRepo.FindByID(ctx, opts.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, newNotFoundError(err)
		}
		return nil, newDatabaseError("failed to load lead", err)
	}
	if lead.IsConverted {
		return nil, &AlreadyConvertedError{LeadID: lead.ID, ContactID: lead.ConvertedContactID}
	}

	now := uc.Now().UTC()
	var out *ConvertLeadOutput
	// set when the account's search row changes: new account or new primary contact
	var searchStale bool

	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// 2. Account: create a new one or link the existing one
		account, created, err := uc.resolveAccount(ctx, opts)
		if err != nil {
			return err
		}

		// 3. Contact, always new
		contact := buildContact(lead, opts.ContactData, account.ID, now)
		if err := uc.ContactRepo.Create(ctx, contact); err != nil {
			return fmt.Errorf("create contact: %w", err)
		}
		if account.PrimaryContactID == "" {
			if err := uc.AccountRepo.SetPrimaryContactIfEmpty(ctx, account.ID, contact.ID); err != nil {
				return fmt.Errorf("set primary contact: %w", err)
			}
			searchStale = true
		}

		// 4. Opportunity, only when asked for
		var opportunityID string
		if opts.CreateOpportunity {
			opp := buildOpportunity(lead, opts.OpportunityData, account.ID, contact.ID, now)
			if err := uc.OpportunityRepo.Create(ctx, opp); err != nil {
				return fmt.Errorf("create opportunity: %w", err)
			}
			opportunityID = opp.ID
		}

		// 5. Flip the lead; zero rows means someone else got there first
		flipped, err := uc.LeadRepo.MarkConverted(ctx, entity.LeadConversion{
			LeadID:        lead.ID,
			ContactID:     contact.ID,
			AccountID:     account.ID,
			OpportunityID: opportunityID,
			ConvertedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("mark lead converted: %w", err)
		}
		if !flipped {
			return errLostConversionRace
		}

		if uc.Outbox != nil {
			event, err := entity.NewOutboxEvent(entity.EventLeadConverted, lead.ID, entity.LeadConvertedEvent{
				LeadID:        lead.ID,
				ContactID:     contact.ID,
				AccountID:     account.ID,
				AccountName:   account.Name,
				AccountIsNew:  created,
				OpportunityID: opportunityID,
				ContactName:   contact.FirstName + " " + contact.LastName,
				ContactEmail:  contact.Email,
				LeadSource:    lead.LeadSource,
				ConvertedAt:   now,
			})
			if err != nil {
				return fmt.Errorf("build outbox event: %w", err)
			}
			if err := uc.Outbox.Enqueue(ctx, event); err != nil {
				return fmt.Errorf("enqueue outbox event: %w", err)
			}
		}

		out = &ConvertLeadOutput{
			Success:        true,
			ContactID:      contact.ID,
			AccountID:      account.ID,
			AccountCreated: created,
			OpportunityID:  opportunityID,
		}
		return nil
	})
	if err != nil {
		return nil, uc.translateTxError(ctx, log, lead.ID, err)
	}

	if searchStale && uc.SearchCache != nil {
		if err := uc.SearchCache.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("account search cache invalidation failed")
		}
	}

	log.WithFields(logrus.Fields{
		"contact_id":      out.ContactID,
		"account_id":      out.AccountID,
		"account_created": out.AccountCreated,
		"opportunity_id":  out.OpportunityID,
	}).Info("lead converted")

	return out, nil
}

func (uc *ConvertLeadUseCase) resolveAccount(ctx context.Context, opts ConvertLeadOptions) (*entity.Account, bool, error) {
	if opts.AccountOption == AccountOptionExisting {
		account, err := uc.AccountRepo.FindByID(ctx, opts.ExistingAccountID)
		if err != nil {
			return nil, false, fmt.Errorf("load account %s: %w", opts.ExistingAccountID, err)
		}
		return account, false, nil
	}

	account := buildAccount(opts.AccountData)
	if err := uc.AccountRepo.Create(ctx, account); err != nil {
		return nil, false, fmt.Errorf("create account: %w", err)
	}
	return account, true, nil
}

func (uc *ConvertLeadUseCase) translateTxError(ctx context.Context, log logrus.FieldLogger, leadID string, err error) error {
	switch {
	case errors.Is(err, errLostConversionRace):
		log.Warn("conversion lost a race, rolled back")
		conflict := &AlreadyConvertedError{LeadID: leadID}
		if current, ferr := uc.LeadRepo.FindByID(ctx, leadID); ferr == nil {
			conflict.ContactID = current.ConvertedContactID
		}
		return conflict
	case errors.Is(err, entity.ErrAccountNotFound):
		return newNotFoundError(entity.ErrAccountNotFound)
	case errors.Is(err, entity.ErrDuplicate):
		return &DomainError{Code: CodeDuplicate, Message: err.Error(), Err: err}
	}

	log.WithError(err).Error("lead conversion rolled back")
	return newDatabaseError("lead conversion failed", err)
}
