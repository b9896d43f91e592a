package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/logging"
)

const SearchLimit = 10

// Where a search result came from, reported through SearchAccountsUseCase.RecordSource.
const (
	SearchSourceEmpty = "empty"
	SearchSourceCache = "cache"
	SearchSourceStore = "store"
)

type SearchAccountsUseCase struct {
	Repo         entity.AccountRepositoryInterface
	Cache        AccountSearchCache
	Logger       logrus.FieldLogger
	RecordSource func(source string)
}

// NewSearchAccountsUseCase builds the account resolver. cache may be nil.
func NewSearchAccountsUseCase(repo entity.AccountRepositoryInterface, cache AccountSearchCache, logger logrus.FieldLogger) *SearchAccountsUseCase {
	return &SearchAccountsUseCase{
		Repo:         repo,
		Cache:        cache,
		Logger:       logging.OrDiscard(logger),
		RecordSource: func(string) {},
	}
}

// Execute finds existing accounts a converting lead can be linked to. A blank term
// short-circuits to an empty result without touching the store.
func (uc *SearchAccountsUseCase) Execute(ctx context.Context, term string) ([]entity.AccountSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		uc.RecordSource(SearchSourceEmpty)
		return []entity.AccountSearchResult{}, nil
	}

	if uc.Cache != nil {
		cached, ok, err := uc.Cache.Get(ctx, term)
		if err != nil {
			uc.Logger.WithError(err).Warn("account search cache read failed")
		} else if ok {
			uc.RecordSource(SearchSourceCache)
			return cached, nil
		}
	}

	results, err := uc.Repo.SearchByName(ctx, term, SearchLimit)
	if err != nil {
		return nil, newDatabaseError("account search failed", err)
	}
	if results == nil {
		results = []entity.AccountSearchResult{}
	}
	uc.RecordSource(SearchSourceStore)

	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, term, results); err != nil {
			uc.Logger.WithError(err).Warn("account search cache write failed")
		}
	}
	return results, nil
}
