package services

import (
	"context"
	"math"

	"prcontacts-backend/models"
	"prcontacts-backend/repository"
)

// Paginate runs the predicate against the store and wraps one page of results in the envelope
func Paginate(ctx context.Context, repo repository.ContactRepositoryInterface, predicate models.ContactPredicate, req models.PageRequest) (*models.ContactPage, error) {
	if req.Page < 1 {
		return nil, models.NewValidationError("page", "page must be at least 1")
	}
	if req.Limit <= 0 {
		return nil, models.NewValidationError("limit", "limit must be positive")
	}
	if req.Sort.Field == "" {
		req.Sort = models.DefaultSort
	}

	skip, ok := req.Skip()
	if !ok {
		// the page starts past any possible match; only the total is needed
		_, total, err := repo.Query(ctx, predicate, req.Sort, 0, 0)
		if err != nil {
			return nil, err
		}
		return buildPage(nil, total, req), nil
	}

	docs, total, err := repo.Query(ctx, predicate, req.Sort, skip, req.Limit)
	if err != nil {
		return nil, err
	}
	return buildPage(docs, total, req), nil
}

func buildPage(docs []*models.Contact, total int, req models.PageRequest) *models.ContactPage {
	if docs == nil {
		docs = []*models.Contact{}
	}

	totalPages := total / req.Limit
	if total%req.Limit != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	// saturates when the offset does not fit in an int
	counter := math.MaxInt
	if skip, ok := req.Skip(); ok {
		counter = skip + 1
	}

	page := &models.ContactPage{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         req.Limit,
		Page:          req.Page,
		TotalPages:    totalPages,
		PagingCounter: counter,
		HasPrevPage:   req.Page > 1,
		HasNextPage:   req.Page < totalPages,
	}
	if page.HasPrevPage {
		prev := req.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := req.Page + 1
		page.NextPage = &next
	}
	return page
}
