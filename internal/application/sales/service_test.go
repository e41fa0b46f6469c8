package sales

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truestate/sales/internal/domain"
)

// mockRepo is a minimal Repository for testing the coordinator.
type mockRepo struct {
	findFn  func(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error)
	countFn func(ctx context.Context, filter domain.Filter) (int, error)

	findCalls  atomic.Int32
	countCalls atomic.Int32

	capturedFilter domain.Filter
	capturedSort   domain.Sort
	capturedSkip   int
	capturedLimit  int
}

func (m *mockRepo) FindSales(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int) ([]domain.SaleRecord, error) {
	m.findCalls.Add(1)
	m.capturedFilter = filter
	m.capturedSort = sort
	m.capturedSkip = skip
	m.capturedLimit = limit
	if m.findFn != nil {
		return m.findFn(ctx, filter, sort, skip, limit)
	}
	return nil, nil
}

func (m *mockRepo) CountSales(ctx context.Context, filter domain.Filter) (int, error) {
	m.countCalls.Add(1)
	if m.countFn != nil {
		return m.countFn(ctx, filter)
	}
	return 0, nil
}

func records(n int) []domain.SaleRecord {
	out := make([]domain.SaleRecord, n)
	for i := range out {
		out[i] = domain.SaleRecord{ID: string(rune('a' + i))}
	}
	return out
}

func TestQuerySales_InvalidAgeRangeSkipsStore(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, Config{})

	page, err := svc.Query(context.Background(), Params{
		ParamAgeMin:            "40",
		ParamAgeMax:            "20",
		ParamPage:              "3",
		ParamPageSize:          "15",
		ParamSearch:            "ravi",
		ParamProductCategories: "Electronics",
	})
	require.NoError(t, err)

	assert.True(t, page.InvalidRange)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page, "page resets to 1")
	assert.Equal(t, 15, page.PageSize)
	assert.Zero(t, page.TotalItems)
	assert.Zero(t, page.TotalPages)
	assert.False(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)

	assert.Zero(t, repo.findCalls.Load(), "store must not be queried")
	assert.Zero(t, repo.countCalls.Load(), "store must not be queried")
}

func TestQuerySales_EqualAgeBoundsQueryStore(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, Config{})

	page, err := svc.Query(context.Background(), Params{ParamAgeMin: "30", ParamAgeMax: "30"})
	require.NoError(t, err)

	assert.False(t, page.InvalidRange)
	assert.Equal(t, int32(1), repo.findCalls.Load())
	assert.Equal(t, int32(1), repo.countCalls.Load())
}

func TestQuerySales_EnvelopeArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageSize  int
		total     int
		returned  int
		wantPages int
		wantNext  bool
		wantPrev  bool
		wantSkip  int
	}{
		{"no results", 1, 10, 0, 0, 0, false, false, 0},
		{"single partial page", 1, 10, 7, 7, 1, false, false, 0},
		{"exact multiple", 2, 10, 20, 10, 2, false, true, 10},
		{"first of many", 1, 10, 12, 10, 2, true, false, 0},
		{"last partial", 2, 10, 12, 2, 2, false, true, 10},
		{"middle page", 3, 5, 23, 5, 5, true, true, 10},
		{"beyond the end", 9, 10, 12, 0, 2, false, true, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				findFn: func(context.Context, domain.Filter, domain.Sort, int, int) ([]domain.SaleRecord, error) {
					return records(tt.returned), nil
				},
				countFn: func(context.Context, domain.Filter) (int, error) {
					return tt.total, nil
				},
			}
			svc := NewService(repo, Config{})

			page, err := svc.QuerySales(context.Background(), domain.QueryOptions{
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			require.NoError(t, err)

			assert.Len(t, page.Items, tt.returned)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, tt.pageSize, page.PageSize)
			assert.Equal(t, tt.total, page.TotalItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantNext, page.HasNextPage)
			assert.Equal(t, tt.wantPrev, page.HasPrevPage)
			assert.False(t, page.InvalidRange)

			assert.Equal(t, tt.wantSkip, repo.capturedSkip)
			assert.Equal(t, tt.pageSize, repo.capturedLimit)
		})
	}
}

func TestQuerySales_NilItemsBecomeEmptySlice(t *testing.T) {
	svc := NewService(&mockRepo{}, Config{})

	page, err := svc.QuerySales(context.Background(), domain.QueryOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestQuerySales_PassesCompiledFilterAndSort(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, Config{})

	_, err := svc.Query(context.Background(), Params{
		ParamRegions:   "North,South",
		ParamSortBy:    "bogus",
		ParamSortOrder: "asc",
	})
	require.NoError(t, err)

	require.Len(t, repo.capturedFilter.Clauses, 1)
	assert.Equal(t, domain.FieldCustomerRegion, repo.capturedFilter.Clauses[0].Field)
	assert.Equal(t, domain.Sort{Field: domain.FieldDate}, repo.capturedSort)
}

func TestQuerySales_UsesConfiguredDefaultPageSize(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, Config{DefaultPageSize: 50})

	page, err := svc.Query(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, 50, repo.capturedLimit)
}

func TestQuerySales_FindFailureFailsRequest(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockRepo{
		findFn: func(context.Context, domain.Filter, domain.Sort, int, int) ([]domain.SaleRecord, error) {
			return nil, storeErr
		},
		countFn: func(context.Context, domain.Filter) (int, error) {
			return 12, nil
		},
	}
	svc := NewService(repo, Config{})

	page, err := svc.QuerySales(context.Background(), domain.QueryOptions{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, page, "no partial envelope")
}

func TestQuerySales_CountFailureFailsRequest(t *testing.T) {
	storeErr := errors.New("count timed out")
	repo := &mockRepo{
		findFn: func(context.Context, domain.Filter, domain.Sort, int, int) ([]domain.SaleRecord, error) {
			return records(3), nil
		},
		countFn: func(context.Context, domain.Filter) (int, error) {
			return 0, storeErr
		},
	}
	svc := NewService(repo, Config{})

	page, err := svc.QuerySales(context.Background(), domain.QueryOptions{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, page)
}

// TestQuerySales_FetchAndCountRunConcurrently blocks each read until the other
// has started. A sequential implementation would never release the barrier.
func TestQuerySales_FetchAndCountRunConcurrently(t *testing.T) {
	findStarted := make(chan struct{})
	countStarted := make(chan struct{})

	wait := func(ctx context.Context, other <-chan struct{}) error {
		select {
		case <-other:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	repo := &mockRepo{
		findFn: func(ctx context.Context, _ domain.Filter, _ domain.Sort, _, _ int) ([]domain.SaleRecord, error) {
			close(findStarted)
			if err := wait(ctx, countStarted); err != nil {
				return nil, err
			}
			return records(2), nil
		},
		countFn: func(ctx context.Context, _ domain.Filter) (int, error) {
			close(countStarted)
			if err := wait(ctx, findStarted); err != nil {
				return 0, err
			}
			return 2, nil
		},
	}
	svc := NewService(repo, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	page, err := svc.QuerySales(ctx, domain.QueryOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	assert.Len(t, page.Items, 2)
}

func TestQuerySales_FailureCancelsSiblingRead(t *testing.T) {
	storeErr := errors.New("count failed")
	siblingCancelled := make(chan struct{})

	repo := &mockRepo{
		findFn: func(ctx context.Context, _ domain.Filter, _ domain.Sort, _, _ int) ([]domain.SaleRecord, error) {
			<-ctx.Done()
			close(siblingCancelled)
			return nil, ctx.Err()
		},
		countFn: func(context.Context, domain.Filter) (int, error) {
			return 0, storeErr
		},
	}
	svc := NewService(repo, Config{})

	_, err := svc.QuerySales(context.Background(), domain.QueryOptions{Page: 1, PageSize: 10})
	require.ErrorIs(t, err, storeErr, "the first failure is reported")

	select {
	case <-siblingCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled after count failed")
	}
}

func TestQuerySales_CallerCancellationAbandonsReads(t *testing.T) {
	repo := &mockRepo{
		findFn: func(ctx context.Context, _ domain.Filter, _ domain.Sort, _, _ int) ([]domain.SaleRecord, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		countFn: func(ctx context.Context, _ domain.Filter) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}
	svc := NewService(repo, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.QuerySales(ctx, domain.QueryOptions{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
