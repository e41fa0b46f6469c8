package sales_test

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/infrastructure/persistence/memory"
)

// fixture builds 25 records: 12 Electronics and 13 Clothing, with distinct
// dates, quantities and names so every sort key is total.
func fixture() []domain.SaleRecord {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.SaleRecord, 0, 25)
	for i := range 25 {
		category := "Clothing"
		if i%2 == 0 && len(out) < 24 {
			category = "Electronics"
		}
		age := 18 + i*2
		qty := i + 1
		out = append(out, domain.SaleRecord{
			ID:              fmt.Sprintf("rec-%02d", i),
			CustomerName:    fmt.Sprintf("Customer %02d", i),
			PhoneNumber:     fmt.Sprintf("+91 98%08d", i),
			Gender:          []string{"Male", "Female"}[i%2],
			Age:             &age,
			CustomerRegion:  []string{"North", "South", "East", "West", "Central"}[i%5],
			ProductCategory: category,
			Tags:            []string{[]string{"gift", "organic", "sale"}[i%3]},
			PaymentMethod:   []string{"UPI", "Cash", "Credit Card"}[i%3],
			Date:            base.AddDate(0, 0, i),
			Quantity:        &qty,
		})
	}
	out[3].CustomerName = "Ravi Kumar"
	out[8].CustomerName = "Aravind Rao"
	out[8].PhoneNumber = "+91 9000000000"
	return out
}

func newFixtureService(t *testing.T) *sales.Service {
	t.Helper()
	return sales.NewService(memory.NewStore(fixture()...), sales.Config{})
}

func countCategory(recs []domain.SaleRecord, category string) int {
	n := 0
	for _, r := range recs {
		if r.ProductCategory == category {
			n++
		}
	}
	return n
}

func TestScenario_FixtureShape(t *testing.T) {
	recs := fixture()
	require.Len(t, recs, 25)
	require.Equal(t, 12, countCategory(recs, "Electronics"))
}

func TestScenarioA_FirstPageOfFilteredSet(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{
		sales.ParamProductCategories: "Electronics",
		sales.ParamPage:              "1",
		sales.ParamPageSize:          "10",
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 10)
	assert.Equal(t, 12, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)
	for _, item := range page.Items {
		assert.Equal(t, "Electronics", item.ProductCategory)
	}
}

func TestScenarioB_LastPageOfFilteredSet(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{
		sales.ParamProductCategories: "Electronics",
		sales.ParamPage:              "2",
		sales.ParamPageSize:          "10",
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, 12, page.TotalItems)
	assert.False(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)
}

func TestScenarioC_InvertedAgeRangeRegardlessOfFilters(t *testing.T) {
	svc := newFixtureService(t)

	for _, extra := range []sales.Params{
		{},
		{sales.ParamSearch: "ravi"},
		{sales.ParamRegions: "North", sales.ParamTags: "gift", sales.ParamPage: "4"},
	} {
		params := sales.Params{sales.ParamAgeMin: "40", sales.ParamAgeMax: "20"}
		for k, v := range extra {
			params[k] = v
		}

		page, err := svc.Query(context.Background(), params)
		require.NoError(t, err)
		assert.True(t, page.InvalidRange)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.TotalItems)
		assert.Zero(t, page.TotalPages)
		assert.Equal(t, 1, page.Page)
	}
}

func TestScenarioD_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{sales.ParamSearch: "ravi"})
	require.NoError(t, err)

	names := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		names = append(names, item.CustomerName)
	}
	assert.ElementsMatch(t, []string{"Ravi Kumar", "Aravind Rao"}, names)
	assert.Equal(t, 2, page.TotalItems)
}

func TestScenario_SearchMatchesPhoneNumber(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{sales.ParamSearch: "9000000000"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Aravind Rao", page.Items[0].CustomerName)
}

func TestScenario_EmptySetsMatchOmittedSets(t *testing.T) {
	svc := newFixtureService(t)

	omitted, err := svc.Query(context.Background(), sales.Params{})
	require.NoError(t, err)
	empty, err := svc.Query(context.Background(), sales.Params{
		sales.ParamRegions:           "",
		sales.ParamGenders:           ",",
		sales.ParamProductCategories: " ",
		sales.ParamTags:              "",
		sales.ParamPaymentMethods:    ", ,",
	})
	require.NoError(t, err)

	assert.Equal(t, omitted, empty)
	assert.Equal(t, 25, empty.TotalItems)
}

func TestScenario_BogusSortBehavesLikeDate(t *testing.T) {
	svc := newFixtureService(t)

	byDate, err := svc.Query(context.Background(), sales.Params{sales.ParamSortBy: "date"})
	require.NoError(t, err)
	bogus, err := svc.Query(context.Background(), sales.Params{sales.ParamSortBy: "bogus"})
	require.NoError(t, err)

	assert.Equal(t, byDate, bogus)
	assert.Equal(t, "rec-24", byDate.Items[0].ID, "default order is newest first")
}

func TestScenario_SortByQuantityAscending(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{
		sales.ParamSortBy:    "quantity",
		sales.ParamSortOrder: "asc",
		sales.ParamPageSize:  "3",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 1, *page.Items[0].Quantity)
	assert.Equal(t, 2, *page.Items[1].Quantity)
	assert.Equal(t, 3, *page.Items[2].Quantity)
}

func TestScenario_CombinedFilters(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{
		sales.ParamGenders:        "Male",
		sales.ParamAgeMin:         "20",
		sales.ParamAgeMax:         "40",
		sales.ParamPaymentMethods: "UPI,Cash",
		sales.ParamDateFrom:       "2023-01-02",
		sales.ParamDateTo:         "2023-01-20",
		sales.ParamPageSize:       "50",
	})
	require.NoError(t, err)

	// Male = even i; age 20..40 = i in 1..11; date = i in 1..19;
	// UPI/Cash = i%3 in {0,1}  -> i in {4, 6, 10}
	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"rec-04", "rec-06", "rec-10"}, ids)
	assert.Equal(t, 3, page.TotalItems)
}

func TestScenario_TagsMatchAnyRequestedTag(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.Query(context.Background(), sales.Params{
		sales.ParamTags:     "gift,sale",
		sales.ParamPageSize: "50",
	})
	require.NoError(t, err)
	// i%3 == 0 (gift) or i%3 == 2 (sale)
	assert.Equal(t, 17, page.TotalItems)
}

func TestScenario_NavigationFlagsConsistent(t *testing.T) {
	svc := newFixtureService(t)

	for pageSize := 1; pageSize <= 30; pageSize++ {
		for pageNum := 1; pageNum <= 27; pageNum++ {
			page, err := svc.Query(context.Background(), sales.Params{
				sales.ParamPage:     fmt.Sprint(pageNum),
				sales.ParamPageSize: fmt.Sprint(pageSize),
			})
			require.NoError(t, err)

			wantPages := (25 + pageSize - 1) / pageSize
			assert.Equal(t, wantPages, page.TotalPages)
			assert.Equal(t, page.Page < page.TotalPages, page.HasNextPage)
			assert.Equal(t, page.Page > 1, page.HasPrevPage)
			assert.LessOrEqual(t, len(page.Items), pageSize)
		}
	}
}

func TestScenario_PageAndPageSizeHaveNoUpperBound(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	t.Run("page far past the end", func(t *testing.T) {
		page, err := svc.Query(ctx, sales.Params{sales.ParamPage: strconv.Itoa(math.MaxInt / 5)})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, math.MaxInt/5, page.Page)
		assert.Equal(t, 25, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.True(t, page.HasPrevPage)
	})

	t.Run("max page size returns everything", func(t *testing.T) {
		page, err := svc.Query(ctx, sales.Params{sales.ParamPageSize: strconv.Itoa(math.MaxInt)})
		require.NoError(t, err)
		assert.Len(t, page.Items, 25)
		assert.Equal(t, math.MaxInt, page.PageSize)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.False(t, page.HasPrevPage)
	})

	t.Run("max page and page size", func(t *testing.T) {
		largest := strconv.Itoa(math.MaxInt)
		page, err := svc.Query(ctx, sales.Params{sales.ParamPage: largest, sales.ParamPageSize: largest})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.True(t, page.HasPrevPage)
	})
}
