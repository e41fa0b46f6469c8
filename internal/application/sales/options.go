package sales

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/truestate/sales/internal/domain"
	"github.com/truestate/sales/internal/ptr"
)

// Request parameter names accepted by the normalizer.
const (
	ParamSearch            = "search"
	ParamRegions           = "regions"
	ParamGenders           = "genders"
	ParamProductCategories = "productCategories"
	ParamTags              = "tags"
	ParamPaymentMethods    = "paymentMethods"
	ParamAgeMin            = "ageMin"
	ParamAgeMax            = "ageMax"
	ParamDateFrom          = "dateFrom"
	ParamDateTo            = "dateTo"
	ParamSortBy            = "sortBy"
	ParamSortOrder         = "sortOrder"
	ParamPage              = "page"
	ParamPageSize          = "pageSize"
)

// listParams hold comma-separated values.
var listParams = []string{
	ParamRegions,
	ParamGenders,
	ParamProductCategories,
	ParamTags,
	ParamPaymentMethods,
}

// dateLayouts are tried in order when parsing dateFrom/dateTo.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Params is the raw, loosely-typed parameter set of a sales query.
// List parameters carry comma-separated values.
type Params map[string]string

// ParamsFromValues converts URL query values into Params.
// Repeated list parameters (regions=a&regions=b) are joined with commas;
// for scalar parameters the first value wins.
func ParamsFromValues(values url.Values) Params {
	params := make(Params, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if slices.Contains(listParams, key) {
			params[key] = strings.Join(vals, ",")
			continue
		}
		params[key] = vals[0]
	}
	return params
}

// Normalizer turns raw Params into QueryOptions.
type Normalizer struct {
	defaultPageSize int
}

// NewNormalizer creates a normalizer.
// A defaultPageSize <= 0 falls back to domain.DefaultPageSize.
func NewNormalizer(defaultPageSize int) Normalizer {
	if defaultPageSize <= 0 {
		defaultPageSize = domain.DefaultPageSize
	}
	return Normalizer{defaultPageSize: defaultPageSize}
}

// NormalizeOptions normalizes params using the built-in defaults.
func NormalizeOptions(params Params) domain.QueryOptions {
	return NewNormalizer(0).Normalize(params)
}

// Normalize converts params into QueryOptions. It never fails: malformed
// scalar values are treated as absent, page and page size are clamped to >= 1.
func (n Normalizer) Normalize(params Params) domain.QueryOptions {
	opts := domain.QueryOptions{
		Search:            parseSearch(params[ParamSearch]),
		Regions:           splitList(params[ParamRegions]),
		Genders:           splitList(params[ParamGenders]),
		ProductCategories: splitList(params[ParamProductCategories]),
		Tags:              splitList(params[ParamTags]),
		PaymentMethods:    splitList(params[ParamPaymentMethods]),
		AgeMin:            parseInt(params[ParamAgeMin]),
		AgeMax:            parseInt(params[ParamAgeMax]),
		DateFrom:          parseDate(params[ParamDateFrom]),
		DateTo:            parseDate(params[ParamDateTo]),
		SortBy:            domain.SortField(strings.TrimSpace(params[ParamSortBy])),
		SortOrder:         domain.SortOrder(strings.TrimSpace(params[ParamSortOrder])),
		Page:              clampPositive(parseInt(params[ParamPage]), domain.DefaultPage),
		PageSize:          clampPositive(parseInt(params[ParamPageSize]), n.defaultPageSize),
	}

	if opts.SortBy == "" {
		opts.SortBy = domain.DefaultSortField
	}
	if opts.SortOrder == "" {
		opts.SortOrder = domain.DefaultSortOrder
	}

	return opts
}

func parseSearch(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// splitList splits a comma-separated value, trimming tokens and dropping empty ones.
// Returns nil when no tokens remain.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for token := range strings.SplitSeq(raw, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

func parseInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return ptr.To(t.UTC())
		}
	}
	return nil
}

// clampPositive returns def when v is unset, otherwise max(1, *v).
func clampPositive(v *int, def int) int {
	return max(1, ptr.Deref(v, def))
}
