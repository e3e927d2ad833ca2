// Package query turns an untrusted flat query string into a bounded,
// paginated, sorted, field-limited database query.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"tours-backend/internal/apperror"

	"go.mongodb.org/mongo-driver/bson"
)

// Reserved parameter names consumed by the engine itself. Everything else
// is passed through as a field filter.
var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Options is the effective query built from caller-supplied parameters.
type Options struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	// Limit is the page size; 0 means unlimited (a single page).
	Limit int64
	// Page is the 1-based page number requested by the caller.
	Page int64
}

// Result is the uniform shape of every paginated listing.
type Result[T any] struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	ResultCount int   `json:"results"`
	Data        []T   `json:"data"`
}

// Parse builds Options from raw query parameters. defaultLimit is applied
// when the caller does not supply one. Numeric parameters are validated
// strictly; anything that is not a plain decimal string is rejected.
func Parse(values url.Values, defaultLimit int64) (Options, error) {
	opts := Options{
		Filter: parseFilter(values),
		Limit:  defaultLimit,
		Page:   1,
	}

	if sort := values.Get("sort"); sort != "" {
		opts.Sort = parseSort(sort)
	}
	if fields := values.Get("fields"); fields != "" {
		opts.Projection = parseProjection(fields)
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := ConvertToInteger(raw)
		if err != nil {
			return Options{}, apperror.Newf(apperror.InvalidParameter, "limit must be a non-negative integer, got %q", raw)
		}
		opts.Limit = limit
	}

	if raw := values.Get("page"); raw != "" {
		page, err := ConvertToInteger(raw)
		if err != nil || page < 1 {
			return Options{}, apperror.Newf(apperror.InvalidParameter, "page must be a positive integer, got %q", raw)
		}
		opts.Page = page
	}

	return opts, nil
}

// ConvertToInteger parses a strictly-decimal string ("^\d+$"). Signs,
// spaces, and fractional parts are all rejected.
func ConvertToInteger(s string) (int64, error) {
	if s == "" {
		return 0, apperror.New(apperror.InvalidParameter, "value must be an integer")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, apperror.Newf(apperror.InvalidParameter, "value %q is not an integer", s)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperror.Wrap(apperror.InvalidParameter, "value is out of range", err)
	}
	return n, nil
}

// parseFilter converts all non-reserved parameters into a store filter.
// Keys of the form "field[op]" with op in gte|gt|lte|lt become comparison
// operators; everything else is an equality match. Unrecognized keys are
// deliberately passed through as literal field filters.
func parseFilter(values url.Values) bson.M {
	filter := bson.M{}
	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		field, op, ok := splitOperator(key)
		if !ok {
			filter[key] = coerceValue(vals[0])
			continue
		}
		cond, merged := filter[field].(bson.M)
		if !merged {
			cond = bson.M{}
			filter[field] = cond
		}
		cond[op] = coerceValue(vals[0])
	}
	return filter
}

// splitOperator recognizes the "field[op]" form used for range filters,
// e.g. price[gte]=500.
func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	bare := key[open+1 : len(key)-1]
	mongoOp, known := comparisonOps[bare]
	if !known {
		return "", "", false
	}
	return key[:open], mongoOp, true
}

// coerceValue converts a raw parameter into the type the store should
// match against: number, boolean, or string.
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// parseSort converts the comma-separated sort list into the store's
// multi-field sort document, preserving the given order. A leading '-'
// requests descending order. Ties are broken by store default order;
// callers needing determinism must supply a unique tiebreak field.
func parseSort(raw string) bson.D {
	var sort bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = field[1:]
		}
		if field != "" {
			sort = append(sort, bson.E{Key: field, Value: dir})
		}
	}
	return sort
}

// parseProjection converts the comma-separated field list into a store
// projection. A leading '-' excludes a field instead.
func parseProjection(raw string) bson.M {
	projection := bson.M{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, "-") {
			if name := field[1:]; name != "" {
				projection[name] = 0
			}
			continue
		}
		projection[field] = 1
	}
	return projection
}

// TotalPages computes ceil(count/limit). A limit of zero means a single
// unbounded page.
func TotalPages(count, limit int64) int64 {
	if limit <= 0 {
		return 1
	}
	pages := count / limit
	if count%limit > 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// ValidatePage checks the requested page against the matching document
// count and returns the total page count. Pages past the end are
// rejected rather than returned empty.
func ValidatePage(page, count, limit int64) (int64, error) {
	totalPages := TotalPages(count, limit)
	if page > totalPages {
		return 0, apperror.Newf(apperror.PageOutOfRange, "Page %d does not exist, last page is %d", page, totalPages)
	}
	return totalPages, nil
}

// Skip returns the document offset for the requested page.
func (o Options) Skip() int64 {
	return o.Limit * (o.Page - 1)
}
