// Package query turns list filters into REST query strings in the
// Django-REST lookup dialect (field__operation=value).
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rpattn/adminkit/internal/domain"
)

// LookupSeparator joins a field name and its lookup operation.
const LookupSeparator = "__"

// PageParam is the query parameter carrying the requested page.
const PageParam = "page"

// FilterQuery returns the query key/value pair for a filter. An empty
// name yields an empty key; filters are not validated.
func FilterQuery(f domain.Filter) (string, string) {
	if f.Operation != "" {
		return f.Name + LookupSeparator + f.Operation, f.Value
	}
	return f.Name, f.Value
}

// ParseKey splits a query key into field name and operation. Keys
// without a separator have no operation.
func ParseKey(key string) (string, string) {
	idx := strings.LastIndex(key, LookupSeparator)
	if idx <= 0 {
		return key, ""
	}
	return key[:idx], key[idx+len(LookupSeparator):]
}

// Encode builds a query string from table filters followed by resource
// filters. Pairs keep their order; nothing is deduplicated.
func Encode(resourceFilters []domain.Filter, tableFilters []domain.TableFilter) string {
	pairs := make([]string, 0, len(tableFilters)+len(resourceFilters))
	for _, tf := range tableFilters {
		pairs = append(pairs, encodePair(FilterQuery(tf.Value)))
	}
	for _, f := range resourceFilters {
		pairs = append(pairs, encodePair(FilterQuery(f)))
	}
	return strings.Join(pairs, "&")
}

// URL appends the encoded filters to base. With no filters base is
// returned unchanged.
func URL(base string, resourceFilters []domain.Filter, tableFilters []domain.TableFilter) string {
	return appendQuery(base, Encode(resourceFilters, tableFilters))
}

// WithPage appends the page parameter when page is positive.
func WithPage(rawURL string, page int) string {
	if page <= 0 {
		return rawURL
	}
	return appendQuery(rawURL, encodePair(PageParam, strconv.Itoa(page)))
}

func encodePair(key, value string) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

func appendQuery(base, query string) string {
	if query == "" {
		return base
	}
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + query
	case strings.Contains(base, "?"):
		return base + "&" + query
	default:
		return base + "?" + query
	}
}
