package nominatim

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	minLimit = 1
	maxLimit = 50
)

// searchRequest carries the parameters of one Nominatim search call.
type searchRequest struct {
	query          string
	limit          int
	addressDetails bool
	featureType    string
	format         string
}

func newSearchRequest(query string, limit int) searchRequest {
	if limit < minLimit || limit > maxLimit {
		limit = defaultLimit
	}
	return searchRequest{
		query:          query,
		limit:          limit,
		addressDetails: true,
		featureType:    "city",
		format:         "json",
	}
}

func (r searchRequest) validate() error {
	if strings.TrimSpace(r.query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.limit < minLimit || r.limit > maxLimit {
		return fmt.Errorf("limit must be between %d and %d", minLimit, maxLimit)
	}
	if r.format == "" {
		return fmt.Errorf("format cannot be empty")
	}
	if r.featureType == "" {
		return fmt.Errorf("feature type cannot be empty")
	}
	return nil
}

// url builds the search URL against the configured base endpoint.
func (r searchRequest) url(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", r.query)
	params.Set("format", r.format)
	if r.addressDetails {
		params.Set("addressdetails", "1")
	} else {
		params.Set("addressdetails", "0")
	}
	params.Set("limit", strconv.Itoa(r.limit))
	params.Set("featureType", r.featureType)

	u.RawQuery = params.Encode()
	return u.String(), nil
}
