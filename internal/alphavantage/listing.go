package alphavantage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/movers/internal/models"
)

const functionListingStatus = "LISTING_STATUS"

// ListingStatus retrieves the full directory of listed instruments.
func (c *Client) ListingStatus(ctx context.Context) ([]models.ListingRow, error) {
	body, status, err := c.get(ctx, functionListingStatus, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusTooManyRequests {
		return nil, &APIError{StatusCode: status, Message: "rate limited", Function: functionListingStatus}
	}

	// Failures come back as a JSON document instead of CSV.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var apiErr listingError
		if err := json.Unmarshal(trimmed, &apiErr); err != nil {
			return nil, fmt.Errorf("failed to decode listing error response: %w", err)
		}
		return nil, &APIError{StatusCode: status, Message: apiErr.message(), Function: functionListingStatus}
	}

	rows, err := ParseListingCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug().Int("rows", len(rows)).Msg("Listing directory received")
	}
	return rows, nil
}

// ParseListingCSV reads LISTING_STATUS CSV. Columns are located by header name
// so column order does not matter; missing optional columns read as empty.
func ParseListingCSV(r io.Reader) ([]models.ListingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("listing response is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read listing header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"symbol", "exchange", "assetType", "status"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("listing header is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []models.ListingRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read listing line %d: %w", line, err)
		}

		rows = append(rows, models.ListingRow{
			Symbol:        field(record, "symbol"),
			Name:          field(record, "name"),
			Exchange:      field(record, "exchange"),
			AssetType:     field(record, "assetType"),
			Status:        field(record, "status"),
			IPODate:       field(record, "ipoDate"),
			DelistingDate: field(record, "delistingDate"),
		})
	}

	return rows, nil
}
