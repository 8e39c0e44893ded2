package recipient

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ignite/recipient-sync/internal/domain"
)

// headerFields maps normalized CSV header names to recipient field setters.
// Unrecognized headers are skipped for every row. The export tooling has
// produced several spellings over time, so common aliases are included.
var headerFields = map[string]func(*domain.Recipient, string){
	"addressid":             func(r *domain.Recipient, v string) { r.AddressID = v },
	"address_id":            func(r *domain.Recipient, v string) { r.AddressID = v },
	"address_line_1":        func(r *domain.Recipient, v string) { r.AddressLine1 = v },
	"addressline1":          func(r *domain.Recipient, v string) { r.AddressLine1 = v },
	"state_province_region": func(r *domain.Recipient, v string) { r.StateProvinceRegion = v },
	"state":                 func(r *domain.Recipient, v string) { r.StateProvinceRegion = v },
	"region":                func(r *domain.Recipient, v string) { r.StateProvinceRegion = v },
	"city":                  func(r *domain.Recipient, v string) { r.City = v },
	"postal_code":           func(r *domain.Recipient, v string) { r.PostalCode = v },
	"postalcode":            func(r *domain.Recipient, v string) { r.PostalCode = v },
	"zip":                   func(r *domain.Recipient, v string) { r.PostalCode = v },
	"zip_code":              func(r *domain.Recipient, v string) { r.PostalCode = v },
	"market":                func(r *domain.Recipient, v string) { r.Market = v },
	"sector":                func(r *domain.Recipient, v string) { r.Sector = v },
	"email":                 func(r *domain.Recipient, v string) { r.Email = v },
	"email_address":         func(r *domain.Recipient, v string) { r.Email = v },
	"core_segment":          func(r *domain.Recipient, v string) { r.CoreSegment = v },
	"coresegment":           func(r *domain.Recipient, v string) { r.CoreSegment = v },
	"sub_segment":           func(r *domain.Recipient, v string) { r.SubSegment = v },
	"subsegment":            func(r *domain.Recipient, v string) { r.SubSegment = v },
}

// normalizeHeader lowers, trims, and folds spaces to underscores so that
// "Address Line 1" and "address_line_1" hit the same dictionary entry.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// ParseRecipients parses CSV text into recipient records using RFC 4180
// quoting (LazyQuotes tolerates stray interior quotes). The first non-blank
// line is the header; rows without a non-empty email are discarded — that is
// the only validity gate, every other field may be empty. Row order is
// preserved. Blank input yields an empty slice.
func ParseRecipients(csvText string) []domain.Recipient {
	text := strings.TrimSpace(strings.TrimPrefix(csvText, "\ufeff"))
	if text == "" {
		return []domain.Recipient{}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return []domain.Recipient{}
	}

	// column index → field setter, for recognized headers only
	setters := make(map[int]func(*domain.Recipient, string))
	for i, h := range header {
		if set, ok := headerFields[normalizeHeader(h)]; ok {
			setters[i] = set
		}
	}

	recipients := []domain.Recipient{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed row — discard and keep going
			continue
		}

		var rec domain.Recipient
		for i, cell := range row {
			if set, ok := setters[i]; ok {
				set(&rec, strings.TrimSpace(cell))
			}
		}
		if rec.Email == "" {
			continue
		}
		recipients = append(recipients, rec)
	}
	return recipients
}
