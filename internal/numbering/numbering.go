// Package numbering generates the human readable document numbers
// DEV-YYYY-NNNN and FAC-YYYY-NNNN.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-devis/internal/models"
)

// Source reports the documents already numbered.
type Source interface {
	CountCreatedBetween(ctx context.Context, kind models.DocumentKind, from, to time.Time) (int64, error)
	LastNumber(ctx context.Context, kind models.DocumentKind, prefix string) (string, error)
}

// Prefix is the part of a number shared by every document of kind in year.
func Prefix(kind models.DocumentKind, year int) string {
	return fmt.Sprintf("%s-%d-", kind, year)
}

// Format builds a number. The sequence is zero padded to four digits and grows
// past 9999 without truncation.
func Format(kind models.DocumentKind, year, seq int) string {
	return fmt.Sprintf("%s%04d", Prefix(kind, year), seq)
}

// Parse splits a number into its parts.
func Parse(number string) (kind models.DocumentKind, year, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed document number %q", number)
	}
	kind = models.DocumentKind(parts[0])
	if kind != models.KindQuote && kind != models.KindInvoice {
		return "", 0, 0, fmt.Errorf("unknown document kind in %q", number)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil {
		return "", 0, 0, fmt.Errorf("malformed year in %q: %w", number, err)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return "", 0, 0, fmt.Errorf("malformed sequence in %q: %w", number, err)
	}
	return kind, year, seq, nil
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1) in UTC.
func YearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// Next returns the number for the next document of kind created in year: one
// more than the documents already created that year, or than the highest
// sequence in use when rows were deleted. Uniqueness is finally enforced by the
// database; callers treat a duplicate as models.ErrConflict.
func Next(ctx context.Context, src Source, kind models.DocumentKind, year int) (string, error) {
	from, to := YearBounds(year)
	count, err := src.CountCreatedBetween(ctx, kind, from, to)
	if err != nil {
		return "", fmt.Errorf("count %s documents: %w", kind, err)
	}
	seq := int(count)

	last, err := src.LastNumber(ctx, kind, Prefix(kind, year))
	if err != nil {
		return "", fmt.Errorf("last %s number: %w", kind, err)
	}
	if last != "" {
		if _, _, lastSeq, perr := Parse(last); perr == nil && lastSeq > seq {
			seq = lastSeq
		}
	}
	return Format(kind, year, seq+1), nil
}
