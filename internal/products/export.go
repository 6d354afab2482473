package product

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mweidner/product-inventory-backend/pkg/db/models"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
)

const (
	csvSeparator  = ","
	csvDateLayout = "02.01.2006"
)

var csvHeader = []string{
	"Product name",
	"Contract number",
	"One time charge",
	"Monthly recurring charge",
	"Start date",
	"Duration",
}

// ExportCSV renders the products as a comma separated table, one row per
// product in input order, with a fixed header row. Missing values render as
// empty columns.
func ExportCSV(products []*models.Product) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, csvSeparator))
	buf.WriteByte('\n')
	for _, product := range products {
		buf.WriteString(csvRow(product))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func csvRow(product *models.Product) string {
	columns := []string{
		product.Name,
		stringOrEmpty(product.ContractNumber),
		priceColumn(product.Prices, enums.PriceTypeOTC),
		priceColumn(product.Prices, enums.PriceTypeMRC),
		dateColumn(product.StartDate),
		durationColumn(product.StartDate, product.TerminationDate),
	}
	return strings.Join(columns, csvSeparator)
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// priceColumn renders the first price of the wanted type as amount followed
// by unit, each part only when present.
func priceColumn(prices []models.ProductPrice, priceType enums.PriceType) string {
	for _, price := range prices {
		if price.PriceType != priceType {
			continue
		}
		var b strings.Builder
		if price.AmountValue != nil {
			// amounts are NUMERIC(12,2); keep the two-decimal scale that
			// Decimal.String() would trim
			b.WriteString(price.AmountValue.StringFixed(2))
		}
		if price.AmountUnit != nil {
			b.WriteString(*price.AmountUnit)
		}
		return b.String()
	}
	return ""
}

func dateColumn(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(csvDateLayout)
}

// durationColumn renders the span between start and termination as whole
// months followed by leftover days, skipping parts that are zero or negative.
func durationColumn(start, end *time.Time) string {
	if start == nil || end == nil {
		return ""
	}
	months, days := periodBetween(*start, *end)
	var b strings.Builder
	if months > 0 {
		fmt.Fprintf(&b, "%dM", months)
	}
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	return b.String()
}

// periodBetween splits the calendar distance between two dates into whole
// months plus leftover days, borrowing from the month before end when the day
// of month runs negative.
func periodBetween(start, end time.Time) (int, int) {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()

	months := (ey-sy)*12 + int(em) - int(sm)
	days := ed - sd
	switch {
	case months > 0 && days < 0:
		months--
		anchor := addMonthsClamped(sy, sm, sd, months)
		days = daysBetween(anchor, civilDate(ey, em, ed))
	case months < 0 && days > 0:
		months++
		days -= daysInMonth(ey, em)
	}
	return months, days
}

func civilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonthsClamped shifts a date by whole months, clamping the day to the
// target month's length instead of rolling over.
func addMonthsClamped(year int, month time.Month, day, months int) time.Time {
	total := int(month) - 1 + months
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	target := time.Month(total + 1)
	if max := daysInMonth(year, target); day > max {
		day = max
	}
	return civilDate(year, target, day)
}
