package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papyr/internal/extract"
)

func TestFields_ColonSeparated(t *testing.T) {
	text := "Invoice Number: INV-12345\nCustomer: Acme Corp"

	fields := extract.Fields(text)

	assert.Equal(t, "INV-12345", fields["Invoice Number"].Text())
	assert.Equal(t, "Acme Corp", fields["Customer"].Text())
}

func TestFields_EqualsSeparated(t *testing.T) {
	fields := extract.Fields("Total = $45.00")

	assert.Equal(t, "$45.00", fields["Total"].Text())
}

func TestFields_LineSeparated(t *testing.T) {
	// The line-separated rule applies only past the first line.
	fields := extract.Fields("Header\nGrand Total 123.45")

	assert.Equal(t, "123.45", fields["Grand Total"].Text())
}

func TestFields_LineSeparatedSkipsFirstLine(t *testing.T) {
	fields := extract.Fields("Grand Total 123.45")

	_, ok := fields["Grand Total"]
	assert.False(t, ok)
}

func TestFields_EqualsOverwritesColon(t *testing.T) {
	// Same key matched by both the colon and equals rules: the later
	// rule wins.
	text := "Total = $20.00\nTotal: $10.00"

	fields := extract.Fields(text)

	assert.Equal(t, "$20.00", fields["Total"].Text())
}

func TestFields_DatesAndAmounts(t *testing.T) {
	text := "Due 01/02/23 or 3-4-2024, pay $5.00 plus $6.50 fee"

	fields := extract.Fields(text)

	assert.Equal(t, []string{"01/02/23", "3-4-2024"}, fields[extract.KeyExtractedDates].List())
	assert.Equal(t, []string{"$5.00", "$6.50"}, fields[extract.KeyExtractedAmounts].List())
}

func TestFields_NoAggregateKeysWithoutMatches(t *testing.T) {
	fields := extract.Fields("Customer: Acme Corp")

	_, hasDates := fields[extract.KeyExtractedDates]
	_, hasAmounts := fields[extract.KeyExtractedAmounts]
	assert.False(t, hasDates)
	assert.False(t, hasAmounts)
}

func TestFields_InvoiceText(t *testing.T) {
	text := "Invoice Number: INV-12345\nDate: 03/15/2024\nTotal = $45.00"

	fields := extract.Fields(text)

	assert.Equal(t, "INV-12345", fields["Invoice Number"].Text())
	assert.Equal(t, "03/15/2024", fields["Date"].Text())
	// The line-separated rule re-matches "Total = $45.00" and keeps
	// the raw remainder as its value.
	assert.Contains(t, fields["Total"].Text(), "$45.00")
	assert.Equal(t, []string{"03/15/2024"}, fields[extract.KeyExtractedDates].List())
	assert.Equal(t, []string{"$45.00"}, fields[extract.KeyExtractedAmounts].List())
}

func TestFields_Deterministic(t *testing.T) {
	text := "Invoice Number: INV-12345\nDate: 03/15/2024\nTotal = $45.00"

	first := extract.Fields(text)
	second := extract.Fields(text)

	assert.Equal(t, first, second)
}

func TestFields_EmptyText(t *testing.T) {
	fields := extract.Fields("")

	assert.Empty(t, fields)
}
