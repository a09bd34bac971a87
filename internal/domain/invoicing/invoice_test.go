package invoicing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []Status{StatusDraft, StatusSaved, StatusValidated, StatusSubmitted, StatusPosted} {
			assert.True(t, s.IsValid(), s)
		}
		assert.False(t, Status("final").IsValid())
	})

	t.Run("only draft can be updated or submitted", func(t *testing.T) {
		assert.True(t, StatusDraft.CanUpdate())
		assert.True(t, StatusDraft.CanSubmit())

		for _, s := range []Status{StatusSaved, StatusValidated, StatusSubmitted, StatusPosted} {
			assert.False(t, s.CanUpdate(), s)
			assert.False(t, s.CanSubmit(), s)
		}
	})

	t.Run("posted is terminal", func(t *testing.T) {
		assert.True(t, StatusPosted.IsTerminal())
		assert.False(t, StatusDraft.IsTerminal())
	})
}

func TestFormatSystemInvoiceID(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatSystemInvoiceID(1))
	assert.Equal(t, "INV-0042", FormatSystemInvoiceID(42))
	assert.Equal(t, "INV-12345", FormatSystemInvoiceID(12345))
}

func TestPlaceholderNumbers(t *testing.T) {
	t.Run("draft placeholder shape", func(t *testing.T) {
		number := NewDraftNumber()

		assert.True(t, strings.HasPrefix(number, "DRAFT_"))
		parts := strings.Split(number, "_")
		require.Len(t, parts, 3)
		assert.Len(t, parts[2], 9)
	})

	t.Run("validated placeholder shape", func(t *testing.T) {
		number := NewValidatedNumber()

		assert.True(t, strings.HasPrefix(number, "SAVED_"))
	})

	t.Run("placeholders are recognized, business numbers are not", func(t *testing.T) {
		assert.True(t, IsPlaceholderNumber(NewDraftNumber()))
		assert.True(t, IsPlaceholderNumber(NewValidatedNumber()))
		assert.False(t, IsPlaceholderNumber("INV-0001"))
		assert.False(t, IsPlaceholderNumber("7000007DI1747119701593"))
		assert.False(t, IsPlaceholderNumber(""))
	})

	t.Run("consecutive placeholders differ", func(t *testing.T) {
		assert.NotEqual(t, NewDraftNumber(), NewDraftNumber())
	})
}

func TestCleanExtraTax(t *testing.T) {
	positive := decimal.NewFromInt(5)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)

	t.Run("strictly positive value survives", func(t *testing.T) {
		item := InvoiceItem{ExtraTax: &positive}
		item.CleanExtraTax()

		require.NotNil(t, item.ExtraTax)
		assert.True(t, item.ExtraTax.Equal(positive))
	})

	t.Run("zero is dropped", func(t *testing.T) {
		item := InvoiceItem{ExtraTax: &zero}
		item.CleanExtraTax()

		assert.Nil(t, item.ExtraTax)
	})

	t.Run("negative is dropped", func(t *testing.T) {
		item := InvoiceItem{ExtraTax: &negative}
		item.CleanExtraTax()

		assert.Nil(t, item.ExtraTax)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		item := InvoiceItem{}
		item.CleanExtraTax()

		assert.Nil(t, item.ExtraTax)
	})
}

func TestMarkPosted(t *testing.T) {
	inv := &Invoice{
		ID:            7,
		InvoiceNumber: NewDraftNumber(),
		Status:        StatusDraft,
	}

	inv.MarkPosted("7000007DI1747119701593")

	assert.Equal(t, StatusPosted, inv.Status)
	assert.Equal(t, "7000007DI1747119701593", inv.InvoiceNumber)
	require.NotNil(t, inv.FBRInvoiceNumber)
	assert.Equal(t, "7000007DI1747119701593", *inv.FBRInvoiceNumber)
	assert.False(t, inv.UpdatedAt.IsZero())
}
