package invoicing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyResponse(t *testing.T) {
	t.Run("validation response with status code 00 is accepted", func(t *testing.T) {
		body := `{"validationResponse":{"statusCode":"00","status":"Valid","invoiceNumber":"7000007DI1747119701593"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeAccepted, outcome.Kind)
		assert.True(t, outcome.Accepted())
		assert.Equal(t, "7000007DI1747119701593", outcome.InvoiceNumber)
	})

	t.Run("valid status without nested number falls back to top-level number", func(t *testing.T) {
		body := `{"invoiceNumber":"7000007DI999","validationResponse":{"statusCode":"00"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeAccepted, outcome.Kind)
		assert.Equal(t, "7000007DI999", outcome.InvoiceNumber)
	})

	t.Run("valid status with no number anywhere synthesizes a local reference", func(t *testing.T) {
		body := `{"validationResponse":{"statusCode":"00"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeAcceptedImplicit, outcome.Kind)
		assert.True(t, strings.HasPrefix(outcome.InvoiceNumber, "LOCAL-"))
	})

	t.Run("top-level invoice number on success status is accepted", func(t *testing.T) {
		outcome := ClassifyResponse(200, []byte(`{"invoiceNumber":"7000007DI42","dated":"2025-05-13"}`))

		assert.Equal(t, OutcomeAccepted, outcome.Kind)
		assert.Equal(t, "7000007DI42", outcome.InvoiceNumber)
	})

	t.Run("empty body with 2xx is implicit acceptance", func(t *testing.T) {
		for _, body := range []string{"", "{}", "null", "  "} {
			outcome := ClassifyResponse(200, []byte(body))

			require.Equal(t, OutcomeAcceptedImplicit, outcome.Kind, "body %q", body)
			assert.True(t, strings.HasPrefix(outcome.InvoiceNumber, "LOCAL-"))
		}
	})

	t.Run("empty body with error status is rejected", func(t *testing.T) {
		outcome := ClassifyResponse(500, nil)

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.False(t, outcome.Accepted())
		assert.Contains(t, outcome.Detail, "500")
	})

	t.Run("unparseable body with 2xx gets the same leniency as empty", func(t *testing.T) {
		outcome := ClassifyResponse(200, []byte("<html>gateway</html>"))

		assert.Equal(t, OutcomeAcceptedImplicit, outcome.Kind)
	})

	t.Run("unparseable body with error status is rejected", func(t *testing.T) {
		outcome := ClassifyResponse(502, []byte("<html>bad gateway</html>"))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Contains(t, outcome.Detail, "502")
	})

	t.Run("validation error is surfaced as rejection detail", func(t *testing.T) {
		body := `{"validationResponse":{"statusCode":"01","status":"Invalid","error":"Sale type not valid for scenario"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, "Sale type not valid for scenario", outcome.Detail)
	})

	t.Run("failing validation status without error text is still a rejection", func(t *testing.T) {
		body := `{"validationResponse":{"statusCode":"01","status":"Invalid"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.False(t, outcome.Accepted())
		assert.Contains(t, outcome.Detail, "Invalid")
		assert.Empty(t, outcome.InvoiceNumber)
	})

	t.Run("bare error code in the validation result is surfaced", func(t *testing.T) {
		body := `{"validationResponse":{"statusCode":"01","errorCode":"0046"}}`

		outcome := ClassifyResponse(200, []byte(body))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Contains(t, outcome.Detail, "0046")
	})

	t.Run("empty validation result object keeps the implicit leniency", func(t *testing.T) {
		outcome := ClassifyResponse(200, []byte(`{"validationResponse":{}}`))

		assert.Equal(t, OutcomeAcceptedImplicit, outcome.Kind)
	})

	t.Run("string error field is surfaced", func(t *testing.T) {
		outcome := ClassifyResponse(400, []byte(`{"error":"invalid token"}`))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, "invalid token", outcome.Detail)
	})

	t.Run("error list is joined", func(t *testing.T) {
		outcome := ClassifyResponse(400, []byte(`{"errors":["ntn missing","hs code missing"]}`))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, "ntn missing; hs code missing", outcome.Detail)
	})

	t.Run("message on non-success status is surfaced", func(t *testing.T) {
		outcome := ClassifyResponse(403, []byte(`{"status":"failed","message":"credential expired"}`))

		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, "credential expired", outcome.Detail)
	})

	t.Run("benign success message does not become a rejection", func(t *testing.T) {
		outcome := ClassifyResponse(200, []byte(`{"status":"success","message":"processed"}`))

		assert.True(t, outcome.Accepted())
	})
}

func TestSynthesizeReference(t *testing.T) {
	ref := SynthesizeReference()

	assert.True(t, strings.HasPrefix(ref, "LOCAL-"))
	assert.Greater(t, len(ref), len("LOCAL-"))
}
