package invoicing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutcomeKind tags a classified submission response
type OutcomeKind int

const (
	// OutcomeAccepted means the authority explicitly accepted the document
	OutcomeAccepted OutcomeKind = iota
	// OutcomeAcceptedImplicit means the authority returned an empty body with
	// an HTTP success status; the reference number is synthesized locally
	OutcomeAcceptedImplicit
	// OutcomeRejected means the authority rejected the document
	OutcomeRejected
)

// Outcome is the classified result of a submission attempt
type Outcome struct {
	Kind          OutcomeKind
	InvoiceNumber string
	Detail        string
}

// Accepted reports whether the outcome is any success variant
func (o Outcome) Accepted() bool {
	return o.Kind == OutcomeAccepted || o.Kind == OutcomeAcceptedImplicit
}

// authorityResponse covers the shapes the authority is known to return: a
// validation-result object, a bare success object, or an error object.
type authorityResponse struct {
	InvoiceNumber      string `json:"invoiceNumber"`
	Dated              string `json:"dated"`
	ValidationResponse *struct {
		StatusCode    string `json:"statusCode"`
		Status        string `json:"status"`
		InvoiceNumber string `json:"invoiceNumber"`
		Error         string `json:"error"`
		ErrorCode     string `json:"errorCode"`
	} `json:"validationResponse"`
	Status    string          `json:"status"`
	Error     json.RawMessage `json:"error"`
	Errors    json.RawMessage `json:"errors"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorCode"`
}

// ClassifyResponse maps a raw authority response to a tagged outcome.
// Success is recognized from an explicit validation-status code, a returned
// document number, or an empty body with an HTTP success status; the last is
// a documented leniency, not an accident of parsing.
func ClassifyResponse(statusCode int, body []byte) Outcome {
	httpSuccess := statusCode >= 200 && statusCode < 300

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		if httpSuccess {
			return Outcome{Kind: OutcomeAcceptedImplicit, InvoiceNumber: SynthesizeReference()}
		}
		return Outcome{Kind: OutcomeRejected, Detail: fmt.Sprintf("authority returned HTTP %d with empty body", statusCode)}
	}

	var resp authorityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if httpSuccess {
			// Unparseable body on a success status gets the same leniency as
			// an empty one.
			return Outcome{Kind: OutcomeAcceptedImplicit, InvoiceNumber: SynthesizeReference()}
		}
		return Outcome{Kind: OutcomeRejected, Detail: fmt.Sprintf("authority returned HTTP %d with unparseable body", statusCode)}
	}

	if vr := resp.ValidationResponse; vr != nil {
		if vr.StatusCode == "00" || strings.EqualFold(vr.Status, "valid") {
			number := vr.InvoiceNumber
			if number == "" {
				number = resp.InvoiceNumber
			}
			if number == "" {
				return Outcome{Kind: OutcomeAcceptedImplicit, InvoiceNumber: SynthesizeReference()}
			}
			return Outcome{Kind: OutcomeAccepted, InvoiceNumber: number}
		}
		// A validation result that is present but not a success is a
		// rejection even when it carries no error text; the HTTP status is
		// irrelevant here. An entirely empty object falls through to the
		// remaining heuristics.
		if vr.StatusCode != "" || vr.Status != "" || vr.Error != "" || vr.ErrorCode != "" {
			detail := vr.Error
			if detail == "" {
				detail = extractErrorDetail(&resp)
			}
			if detail == "" {
				switch {
				case vr.ErrorCode != "":
					detail = "authority reported error code " + vr.ErrorCode
				case vr.Status != "":
					detail = "authority reported validation status " + vr.Status
				default:
					detail = "authority reported validation status code " + vr.StatusCode
				}
			}
			return Outcome{Kind: OutcomeRejected, Detail: detail}
		}
	}

	if resp.InvoiceNumber != "" && httpSuccess {
		return Outcome{Kind: OutcomeAccepted, InvoiceNumber: resp.InvoiceNumber}
	}

	if detail := extractErrorDetail(&resp); detail != "" {
		return Outcome{Kind: OutcomeRejected, Detail: detail}
	}

	if httpSuccess {
		return Outcome{Kind: OutcomeAcceptedImplicit, InvoiceNumber: SynthesizeReference()}
	}
	return Outcome{Kind: OutcomeRejected, Detail: fmt.Sprintf("authority returned HTTP %d", statusCode)}
}

// extractErrorDetail collects an error message from the several nested shapes
// rejections have been observed to use.
func extractErrorDetail(resp *authorityResponse) string {
	if detail := rawToString(resp.Error); detail != "" {
		return detail
	}
	if detail := rawToString(resp.Errors); detail != "" {
		return detail
	}
	if resp.Message != "" && !strings.EqualFold(resp.Status, "success") {
		return resp.Message
	}
	return ""
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if msg, ok := obj["message"].(string); ok {
			return msg
		}
	}
	return strings.TrimSpace(string(raw))
}

// SynthesizeReference generates a local reference number used when the
// authority accepts a document without issuing one.
func SynthesizeReference() string {
	return fmt.Sprintf("LOCAL-%d", time.Now().UnixMilli())
}
