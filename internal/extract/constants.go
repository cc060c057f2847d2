package extract

import "time"

// Default values for the Gemini extraction calls.
const (
	// DefaultStatementModel parses statement text.
	DefaultStatementModel = "gemini-2.5-flash"

	// DefaultReceiptModel reads receipt photos.
	DefaultReceiptModel = "gemini-2.5-flash"

	// DefaultTimeout bounds a single model call.
	DefaultTimeout = 90 * time.Second

	systemInstruction = "You are a precise data extraction assistant for financial documents."
)
