package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// QuoteErrorCode classifies why a venue failed to quote a pair.
type QuoteErrorCode int

const (
	// QuoteErrUnknown venue reported an error the engine does not recognize.
	QuoteErrUnknown QuoteErrorCode = iota
	// QuoteErrUnsupportedPair the venue cannot route the asset pair.
	QuoteErrUnsupportedPair
	// QuoteErrBelowMinimum sell amount is below the venue minimum.
	QuoteErrBelowMinimum
	// QuoteErrAboveMaximum sell amount exceeds the venue maximum.
	QuoteErrAboveMaximum
	// QuoteErrVenueUnavailable transport-level failure talking to the venue.
	QuoteErrVenueUnavailable
	// QuoteErrMalformedResponse venue returned a body the engine cannot decode.
	QuoteErrMalformedResponse
)

func (c QuoteErrorCode) String() string {
	switch c {
	case QuoteErrUnsupportedPair:
		return "unsupported pair"
	case QuoteErrBelowMinimum:
		return "below minimum amount"
	case QuoteErrAboveMaximum:
		return "above maximum amount"
	case QuoteErrVenueUnavailable:
		return "venue unavailable"
	case QuoteErrMalformedResponse:
		return "malformed response"
	default:
		return "quote failed"
	}
}

// QuoteError is a typed, recoverable quoting failure. The caller may try
// another venue or amount.
type QuoteError struct {
	Venue       string
	Code        QuoteErrorCode
	SellAssetID string
	BuyAssetID  string
	Cause       error
}

func (e *QuoteError) Error() string {
	msg := fmt.Sprintf("%s: %s (%s -> %s)", e.Venue, e.Code, e.SellAssetID, e.BuyAssetID)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *QuoteError) Unwrap() error {
	return e.Cause
}

// NewQuoteError builds a QuoteError for the given venue and pair.
func NewQuoteError(venue string, code QuoteErrorCode, sell, buy Asset, cause error) *QuoteError {
	return &QuoteError{
		Venue:       venue,
		Code:        code,
		SellAssetID: sell.ID(),
		BuyAssetID:  buy.ID(),
		Cause:       cause,
	}
}

// AsQuoteError extracts a *QuoteError from err, wrapping unknown errors so
// aggregation always has a venue-tagged error to record.
func AsQuoteError(venue string, sell, buy Asset, err error) *QuoteError {
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe
	}
	return NewQuoteError(venue, QuoteErrUnknown, sell, buy, err)
}
