package dex

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match with errors.Is against an *Error or anything wrapping one.
var (
	ErrUnsupportedChain     = errors.New("unsupported chain")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidSlippage      = errors.New("invalid slippage")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrQuoteFetch           = errors.New("quote fetch failed")
	ErrQuoteExpired         = errors.New("quote expired")
	ErrQuoteConsumed        = errors.New("quote already used")
	ErrRiskRejected         = errors.New("rejected by risk policy")
	ErrTransactionBuild     = errors.New("transaction build failed")
	ErrUnsupportedRecipient = errors.New("recipient redirection unsupported")
	ErrSimulation           = errors.New("transaction simulation failed")
	ErrSigning              = errors.New("signing failed")
	ErrSubmission           = errors.New("submission failed")
	ErrTransactionFailed    = errors.New("transaction failed on-chain")
	ErrTransactionExpired   = errors.New("transaction expired before landing")
	ErrUnknownProvider      = errors.New("unknown provider")
)

// Stage is the pipeline step an error was raised in.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageQuote     Stage = "quote"
	StageRisk      Stage = "risk"
	StageRecipient Stage = "recipient"
	StageBuild     Stage = "build"
	StageSimulate  Stage = "simulate"
	StageSign      Stage = "sign"
	StageSubmit    Stage = "submit"
	StageConfirm   Stage = "confirm"
)

// Category groups kinds by who is at fault and whether a retry is safe.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryUpstream      Category = "upstream"
	CategoryAuthorization Category = "authorization"
	CategoryNetwork       Category = "network"
	CategoryUnsupported   Category = "unsupported"
	CategoryOnChain       Category = "onchain"
	CategoryPolicy        Category = "policy"
)

var categories = map[error]Category{
	ErrUnsupportedChain:     CategoryValidation,
	ErrInvalidToken:         CategoryValidation,
	ErrInvalidAmount:        CategoryValidation,
	ErrInvalidSlippage:      CategoryValidation,
	ErrInvalidRecipient:     CategoryValidation,
	ErrUnknownProvider:      CategoryValidation,
	ErrQuoteFetch:           CategoryUpstream,
	ErrQuoteExpired:         CategoryUpstream,
	ErrTransactionBuild:     CategoryUpstream,
	ErrSimulation:           CategoryUpstream,
	ErrSigning:              CategoryAuthorization,
	ErrSubmission:           CategoryNetwork,
	ErrUnsupportedRecipient: CategoryUnsupported,
	ErrTransactionFailed:    CategoryOnChain,
	ErrTransactionExpired:   CategoryOnChain,
	ErrQuoteConsumed:        CategoryPolicy,
	ErrRiskRejected:         CategoryPolicy,
}

// Error is the staged error every provider operation returns.
type Error struct {
	Stage      Stage
	Kind       error
	StatusCode int    // upstream HTTP status, 0 if none
	Signature  string // set once a transaction was submitted
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Stage, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Signature != "" {
		fmt.Fprintf(&b, " [tx %s]", e.Signature)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Category classifies the error kind.
func (e *Error) Category() Category {
	if c, ok := categories[e.Kind]; ok {
		return c
	}
	return CategoryUpstream
}

// Retryable reports whether re-running the whole operation from QUOTE is safe.
// Submission errors are excluded: the outcome is ambiguous until confirmation is checked.
func (e *Error) Retryable() bool {
	switch e.Category() {
	case CategoryUpstream:
		return true
	case CategoryOnChain:
		return errors.Is(e.Kind, ErrTransactionExpired)
	}
	return false
}

func newError(stage Stage, kind error, format string, args ...any) *Error {
	return &Error{Stage: stage, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Validation builds a validate-stage error of the given kind.
func Validation(kind error, format string, args ...any) *Error {
	return newError(StageValidate, kind, format, args...)
}

// StageErr builds an error for stage with an underlying cause.
func StageErr(stage Stage, kind error, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Err: err}
}

// AsError extracts the staged error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
