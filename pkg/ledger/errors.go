package ledger

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/utkarsh5026/errtrace/pkg/common/err"
)

const (
	// Package name for error reporting
	pkgName = "ledger"
)

// Error codes for ledger operations
const (
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeMinimumBalance    = "MINIMUM_BALANCE"
	CodeUnknownKind       = "UNKNOWN_KIND"
)

// newError builds a ledger error carrying the stack of its caller.
func newError(code, op, message string) error {
	return errors.WithStack(err.New(pkgName, code, op, message, nil))
}

func invalidAmountError(op string, amount int64) error {
	return newError(CodeInvalidAmount, op, fmt.Sprintf("amount must be positive, got %d", amount))
}

func insufficientFundsError(id string, balance, amount int64) error {
	return newError(CodeInsufficientFunds, "withdraw",
		fmt.Sprintf("account %s has %d, cannot withdraw %d", id, balance, amount))
}

func minimumBalanceError(id string, remaining, minimum int64) error {
	return newError(CodeMinimumBalance, "withdraw",
		fmt.Sprintf("savings account %s would drop to %d, minimum is %d", id, remaining, minimum))
}

func unknownKindError(kind Kind) error {
	return newError(CodeUnknownKind, "open", fmt.Sprintf("unknown account kind %q", kind))
}
