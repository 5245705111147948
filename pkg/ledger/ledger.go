// Package ledger is a small account book whose operations are instrumented
// with errtrace. It backs the demo command and doubles as an end-to-end
// exercise of class instrumentation, nested calls and deferred settlement.
package ledger

import (
	"sync"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
	"github.com/utkarsh5026/errtrace/pkg/future"
)

// Kind selects the class an account is opened with.
type Kind string

const (
	KindChecking Kind = "checking"
	KindSavings  Kind = "savings"
)

// SavingsMinimum is the balance a savings account may not drop below.
const SavingsMinimum int64 = 100

type (
	initFunc    = func(c *errtrace.Class, id string, opening int64) (*Account, error)
	amountFunc  = func(a *Account, amount int64) error
	balanceFunc = func(a *Account) int64
	settleFunc  = func(a *Account, amount int64) *future.Future[int64]
)

// Account is an instance of the Account class or one of its subclasses.
type Account struct {
	*errtrace.Object

	ID string

	mu      sync.Mutex
	balance int64
	floor   int64
}

// Ledger owns the account classes and the transfer operation.
type Ledger struct {
	Account *errtrace.Class
	Savings *errtrace.Class

	transfer func(from, to *Account, amount int64) error
}

// New returns a ledger whose classes and transfer operation are instrumented
// with opts at construction time.
func New(opts errtrace.InstrumentOptions) *Ledger {
	l := NewUninstrumented()
	errtrace.InstrumentClass(l.Savings, opts)
	l.transfer = errtrace.Instrument("Ledger.Transfer", l.transfer)
	return l
}

// NewUninstrumented returns a ledger with raw classes, for callers that want
// to instrument individual accounts with errtrace.InstrumentObject.
func NewUninstrumented() *Ledger {
	account := errtrace.NewClass("Account", errtrace.Methods{
		errtrace.Initializer: initFunc(initAccount),
		"Balance":            balanceFunc(balance),
		"Deposit":            amountFunc(deposit),
		"Withdraw":           amountFunc(withdraw),
		"Settle":             settleFunc(settle),
	}, nil)

	savings := errtrace.NewClass("Savings", errtrace.Methods{
		"Withdraw": amountFunc(func(a *Account, amount int64) error {
			return savingsWithdraw(account, a, amount)
		}),
	}, account)

	return &Ledger{
		Account:  account,
		Savings:  savings,
		transfer: transfer,
	}
}

// Class returns the class for kind.
func (l *Ledger) Class(kind Kind) (*errtrace.Class, error) {
	switch kind {
	case KindChecking:
		return l.Account, nil
	case KindSavings:
		return l.Savings, nil
	}
	return nil, unknownKindError(kind)
}

// Open creates an account of the given kind through the class initializer.
func (l *Ledger) Open(kind Kind, id string, opening int64) (*Account, error) {
	class, e := l.Class(kind)
	if e != nil {
		return nil, e
	}
	ctor, e := errtrace.MethodOf[initFunc](class, errtrace.Initializer)
	if e != nil {
		return nil, e
	}
	acct, e := ctor(class, id, opening)
	if e != nil {
		return nil, e
	}
	if kind == KindSavings {
		acct.floor = SavingsMinimum
	}
	return acct, nil
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to *Account, amount int64) error {
	return l.transfer(from, to, amount)
}

func transfer(from, to *Account, amount int64) error {
	if e := from.Withdraw(amount); e != nil {
		return e
	}
	return to.Deposit(amount)
}

func initAccount(c *errtrace.Class, id string, opening int64) (*Account, error) {
	if opening < 0 {
		return nil, invalidAmountError("open", opening)
	}
	return &Account{
		Object:  errtrace.NewObject(c),
		ID:      id,
		balance: opening,
	}, nil
}

func balance(a *Account) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func deposit(a *Account, amount int64) error {
	if amount <= 0 {
		return invalidAmountError("deposit", amount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
	return nil
}

func withdraw(a *Account, amount int64) error {
	if amount <= 0 {
		return invalidAmountError("withdraw", amount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return insufficientFundsError(a.ID, a.balance, amount)
	}
	if remaining := a.balance - amount; remaining < a.floor {
		return minimumBalanceError(a.ID, remaining, a.floor)
	}
	a.balance -= amount
	return nil
}

// savingsWithdraw rejects withdrawals that would break the minimum balance,
// then defers to the parent class's Withdraw, which checks the account floor
// again under the account lock.
func savingsWithdraw(parent *errtrace.Class, a *Account, amount int64) error {
	if remaining := a.Balance() - amount; amount > 0 && remaining < SavingsMinimum {
		return minimumBalanceError(a.ID, remaining, SavingsMinimum)
	}
	super, e := errtrace.MethodOf[amountFunc](parent, "Withdraw")
	if e != nil {
		return e
	}
	return super(a, amount)
}

// settle withdraws amount asynchronously and resolves with the new balance.
func settle(a *Account, amount int64) *future.Future[int64] {
	return future.Go(func() (int64, error) {
		if e := a.Withdraw(amount); e != nil {
			return 0, e
		}
		return a.Balance(), nil
	})
}

// Balance returns the current balance.
func (a *Account) Balance() int64 {
	fn, e := errtrace.MethodOf[balanceFunc](a.Object, "Balance")
	if e != nil {
		return 0
	}
	return fn(a)
}

// Deposit adds amount to the account.
func (a *Account) Deposit(amount int64) error {
	return a.invoke("Deposit", amount)
}

// Withdraw removes amount from the account.
func (a *Account) Withdraw(amount int64) error {
	return a.invoke("Withdraw", amount)
}

// Settle withdraws amount in the background.
func (a *Account) Settle(amount int64) *future.Future[int64] {
	fn, e := errtrace.MethodOf[settleFunc](a.Object, "Settle")
	if e != nil {
		return future.Rejected[int64](e)
	}
	return fn(a, amount)
}

func (a *Account) invoke(method string, amount int64) error {
	fn, e := errtrace.MethodOf[amountFunc](a.Object, method)
	if e != nil {
		return e
	}
	return fn(a, amount)
}
