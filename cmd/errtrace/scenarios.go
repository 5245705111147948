package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
	"github.com/utkarsh5026/errtrace/pkg/ledger"
)

// scenario runs one demonstration and returns the error it ends with.
type scenario struct {
	summary string
	run     func(ctx context.Context) error
}

var scenarios = map[string]scenario{
	"sync": {
		summary: "a single instrumented function returns an error",
		run: func(ctx context.Context) error {
			bar := errtrace.Instrument("Foo.bar", func() error { return errors.New("x") })
			return bar()
		},
	},
	"panic": {
		summary: "an instrumented function panics with an error",
		run: func(ctx context.Context) (err error) {
			crash := errtrace.Instrument("Worker.Run", func(job string) {
				panic(pkgerrors.Errorf("worker crashed on %s", job))
			})
			defer func() {
				if r := recover(); r != nil {
					e, ok := r.(error)
					if !ok {
						panic(r)
					}
					err = e
				}
			}()
			crash("resize-images")
			return nil
		},
	},
	"nested": {
		summary: "a transfer fails two instrumented calls deep",
		run: func(ctx context.Context) error {
			l := ledger.New(errtrace.InstrumentOptions{})
			from, err := l.Open(ledger.KindSavings, "savings-1", 250)
			if err != nil {
				return err
			}
			to, err := l.Open(ledger.KindChecking, "checking-1", 0)
			if err != nil {
				return err
			}
			return l.Transfer(from, to, 200)
		},
	},
	"class": {
		summary: "a subclass method defers to its instrumented parent",
		run: func(ctx context.Context) error {
			l := ledger.New(errtrace.InstrumentOptions{})
			acct, err := l.Open(ledger.KindSavings, "savings-1", 1000)
			if err != nil {
				return err
			}
			return acct.Withdraw(-20)
		},
	},
	"deferred": {
		summary: "a background settlement fails",
		run: func(ctx context.Context) error {
			l := ledger.New(errtrace.InstrumentOptions{})
			acct, err := l.Open(ledger.KindChecking, "checking-1", 40)
			if err != nil {
				return err
			}
			_, err = acct.Settle(90).Await(ctx)
			return err
		},
	},
	"shadow": {
		summary: "one account is instrumented on the instance only",
		run: func(ctx context.Context) error {
			l := ledger.NewUninstrumented()
			acct, err := l.Open(ledger.KindChecking, "checking-1", 10)
			if err != nil {
				return err
			}
			errtrace.InstrumentObject(acct.Object, errtrace.InstrumentOptions{CopyMethodsToInstance: true})
			return acct.Withdraw(15)
		},
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupScenario(name string) (scenario, error) {
	s, ok := scenarios[name]
	if !ok {
		return scenario{}, fmt.Errorf("unknown scenario %q (available: %v)", name, scenarioNames())
	}
	return s, nil
}
