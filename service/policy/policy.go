// Package policy holds the borrowing rules. Pure limit checks, no state;
// the lending engine consults these before any mutation so rule changes
// stay isolated from lifecycle mechanics.
package policy

import "github.com/Danny213123/cps714-group5/config"

type Rules struct {
	MaxActiveLoans int
	MinLoanDays    int
	MaxLoanDays    int
	MaxRenewals    int
}

func Default() Rules {
	return Rules{MaxActiveLoans: 10, MinLoanDays: 1, MaxLoanDays: 21, MaxRenewals: 2}
}

func FromConfig(cfg config.App) Rules {
	return Rules{
		MaxActiveLoans: cfg.MaxActiveLoans,
		MinLoanDays:    cfg.MinLoanDays,
		MaxLoanDays:    cfg.MaxLoanDays,
		MaxRenewals:    cfg.MaxRenewals,
	}
}

func (r Rules) IsValidLoanPeriod(days int) bool {
	return days >= r.MinLoanDays && days <= r.MaxLoanDays
}

func (r Rules) CanCheckout(activeLoans int) bool {
	return activeLoans < r.MaxActiveLoans
}

func (r Rules) CanRenew(renewals int) bool {
	return renewals < r.MaxRenewals
}
