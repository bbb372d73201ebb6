package loan

type CheckoutReq struct {
	ItemID         string `json:"item_id" validate:"required"`
	LoanPeriodDays int    `json:"loan_period_days" validate:"required,gt=0"`
}

type RenewReq struct {
	ExtensionDays int `json:"extension_days" validate:"required,gt=0"`
}
