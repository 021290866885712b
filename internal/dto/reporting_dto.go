package dto

// AgingParams defines query parameters for the aging reports.
// AsOf defaults to today.
type AgingParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// AccountBalanceParams defines query parameters for an account balance.
// AsOf defaults to today.
type AccountBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}
