package dto

// CreateFiscalPeriodRequest defines the data needed to open a new fiscal period.
// Dates use the YYYY-MM-DD layout and are inclusive.
type CreateFiscalPeriodRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	StartDate  string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" binding:"required,datetime=2006-01-02"`
	FiscalYear int    `json:"fiscalYear" binding:"required,min=1900,max=9999"`
}

// ListFiscalPeriodsParams defines query parameters for listing periods.
type ListFiscalPeriodsParams struct {
	FiscalYear *int `form:"fiscalYear"`
}
