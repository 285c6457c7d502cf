package dto

// AssignCompanyRequest maps a company to a SPOC.
type AssignCompanyRequest struct {
	Company   string `json:"company" validate:"required"`
	SPOCEmail string `json:"spoc_email" validate:"required,email"`
}

// CompaniesResponse lists companies assigned to the caller.
type CompaniesResponse struct {
	Companies []string `json:"companies"`
}

// SPOCSearchResult is one associate returned by a directory search.
type SPOCSearchResult struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
