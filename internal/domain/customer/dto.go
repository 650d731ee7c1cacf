// internal/domain/customer/dto.go
package customer

// AccountView is what a customer sees about their own account.
type AccountView struct {
	FullName    string  `json:"full_name"`
	Plan        string  `json:"plan"`
	Speed       string  `json:"speed"`
	MonthlyFee  float64 `json:"monthly_fee"`
	CurrentDebt float64 `json:"current_debt"`
	Status      string  `json:"status"`
	Zone        string  `json:"zone,omitempty"`
}
