package entities

// Columns lists the source dataset columns in the order a LoanRecord is decoded.
var Columns = []string{
	"person_age",
	"person_gender",
	"person_education",
	"person_income",
	"person_emp_exp",
	"person_home_ownership",
	"loan_amnt",
	"loan_intent",
	"loan_int_rate",
	"loan_percent_income",
	"cb_person_cred_hist_length",
	"credit_score",
	"previous_loan_defaults_on_file",
	"loan_status",
}

// ColumnCount is the number of columns a row must carry to become a LoanRecord
const ColumnCount = 14

// LoanRecord is a single applicant row.
// Numeric attributes are nil when the source value did not parse; string
// attributes are kept exactly as ingested (no trimming or case folding).
type LoanRecord struct {
	PersonAge                  *uint32  `json:"person_age,omitempty"`
	PersonGender               string   `json:"person_gender"`
	PersonEducation            string   `json:"person_education"`
	PersonIncome               *float64 `json:"person_income,omitempty"`
	PersonEmpExp               *float64 `json:"person_emp_exp,omitempty"`
	PersonHomeOwnership        string   `json:"person_home_ownership"`
	LoanAmount                 *float64 `json:"loan_amnt,omitempty"`
	LoanIntent                 string   `json:"loan_intent"`
	LoanIntRate                *float64 `json:"loan_int_rate,omitempty"`
	LoanPercentIncome          *float64 `json:"loan_percent_income,omitempty"`
	CreditHistoryLength        *uint32  `json:"cb_person_cred_hist_length,omitempty"`
	CreditScore                *uint32  `json:"credit_score,omitempty"`
	PreviousLoanDefaultsOnFile *uint8   `json:"previous_loan_defaults_on_file,omitempty"`
	LoanStatus                 *uint8   `json:"loan_status,omitempty"`
}

// Education returns the education category used for similarity
func (r *LoanRecord) Education() string {
	return r.PersonEducation
}

// Intent returns the loan-intent category used for similarity
func (r *LoanRecord) Intent() string {
	return r.LoanIntent
}
