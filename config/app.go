package config

// App holds process-wide configuration. Borrowing policy values are loaded
// once at startup and never mutated afterwards.
type App struct {
	Port      string `env:"APP_PORT" default:"8080"`
	JWTSecret string `env:"JWT_SECRET,required"`
	Env       string `env:"APP_ENV" default:"dev"`

	MaxActiveLoans int `env:"MAX_ACTIVE_LOANS" default:"10"`
	MinLoanDays    int `env:"MIN_LOAN_DAYS" default:"1"`
	MaxLoanDays    int `env:"MAX_LOAN_DAYS" default:"21"`
	MaxRenewals    int `env:"MAX_RENEWALS" default:"2"`
	TokenTTLHours  int `env:"TOKEN_TTL_HOURS" default:"24"`
}
