package provisioning

import "context"

// Account is the external authentication identity bound to a staff member.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Iso      string `json:"iso"`
	Nickname string `json:"nickname"`
}

// SignUpForm carries everything the identity service needs to create an
// account. Account holds the raw bind value (email address or phone number);
// canonicalization happens before the request is sent.
type SignUpForm struct {
	AccountType BindType `json:"accountType"`
	Iso         string   `json:"iso"`
	Account     string   `json:"account"`
	Password    string   `json:"password"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
}

// SignUpResult is returned by a successful sign-up.
type SignUpResult struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Client is the identity provisioning contract. Implementations talk to a
// remote account service; all calls may block and honor ctx deadlines.
//
// FindAccountByBind returns (nil, nil) when no account is bound to the value.
// SignUp fails when the bind value is already registered.
// SignDown is idempotent: deactivating an absent account reports success.
type Client interface {
	FindAccountByBind(ctx context.Context, bindType BindType, iso, value string) (*Account, error)
	SignUp(ctx context.Context, form SignUpForm) (*SignUpResult, error)
	SignDown(ctx context.Context, accountID int64) (bool, error)
}
