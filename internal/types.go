package internal

import "fmt"

// Credentials is the access key / secret / session token triple that signs
// requests. A zero SessionToken means the credentials are long-lived.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey Secret
	SessionToken    Secret
}

// Profile is a named set of credentials stored in the credentials file.
type Profile struct {
	Name string
	Credentials
}

// Identity is what STS resolves a set of credentials to.
type Identity struct {
	ARN     string `json:"arn"`
	UserID  string `json:"user_id"`
	Account string `json:"account"`
}

// Display renders the identity for direct display to a user.
func (i *Identity) Display() string {
	return fmt.Sprintf("ARN: %s, User ID: %s, Account: %s", i.ARN, i.UserID, i.Account)
}

func (i *Identity) String() string {
	return i.Display()
}
