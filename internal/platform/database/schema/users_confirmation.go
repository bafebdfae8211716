package schema

// UserConfirmationTable represents the 'users.confirmation' table
type UserConfirmationTable struct {
	Table      string
	ID         string
	UserID     string
	CodeDigest string
	CreatedAt  string
	UsedAt     string
}

// UserConfirmation is the schema definition for users.confirmation
var UserConfirmation = UserConfirmationTable{
	Table:      "users.confirmation",
	ID:         "id",
	UserID:     "userid",
	CodeDigest: "codedigest",
	CreatedAt:  "createdat",
	UsedAt:     "usedat",
}

func (t UserConfirmationTable) Columns() []string {
	return []string{t.ID, t.UserID, t.CodeDigest, t.CreatedAt, t.UsedAt}
}
