package schema

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table    string
	ID       string
	ReviewID string
	UserID   string
	Text     string
	PubDate  string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:    "social.comment",
	ID:       "id",
	ReviewID: "reviewid",
	UserID:   "userid",
	Text:     "text",
	PubDate:  "pubdate",
}

func (t SocialCommentTable) Columns() []string {
	return []string{t.ID, t.ReviewID, t.UserID, t.Text, t.PubDate}
}
