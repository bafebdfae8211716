package schema

// SocialReviewTable represents the 'social.review' table
type SocialReviewTable struct {
	Table   string
	ID      string
	TitleID string
	UserID  string
	Text    string
	Score   string
	PubDate string
}

// SocialReview is the schema definition for social.review
var SocialReview = SocialReviewTable{
	Table:   "social.review",
	ID:      "id",
	TitleID: "titleid",
	UserID:  "userid",
	Text:    "text",
	Score:   "score",
	PubDate: "pubdate",
}

func (t SocialReviewTable) Columns() []string {
	return []string{t.ID, t.TitleID, t.UserID, t.Text, t.Score, t.PubDate}
}
