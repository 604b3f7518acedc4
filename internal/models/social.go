package models

import "time"

// ForumPost is one forum-style (WSB) comment sample for a symbol.
type ForumPost struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Upvotes   int       `json:"upvotes"`
	Sentiment string    `json:"sentiment"`
	PostedAt  time.Time `json:"posted_at"`
}

// MicroblogPost is one microblog-style (X) mention sample for a symbol.
type MicroblogPost struct {
	Author    string    `json:"author"`
	Followers int       `json:"followers"`
	Body      string    `json:"body"`
	Likes     int       `json:"likes"`
	Reposts   int       `json:"reposts"`
	Verified  bool      `json:"verified"`
	PostedAt  time.Time `json:"posted_at"`
}

// EngagementTotals aggregates engagement counts across both feeds.
type EngagementTotals struct {
	ForumUpvotes    int `json:"forum_upvotes"`
	MicroblogLikes  int `json:"microblog_likes"`
	MicroblogShares int `json:"microblog_shares"`
}

// SocialContext is the aggregated social snapshot for one symbol.
// OverallSentiment is a majority rule over the forum sample only; the
// microblog sample is carried for display and prompting but does not
// influence the label.
type SocialContext struct {
	Symbol           string           `json:"symbol"`
	TotalMentions    int              `json:"total_mentions"`
	OverallSentiment string           `json:"overall_sentiment"`
	ForumPosts       []ForumPost      `json:"forum_posts"`
	MicroblogPosts   []MicroblogPost  `json:"microblog_posts"`
	Engagement       EngagementTotals `json:"engagement"`
}
