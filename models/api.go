package models

// APIPublicMetrics mirrors the public_metrics object returned by the posts endpoint.
type APIPublicMetrics struct {
	ImpressionCount int64 `json:"impression_count"`
	LikeCount       int64 `json:"like_count"`
	RetweetCount    int64 `json:"retweet_count"`
	ReplyCount      int64 `json:"reply_count"`
	BookmarkCount   int64 `json:"bookmark_count"`
	QuoteCount      int64 `json:"quote_count"`
}

// APIReferencedTweet links a post to another post (reply, quote, repost).
type APIReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// APIPost is one already-decoded post from the remote analytics service.
type APIPost struct {
	ID               string               `json:"id" validate:"required"`
	Text             string               `json:"text"`
	CreatedAt        string               `json:"created_at"`
	PublicMetrics    APIPublicMetrics     `json:"public_metrics"`
	ReferencedTweets []APIReferencedTweet `json:"referenced_tweets,omitempty"`
}

// APIProfile is the subset of the user profile the pipeline consumes.
type APIProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Followers int64  `json:"followers_count"`
	Following int64  `json:"following_count"`
	Posts     int64  `json:"tweet_count"`
}
