package tokens

// stopwords is the closed list of english function words plus collector noise
// terms that carry no clustering signal. Keep it closed: additions change
// clustering output for the same input
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range stopwordList {
		stopwords[w] = struct{}{}
	}
}

var stopwordList = [...]string{
	// english function words
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
	"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
	"its", "did", "yes", "your", "from", "they", "know", "want", "been",
	"good", "much", "some", "time", "very", "when", "come", "here", "just",
	"like", "long", "make", "many", "more", "most", "only", "over", "such",
	"take", "than", "them", "then", "this", "that", "what", "with", "will",
	"would", "there", "their", "about", "which", "could", "other", "after",
	"first", "these", "where", "being", "every", "those", "should", "because",
	"into", "also", "before", "between", "both", "does", "down", "each",
	"even", "have", "having", "again", "itself", "might", "must", "never",
	"once", "same", "still", "through", "under", "until", "upon", "were",
	"while", "whose", "why", "yet", "really", "going", "said", "says",

	// collector and domain noise
	"hn", "reddit", "hackernews", "thread", "post", "posts", "comment",
	"comments", "link", "story", "show", "ask", "tell", "via", "amp",
	"update", "updates", "breaking", "news", "report", "reports",
	"confirmed", "fusion", "megathread", "discussion", "today",
}
