package intel

// Result shapes returned by the query surface. Name fields are filled by
// the enrichment layer when a name source is wired; otherwise they stay
// empty and are omitted from JSON.

// Expert is a ranked author within one community.
type Expert struct {
	Address    string  `json:"address"`
	Name       string  `json:"name,omitempty"`
	PostCount  int     `json:"postCount"`
	TotalScore int     `json:"totalScore"`
	AvgScore   float64 `json:"avgScore"`
}

// RelatedCommunity is a community sharing authors with the query target.
type RelatedCommunity struct {
	Community    string  `json:"community"`
	SharedAgents int     `json:"sharedAgents"`
	Relatedness  float64 `json:"relatedness"`
}

// TrustPath is the outcome of a bounded attestation-graph search.
type TrustPath struct {
	Path  []string `json:"path"`
	Depth int      `json:"depth"`
	Found bool     `json:"found"`
}

// BridgeAgent posts in both of two queried communities.
type BridgeAgent struct {
	Address       string `json:"address"`
	Name          string `json:"name,omitempty"`
	ScoreInA      int    `json:"scoreInA"`
	ScoreInB      int    `json:"scoreInB"`
	CombinedScore int    `json:"combinedScore"`
}

// TopicEntry is one community of an agent's posting profile.
type TopicEntry struct {
	Community  string `json:"community"`
	PostCount  int    `json:"postCount"`
	TotalScore int    `json:"totalScore"`
}

// ConsensusPost is a top-scored active post in a community.
type ConsensusPost struct {
	CID        string `json:"cid"`
	Author     string `json:"author"`
	AuthorName string `json:"authorName,omitempty"`
	Score      int    `json:"score"`
	Upvotes    int    `json:"upvotes"`
	Downvotes  int    `json:"downvotes"`
}

// CommunityHealth is an activity summary; zero-filled for an unknown
// community.
type CommunityHealth struct {
	Community     string   `json:"community"`
	TotalPosts    int      `json:"totalPosts"`
	UniqueAuthors int      `json:"uniqueAuthors"`
	AvgScore      float64  `json:"avgScore"`
	TopCIDs       []string `json:"topCids"`
}

// TrendingCommunity carries posting velocity over two adjacent windows.
type TrendingCommunity struct {
	Community     string  `json:"community"`
	CurrentPosts  int     `json:"currentPosts"`
	PreviousPosts int     `json:"previousPosts"`
	Velocity      float64 `json:"velocity"`
	CurrentVotes  int     `json:"currentVotes"`
}

// Collaborator is a mutual voting partner of an agent.
type Collaborator struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Given       int    `json:"given"`
	Received    int    `json:"received"`
	CollabScore int    `json:"collabScore"`
}

// RankedAgent is one row of a PageRank ranking.
type RankedAgent struct {
	Address string  `json:"address"`
	Name    string  `json:"name,omitempty"`
	Score   float64 `json:"score"`
}

// EmergingAgent registered recently and is ranked by posting rate.
type EmergingAgent struct {
	Address               string  `json:"address"`
	Name                  string  `json:"name,omitempty"`
	PostCount             int     `json:"postCount"`
	DaysSinceRegistration int     `json:"daysSinceRegistration"`
	ActivityRate          float64 `json:"activityRate"`
}

// CitationDirection selects which way a citation tree is walked.
type CitationDirection string

const (
	// DirectionOutbound follows citations the root makes.
	DirectionOutbound CitationDirection = "outbound"
	// DirectionInbound follows citations of the root.
	DirectionInbound CitationDirection = "inbound"
)

// CitationNode is one node of a rooted citation tree.
type CitationNode struct {
	CID      string          `json:"cid"`
	Depth    int             `json:"depth"`
	Children []*CitationNode `json:"children,omitempty"`
}

// LineageStep is one hop of an influence lineage chain.
type LineageStep struct {
	CID       string `json:"cid"`
	Community string `json:"community,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// CitedContent is a ranked content item. MostCited and CitationBridges
// leave PageRank at 0; only CitationPageRank computes it.
type CitedContent struct {
	CID           string  `json:"cid"`
	PageRank      float64 `json:"pageRank"`
	CitationCount int     `json:"citationCount"`
}
