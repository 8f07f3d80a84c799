package consts

// RedditPost 来源类型
const (
	SourceTypePost    = "post"
	SourceTypeComment = "comment"
)

// DemandCluster 类型
const (
	ClusterKindOpportunity = "opportunity"
	ClusterKindSignal      = "signal"
)

const (
	DefaultNiche = "general"
)

// 去重原因，对外接口直接返回
const (
	ReasonRedditID        = "Exact Reddit ID match"
	ReasonTitleAuthor     = "Same title and author"
	ReasonContentSimilar  = "High content similarity"
	ReasonExactTitle      = "Exact title match"
	ReasonSolutionSimilar = "High description/solution similarity"
)
