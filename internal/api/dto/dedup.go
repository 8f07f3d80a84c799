package dto

// PostCandidateDTO 待判重的 Reddit 帖子
type PostCandidateDTO struct {
	RedditID  string `json:"reddit_id" validate:"required,max=32"`
	Title     string `json:"title" validate:"required,max=300"`
	Content   string `json:"content"`
	Subreddit string `json:"subreddit" validate:"required,max=64"`
	Author    string `json:"author" validate:"required,max=64"`
}

// OpportunityCandidateDTO 待判重的机会
type OpportunityCandidateDTO struct {
	Title            string `json:"title" validate:"required,max=255"`
	Description      string `json:"description"`
	ProposedSolution string `json:"proposed_solution"`
}

// DuplicateResultDTO 判重结果，未命中时只有 is_duplicate=false
type DuplicateResultDTO struct {
	IsDuplicate bool    `json:"is_duplicate"`
	ExistingID  uint64  `json:"existing_id,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// CleanupResultDTO 重复帖子清理统计
type CleanupResultDTO struct {
	Groups               int      `json:"groups"`
	PostsRemoved         int      `json:"posts_removed"`
	OpportunitiesRemoved int      `json:"opportunities_removed"`
	RemovedPostIDs       []uint64 `json:"removed_post_ids"`
}
