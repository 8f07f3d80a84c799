package util

import (
	"Opportune/internal/api/dto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDTO(t *testing.T) {
	ok := &dto.PostCandidateDTO{RedditID: "r1", Title: "t", Subreddit: "SaaS", Author: "a"}
	assert.NoError(t, ValidateDTO(ok))

	missing := &dto.PostCandidateDTO{Title: "t", Subreddit: "SaaS", Author: "a"}
	err := ValidateDTO(missing)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "RedditID")

	badKind := &dto.ListClustersDTO{Kind: "bogus"}
	assert.ErrorIs(t, ValidateDTO(badKind), ErrValidation)

	draft := &dto.OpportunityDraftDTO{
		OpportunityCandidateDTO: dto.OpportunityCandidateDTO{Title: "x"},
		Scores:                  dto.SubScoresDTO{MarketDemand: 11},
	}
	assert.ErrorIs(t, ValidateDTO(draft), ErrValidation)
}
