package leetcode

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// GRAPHQL WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// graphQLRequest is the request envelope for the LeetCode GraphQL API.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLError is one entry of the standard GraphQL errors array.
type graphQLError struct {
	Message string `json:"message"`
}

// userProfileResponse is the response envelope for the public profile
// query. A null matched_user means the username does not exist.
type userProfileResponse struct {
	Data struct {
		MatchedUser *MatchedUserDTO `json:"matchedUser"`
	} `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

// MatchedUserDTO contains the public profile fields the bot consumes.
type MatchedUserDTO struct {
	Username          string           `json:"username"`
	SubmitStatsGlobal SubmitStatsDTO   `json:"submitStatsGlobal"`
	Profile           PublicProfileDTO `json:"profile"`
}

// SubmitStatsDTO wraps the accepted-submission counters.
type SubmitStatsDTO struct {
	ACSubmissionNum []SubmissionNumDTO `json:"acSubmissionNum"`
}

// SubmissionNumDTO is one difficulty bucket of the solve counters.
// Difficulty is one of "All", "Easy", "Medium", "Hard".
type SubmissionNumDTO struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// PublicProfileDTO carries optional display fields.
type PublicProfileDTO struct {
	RealName string `json:"realName"`
	Ranking  int    `json:"ranking"`
}

// APIErrorDTO is returned for non-GraphQL transport failures.
type APIErrorDTO struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return fmt.Sprintf("leetcode api error: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is worth another attempt.
func (e *APIErrorDTO) Retryable() bool {
	return e.StatusCode >= 500
}

// userProfileQuery is the GraphQL document for fetching public solve
// statistics. Field selection is deliberately minimal.
const userProfileQuery = `query userPublicProfile($username: String!) {
  matchedUser(username: $username) {
    username
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
    profile {
      realName
      ranking
    }
  }
}`
