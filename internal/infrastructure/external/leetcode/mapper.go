package leetcode

import (
	"fmt"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - wire DTOs to domain types
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts LeetCode API DTOs into domain value objects.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToSubmissionCounts extracts per-difficulty solve counters. The "All"
// bucket is redundant and ignored; an unknown difficulty label is a
// contract change upstream and surfaces as an error.
func (m *Mapper) ToSubmissionCounts(dto *MatchedUserDTO) (user.SubmissionCounts, error) {
	var counts user.SubmissionCounts

	for _, bucket := range dto.SubmitStatsGlobal.ACSubmissionNum {
		switch bucket.Difficulty {
		case "All":
			// Derived total, recomputed locally.
		case "Easy":
			counts.Easy = bucket.Count
		case "Medium":
			counts.Medium = bucket.Count
		case "Hard":
			counts.Hard = bucket.Count
		default:
			return user.SubmissionCounts{}, fmt.Errorf("unknown difficulty bucket %q", bucket.Difficulty)
		}
	}

	if !counts.IsValid() {
		return user.SubmissionCounts{}, fmt.Errorf("negative counters in response: %s", counts)
	}
	return counts, nil
}
