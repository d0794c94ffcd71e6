package services

import (
	"math"
	"sort"
)

// FriendScore is one scoreboard row.
type FriendScore struct {
	FriendName      string  `json:"friend_name"`
	TotalAnswers    int64   `json:"total_answers"`
	CorrectAnswers  int64   `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
}

// ScorePercentage rounds correct/total to two decimals, 0 when nothing was answered.
func ScorePercentage(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(correct) * 100 / float64(total)
	return math.Round(pct*100) / 100
}

// rankFriends orders by score descending, then name ascending.
func rankFriends(scores []FriendScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].ScorePercentage != scores[j].ScorePercentage {
			return scores[i].ScorePercentage > scores[j].ScorePercentage
		}
		return scores[i].FriendName < scores[j].FriendName
	})
}
