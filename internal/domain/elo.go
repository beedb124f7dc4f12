package domain

import "math"

const KFactor = 32.0

const DefaultRating = 1000

// Score values for CalculateElo.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// CalculateElo returns the new rating for player A.
// score is 1.0 for a win, 0.5 for a draw, and 0.0 for a loss.
func CalculateElo(ratingA, ratingB int, score float64) int {
	expectedScoreA := 1.0 / (1.0 + math.Pow(10.0, float64(ratingB-ratingA)/400.0))
	newRating := float64(ratingA) + KFactor*(score-expectedScoreA)

	if newRating < 0 {
		return 0
	}
	return int(math.Round(newRating))
}

// RatePair updates both ratings of a finished game from A's point of view.
func RatePair(ratingA, ratingB int, scoreA float64) (int, int) {
	return CalculateElo(ratingA, ratingB, scoreA), CalculateElo(ratingB, ratingA, 1-scoreA)
}
