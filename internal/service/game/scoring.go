package game

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// 计分常量
const (
	MAX_GUESSER_POINTS = 500
	MIN_GUESSER_POINTS = 50
	FIRST_GUESS_BONUS  = 100
	MAX_DRAWER_POINTS  = 300
)

// CalculateGuesserPoints 按已用时间线性衰减，最低 MIN_GUESSER_POINTS，首个猜中者额外加分
func CalculateGuesserPoints(phaseStartTime time.Time, totalTimeSeconds int, isFirst bool) int {
	return guesserPointsAt(time.Now(), phaseStartTime, totalTimeSeconds, isFirst)
}

func guesserPointsAt(now, phaseStartTime time.Time, totalTimeSeconds int, isFirst bool) int {
	ratio := 1.0
	if totalTimeSeconds > 0 {
		elapsed := now.Sub(phaseStartTime).Seconds()
		ratio = min(max(elapsed, 0)/float64(totalTimeSeconds), 1)
	}

	points := int(math.Round(MAX_GUESSER_POINTS * (1 - ratio)))
	if isFirst {
		points += FIRST_GUESS_BONUS
	}

	return max(MIN_GUESSER_POINTS, points)
}

// StreakMultiplier 以递增后的连胜数为键
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 4:
		return 2.0
	case streak == 3:
		return 1.5
	case streak == 2:
		return 1.25
	default:
		return 1.0
	}
}

type GuesserPoints struct {
	Base       int
	Points     int
	Multiplier float64
}

// CalculateGuesserPointsWithStreak currentStreak 为本次猜中之前的连胜数
func CalculateGuesserPointsWithStreak(phaseStartTime time.Time, totalTimeSeconds int, isFirst bool, currentStreak int) GuesserPoints {
	base := CalculateGuesserPoints(phaseStartTime, totalTimeSeconds, isFirst)
	multiplier := StreakMultiplier(currentStreak + 1)

	return GuesserPoints{
		Base:       base,
		Points:     int(math.Round(float64(base) * multiplier)),
		Multiplier: multiplier,
	}
}

func CalculateDrawerPoints(correctGuessers, totalPlayers int) int {
	if totalPlayers <= 1 || correctGuessers <= 0 {
		return 0
	}

	return int(math.Round(MAX_DRAWER_POINTS * float64(correctGuessers) / float64(totalPlayers-1)))
}

type RoundScore struct {
	PlayerID         string `json:"player_id"`
	PlayerName       string `json:"player_name"`
	Score            int    `json:"score"`
	IsDrawer         bool   `json:"is_drawer"`
	GuessedCorrectly bool   `json:"guessed_correctly"`
	CurrentStreak    int    `json:"current_streak"`
}

// RoundScores 按分数降序，同分保持加入顺序
func RoundScores(room *Room) []RoundScore {
	scores := make([]RoundScore, 0, room.PlayerCount())
	for _, p := range room.PlayerList() {
		scores = append(scores, RoundScore{
			PlayerID:         p.ID,
			PlayerName:       p.Name,
			Score:            p.Score,
			IsDrawer:         slices.Contains(room.State.RoundDrawerIDs, p.ID),
			GuessedCorrectly: room.State.HasGuessedCorrectly(p.ID),
			CurrentStreak:    p.CurrentStreak,
		})
	}

	slices.SortStableFunc(scores, func(a, b RoundScore) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return scores
}

type FinalScore struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	Rank       int    `json:"rank"`
	MaxStreak  int    `json:"max_streak"`
}

func FinalScores(room *Room) []FinalScore {
	scores := make([]FinalScore, 0, room.PlayerCount())
	for _, p := range room.PlayerList() {
		scores = append(scores, FinalScore{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Score:      p.Score,
			MaxStreak:  p.MaxStreak,
		})
	}

	slices.SortStableFunc(scores, func(a, b FinalScore) int {
		return cmp.Compare(b.Score, a.Score)
	})

	for i := range scores {
		scores[i].Rank = i + 1
	}

	return scores
}
