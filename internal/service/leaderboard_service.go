package service

import (
	"math"
	"sort"

	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/repository"
)

// LeaderboardEntry 按用户聚合的测验表现，每次请求重新计算，不落库
type LeaderboardEntry struct {
	UserID             uint    `json:"userId"`
	Name               string  `json:"name"`
	Avatar             string  `json:"avatar"`
	TotalScore         int     `json:"totalScore"`
	TotalAttempts      int     `json:"totalAttempts"`
	TotalPassedQuizzes int     `json:"totalPassedQuizzes"`
	AverageScore       float64 `json:"averageScore"`
	CurrentBonusPoints int     `json:"currentBonusPoints"`
	Rank               int     `json:"rank"`
}

type LeaderboardService struct {
	AttemptRepo *repository.AttemptRepository
}

func NewLeaderboardService(attemptRepo *repository.AttemptRepository) *LeaderboardService {
	return &LeaderboardService{AttemptRepo: attemptRepo}
}

func (s *LeaderboardService) GetLeaderboard() ([]LeaderboardEntry, error) {
	attempts, err := s.AttemptRepo.ListAllWithUsers()
	if err != nil {
		return nil, err
	}
	return AggregateAttempts(attempts), nil
}

// AggregateAttempts 把全部答题记录折叠成每用户一条的排行数据。
// 关联不到用户资料的记录整条跳过。奖励积分取用户资料的当前值
// （同一用户多条记录反复覆盖，结果与遍历顺序无关）。
// 排序键：奖励积分降序、平均分降序、用户 id 升序。
func AggregateAttempts(attempts []model.QuizAttempt) []LeaderboardEntry {
	acc := make(map[uint]*LeaderboardEntry)

	for i := range attempts {
		a := &attempts[i]
		if a.User == nil {
			continue
		}

		entry, ok := acc[a.UserID]
		if !ok {
			entry = &LeaderboardEntry{
				UserID: a.UserID,
				Name:   a.User.DisplayName(),
				Avatar: a.User.Avatar,
			}
			acc[a.UserID] = entry
		}

		entry.TotalScore += a.ScoreObtained
		entry.TotalAttempts++
		if a.IsPassed {
			entry.TotalPassedQuizzes++
		}
		entry.CurrentBonusPoints = a.User.BonusPoints
	}

	entries := make([]LeaderboardEntry, 0, len(acc))
	for _, entry := range acc {
		if entry.TotalAttempts > 0 {
			avg := float64(entry.TotalScore) / float64(entry.TotalAttempts)
			entry.AverageScore = math.Round(avg*100) / 100
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CurrentBonusPoints != entries[j].CurrentBonusPoints {
			return entries[i].CurrentBonusPoints > entries[j].CurrentBonusPoints
		}
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
