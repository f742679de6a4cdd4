package service

import (
	"testing"

	"lms_portal_backend/internal/model"
)

func attemptFor(user *model.User, score int, passed bool) model.QuizAttempt {
	return model.QuizAttempt{
		UserID:        user.ID,
		QuizID:        "quiz-1",
		ScoreObtained: score,
		IsPassed:      passed,
		User:          user,
	}
}

func TestAggregateAttemptsFoldsPerUser(t *testing.T) {
	alice := &model.User{Username: "alice", BonusPoints: 20}
	alice.ID = 1
	bob := &model.User{Username: "bob", BonusPoints: 10}
	bob.ID = 2

	entries := AggregateAttempts([]model.QuizAttempt{
		attemptFor(alice, 8, true),
		attemptFor(bob, 10, true),
		attemptFor(alice, 6, false),
	})

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// alice 奖励积分更高，排第一
	first := entries[0]
	if first.UserID != 1 || first.Rank != 1 {
		t.Fatalf("expected alice ranked first, got %+v", first)
	}
	if first.TotalScore != 14 || first.TotalAttempts != 2 || first.TotalPassedQuizzes != 1 {
		t.Fatalf("unexpected alice totals: %+v", first)
	}
	if first.AverageScore != 7.00 {
		t.Fatalf("expected average 7.00, got %v", first.AverageScore)
	}
	if first.CurrentBonusPoints != 20 {
		t.Fatalf("expected current bonus 20, got %d", first.CurrentBonusPoints)
	}

	second := entries[1]
	if second.UserID != 2 || second.Rank != 2 || second.AverageScore != 10.00 {
		t.Fatalf("unexpected bob entry: %+v", second)
	}
}

func TestAggregateAttemptsAverageRounding(t *testing.T) {
	user := &model.User{Username: "carol"}
	user.ID = 3

	// 10/3 = 3.333... → 3.33
	entries := AggregateAttempts([]model.QuizAttempt{
		attemptFor(user, 3, false),
		attemptFor(user, 3, false),
		attemptFor(user, 4, false),
	})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].AverageScore != 3.33 {
		t.Fatalf("expected average 3.33, got %v", entries[0].AverageScore)
	}
}

func TestAggregateAttemptsBonusPointsBeforeAverage(t *testing.T) {
	// 低平均分但高奖励积分的用户排在前面
	grinder := &model.User{Username: "grinder", BonusPoints: 100}
	grinder.ID = 1
	ace := &model.User{Username: "ace", BonusPoints: 10}
	ace.ID = 2

	entries := AggregateAttempts([]model.QuizAttempt{
		attemptFor(grinder, 2, false),
		attemptFor(ace, 10, true),
	})

	if entries[0].UserID != 1 {
		t.Fatalf("bonus points must dominate ordering, got %+v", entries)
	}
}

func TestAggregateAttemptsTieBreaksByUserID(t *testing.T) {
	a := &model.User{Username: "a", BonusPoints: 10}
	a.ID = 7
	b := &model.User{Username: "b", BonusPoints: 10}
	b.ID = 3

	entries := AggregateAttempts([]model.QuizAttempt{
		attemptFor(a, 5, false),
		attemptFor(b, 5, false),
	})

	if entries[0].UserID != 3 || entries[1].UserID != 7 {
		t.Fatalf("equal keys must order by user id ascending, got %+v", entries)
	}
}

func TestAggregateAttemptsSkipsOrphanRecords(t *testing.T) {
	user := &model.User{Username: "dave"}
	user.ID = 4

	entries := AggregateAttempts([]model.QuizAttempt{
		{UserID: 99, QuizID: "quiz-1", ScoreObtained: 10}, // 无用户资料
		attemptFor(user, 5, false),
	})

	if len(entries) != 1 || entries[0].UserID != 4 {
		t.Fatalf("orphan attempts must be skipped, got %+v", entries)
	}
}

func TestAggregateAttemptsEmpty(t *testing.T) {
	entries := AggregateAttempts(nil)
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}
