package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/util"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestStore(t *testing.T) (*RedisAttemptStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisAttemptStore(client, time.Minute), mr
}

func TestRedisAttemptStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := NewAttemptSession("quiz-1")
	session.Answers["q1"] = "q1-option-0"
	session.Cursor = 1

	if err := store.Save(ctx, 42, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:attempt:42:quiz-1") {
		t.Fatal("expected redis key to be set")
	}

	loaded, err := store.Get(ctx, 42, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected session to be found")
	}
	if loaded.Cursor != 1 || loaded.Answers["q1"] != "q1-option-0" {
		t.Fatalf("session did not round-trip: %+v", loaded)
	}
}

func TestRedisAttemptStoreMissReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	session, err := store.Get(context.Background(), 1, "no-such-quiz")
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil session on miss, got %+v", session)
	}
}

func TestRedisAttemptStoreDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, NewAttemptSession("quiz-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, 1, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:attempt:1:quiz-1") {
		t.Fatal("expected key to be removed")
	}

	session, err := store.Get(ctx, 1, "quiz-1")
	if err != nil || session != nil {
		t.Fatalf("deleted session must read as a miss, got %v, %v", session, err)
	}
}

func TestRedisAttemptStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, NewAttemptSession("quiz-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	// 过期的会话视同未开始
	mr.FastForward(2 * time.Minute)
	session, err := store.Get(ctx, 1, "quiz-1")
	if err != nil || session != nil {
		t.Fatalf("expired session must read as a miss, got %v, %v", session, err)
	}
}

func TestRedisAttemptStoreKeysArePerUserAndQuiz(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	s1 := NewAttemptSession("quiz-1")
	s1.Answers["q1"] = "a"
	s2 := NewAttemptSession("quiz-1")
	s2.Answers["q1"] = "b"

	if err := store.Save(ctx, 1, s1); err != nil {
		t.Fatalf("save user 1: %v", err)
	}
	if err := store.Save(ctx, 2, s2); err != nil {
		t.Fatalf("save user 2: %v", err)
	}

	got1, _ := store.Get(ctx, 1, "quiz-1")
	got2, _ := store.Get(ctx, 2, "quiz-1")
	if got1.Answers["q1"] != "a" || got2.Answers["q1"] != "b" {
		t.Fatalf("sessions must not bleed across users: %+v / %+v", got1, got2)
	}
}

// 两道单选题的测验，通过线 2 分，正确答案都是第 0 项
func flowTestService(t *testing.T) (*QuizService, *fakeAttemptStore, *fakeBonusLedger) {
	t.Helper()
	store, _ := newTestStore(t)

	idx := 0
	options, err := json.Marshal([]string{"A", "B"})
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}

	passScore := 2
	quiz := &model.Quiz{Title: "flow", PassScore: &passScore}
	quiz.ID = "quiz-1"

	q1 := model.Question{
		QuizID:             "quiz-1",
		QuestionType:       model.MultipleChoice,
		Content:            "first",
		Options:            options,
		CorrectAnswerIndex: &idx,
		OrderInQuiz:        0,
	}
	q1.ID = "q1"
	q2 := model.Question{
		QuizID:             "quiz-1",
		QuestionType:       model.MultipleChoice,
		Content:            "second",
		Options:            options,
		CorrectAnswerIndex: &idx,
		OrderInQuiz:        1,
	}
	q2.ID = "q2"
	quiz.Questions = []model.Question{q1, q2}

	attempts := &fakeAttemptStore{}
	bonus := &fakeBonusLedger{}
	svc := NewQuizService(&fakeQuizStore{quiz: quiz}, attempts, bonus, store, testQuizConfig())
	return svc, attempts, bonus
}

func TestAttemptFlowAdvanceRequiresAnswer(t *testing.T) {
	svc, _, _ := flowTestService(t)
	ctx := context.Background()

	if _, err := svc.StartAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.AdvanceAttempt(ctx, 7, "quiz-1"); err != util.ErrAnswerRequired {
		t.Fatalf("advance over an unanswered question must be refused, got %v", err)
	}

	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "q1", "q1-option-0"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	state, err := svc.AdvanceAttempt(ctx, 7, "quiz-1")
	if err != nil {
		t.Fatalf("advance after answering: %v", err)
	}
	if state.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", state.Cursor)
	}

	// 已在最后一题，不再前进
	if _, err := svc.AdvanceAttempt(ctx, 7, "quiz-1"); err != util.ErrNoMoreQuestions {
		t.Fatalf("advance past the last question must be refused, got %v", err)
	}
}

func TestAttemptFlowFinishOnlyOnLastQuestion(t *testing.T) {
	svc, attempts, bonus := flowTestService(t)
	ctx := context.Background()

	if _, err := svc.StartAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "q1", "q1-option-0"); err != nil {
		t.Fatalf("record answer: %v", err)
	}

	if _, err := svc.FinishAttempt(ctx, 7, "quiz-1"); err != util.ErrAttemptNotFinished {
		t.Fatalf("submit before the last question must be refused, got %v", err)
	}

	if _, err := svc.AdvanceAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := svc.FinishAttempt(ctx, 7, "quiz-1"); err != util.ErrAnswerRequired {
		t.Fatalf("submit with the last question unanswered must be refused, got %v", err)
	}

	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "q2", "q2-option-0"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	result, err := svc.FinishAttempt(ctx, 7, "quiz-1")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Score != 2 || !result.IsPassed {
		t.Fatalf("expected a passing 2/2 result, got %+v", result)
	}
	if len(attempts.created) != 1 {
		t.Fatalf("expected the attempt to be persisted, got %d", len(attempts.created))
	}
	if len(bonus.awards) != 1 || bonus.awards[0] != 10 {
		t.Fatalf("expected a single reward of 10 points, got %v", bonus.awards)
	}

	// 会话已消费，重复收卷视同未开始
	if _, err := svc.FinishAttempt(ctx, 7, "quiz-1"); err != util.ErrAttemptNotStarted {
		t.Fatalf("finished session must be consumed, got %v", err)
	}
}

func TestAttemptFlowRetakeResetsProgress(t *testing.T) {
	svc, _, _ := flowTestService(t)
	ctx := context.Background()

	if _, err := svc.StartAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "q1", "q1-option-1"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if _, err := svc.AdvanceAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	state, err := svc.RetakeAttempt(ctx, 7, "quiz-1")
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	if state.Cursor != 0 || state.AnsweredCount != 0 {
		t.Fatalf("retake must reset cursor and answers, got %+v", state)
	}

	session, err := svc.Sessions.Get(ctx, 7, "quiz-1")
	if err != nil || session == nil {
		t.Fatalf("expected a fresh session after retake, got %v, %v", session, err)
	}
	if session.Cursor != 0 || len(session.Answers) != 0 {
		t.Fatalf("stored session must be reset, got %+v", session)
	}
}

func TestAttemptFlowRejectsForeignQuestion(t *testing.T) {
	svc, _, _ := flowTestService(t)
	ctx := context.Background()

	if _, err := svc.StartAttempt(ctx, 7, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "nope", "x"); err != util.ErrQuestionNotFound {
		t.Fatalf("answer for a question outside the quiz must be refused, got %v", err)
	}
}

func TestAttemptFlowRequiresStart(t *testing.T) {
	svc, _, _ := flowTestService(t)
	ctx := context.Background()

	if _, err := svc.RecordAnswer(ctx, 7, "quiz-1", "q1", "q1-option-0"); err != util.ErrAttemptNotStarted {
		t.Fatalf("record without a session must be refused, got %v", err)
	}
	if _, err := svc.AdvanceAttempt(ctx, 7, "quiz-1"); err != util.ErrAttemptNotStarted {
		t.Fatalf("advance without a session must be refused, got %v", err)
	}
	if _, err := svc.FinishAttempt(ctx, 7, "quiz-1"); err != util.ErrAttemptNotStarted {
		t.Fatalf("finish without a session must be refused, got %v", err)
	}
}

func TestAttemptFlowUnknownQuiz(t *testing.T) {
	svc, _, _ := flowTestService(t)

	if _, err := svc.StartAttempt(context.Background(), 7, "missing"); err != util.ErrQuizNotFound {
		t.Fatalf("starting an unknown quiz must fail, got %v", err)
	}
}
