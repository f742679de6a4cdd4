package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_portal_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// AttemptSession 一次进行中的答题：游标 + 答案映射。
// 每次加载测验都建一份全新的会话，提交后即销毁。
type AttemptSession struct {
	QuizID    string            `json:"quizId"`
	Cursor    int               `json:"cursor"`
	Answers   map[string]string `json:"answers"`
	StartedAt time.Time         `json:"startedAt"`
}

func NewAttemptSession(quizID string) *AttemptSession {
	return &AttemptSession{
		QuizID:    quizID,
		Answers:   make(map[string]string),
		StartedAt: time.Now(),
	}
}

// AttemptSessionStore 进行中会话的存取，按 (用户, 测验) 定位。
// Get 未命中返回 (nil, nil)。
type AttemptSessionStore interface {
	Get(ctx context.Context, userID uint, quizID string) (*AttemptSession, error)
	Save(ctx context.Context, userID uint, session *AttemptSession) error
	Delete(ctx context.Context, userID uint, quizID string) error
}

// RedisAttemptStore 基于 Redis 的会话存储，JSON 值 + TTL，
// 过期的会话视同未开始
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptStore(client *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{client: client, ttl: ttl}
}

func (s *RedisAttemptStore) key(userID uint, quizID string) string {
	return fmt.Sprintf("quiz:attempt:%d:%s", userID, quizID)
}

func (s *RedisAttemptStore) Get(ctx context.Context, userID uint, quizID string) (*AttemptSession, error) {
	data, err := s.client.Get(ctx, s.key(userID, quizID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session AttemptSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisAttemptStore) Save(ctx context.Context, userID uint, session *AttemptSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID, session.QuizID), data, s.ttl).Err()
}

func (s *RedisAttemptStore) Delete(ctx context.Context, userID uint, quizID string) error {
	return s.client.Del(ctx, s.key(userID, quizID)).Err()
}

// AttemptState 返回给前端的会话状态
type AttemptState struct {
	QuizID        string `json:"quizId"`
	Cursor        int    `json:"cursor"`
	QuestionCount int    `json:"questionCount"`
	AnsweredCount int    `json:"answeredCount"`
}

func attemptState(session *AttemptSession, questionCount int) *AttemptState {
	return &AttemptState{
		QuizID:        session.QuizID,
		Cursor:        session.Cursor,
		QuestionCount: questionCount,
		AnsweredCount: len(session.Answers),
	}
}

// StartAttempt 开始（或重新开始）一次答题：游标归零、答案清空
func (s *QuizService) StartAttempt(ctx context.Context, userID uint, quizID string) (*AttemptState, error) {
	quiz, err := s.LoadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	session := NewAttemptSession(quizID)
	if err := s.Sessions.Save(ctx, userID, session); err != nil {
		return nil, err
	}
	return attemptState(session, len(quiz.Questions)), nil
}

// RecordAnswer 记录当前答案，同题重复作答后写覆盖先写
func (s *QuizService) RecordAnswer(ctx context.Context, userID uint, quizID, questionID, answer string) (*AttemptState, error) {
	quiz, err := s.LoadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrAttemptNotStarted
	}

	found := false
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return nil, util.ErrQuestionNotFound
	}

	session.Answers[questionID] = answer
	if err := s.Sessions.Save(ctx, userID, session); err != nil {
		return nil, err
	}
	return attemptState(session, len(quiz.Questions)), nil
}

// AdvanceAttempt 游标前进一格。当前题未作答时拒绝前进，
// 最后一题不再前进（由提交接口收卷）。不提供回退。
func (s *QuizService) AdvanceAttempt(ctx context.Context, userID uint, quizID string) (*AttemptState, error) {
	quiz, err := s.LoadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrAttemptNotStarted
	}

	if session.Cursor >= len(quiz.Questions)-1 {
		return nil, util.ErrNoMoreQuestions
	}
	current := quiz.Questions[session.Cursor]
	if session.Answers[current.ID] == "" {
		return nil, util.ErrAnswerRequired
	}

	session.Cursor++
	if err := s.Sessions.Save(ctx, userID, session); err != nil {
		return nil, err
	}
	return attemptState(session, len(quiz.Questions)), nil
}

// FinishAttempt 在最后一题收卷：评分、落库、发奖，并销毁会话
func (s *QuizService) FinishAttempt(ctx context.Context, userID uint, quizID string) (*AttemptResult, error) {
	quiz, err := s.LoadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrAttemptNotStarted
	}

	if len(quiz.Questions) > 0 {
		if session.Cursor < len(quiz.Questions)-1 {
			return nil, util.ErrAttemptNotFinished
		}
		last := quiz.Questions[len(quiz.Questions)-1]
		if session.Answers[last.ID] == "" {
			return nil, util.ErrAnswerRequired
		}
	}

	result := s.CompleteAttempt(userID, quiz, session.Answers)

	// 会话已消费，删除失败只影响过期回收
	if err := s.Sessions.Delete(ctx, userID, quizID); err != nil {
		return result, nil
	}
	return result, nil
}

// RetakeAttempt 重考：等价于不重新拉题的 StartAttempt
func (s *QuizService) RetakeAttempt(ctx context.Context, userID uint, quizID string) (*AttemptState, error) {
	return s.StartAttempt(ctx, userID, quizID)
}
