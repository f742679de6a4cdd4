package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameRegistered = errors.New("username already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTitleRequired      = errors.New("title is required")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not in quiz")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAttemptNotStarted  = errors.New("attempt not started or expired")
	ErrAnswerRequired     = errors.New("current question not answered")
	ErrAttemptNotFinished = errors.New("not on the last question yet")
	ErrNoMoreQuestions    = errors.New("already at the last question")
)
