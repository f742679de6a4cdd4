package service

import (
	"encoding/json"
	"fmt"

	"lms_portal_backend/internal/model"
)

// Option 归一化后的选项，IsCorrect 仅服务端评分使用，不下发
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"-"`
}

// flexID 兼容字符串和数字两种 id 编码
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	return fmt.Errorf("option id is neither string nor number: %s", data)
}

type rawOption struct {
	ID         flexID  `json:"id"`
	OptionText *string `json:"option_text"`
	IsCorrect  bool    `json:"is_correct"`
}

// DecodeOptions 解析题目的原始 options 编码，支持两种形态：
//   - 纯字符串数组：合成 id（<questionId>-option-<index>），正确项由 correctIndex 决定
//   - 对象数组（含 option_text 字段）：沿用自带 id 和 is_correct，缺 id 时合成
//
// 两种形态都不匹配时返回错误，由调用方降级为哨兵选项。
func DecodeOptions(questionID string, raw json.RawMessage, correctIndex *int) ([]Option, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var texts []string
	if err := json.Unmarshal(raw, &texts); err == nil {
		options := make([]Option, len(texts))
		for i, text := range texts {
			options[i] = Option{
				ID:        fmt.Sprintf("%s-option-%d", questionID, i),
				Text:      text,
				IsCorrect: correctIndex != nil && *correctIndex == i,
			}
		}
		return options, nil
	}

	var rawOptions []rawOption
	if err := json.Unmarshal(raw, &rawOptions); err != nil {
		return nil, fmt.Errorf("unrecognized options encoding: %w", err)
	}
	options := make([]Option, len(rawOptions))
	for i, ro := range rawOptions {
		if ro.OptionText == nil {
			return nil, fmt.Errorf("option %d has no option_text field", i)
		}
		id := string(ro.ID)
		if id == "" {
			id = fmt.Sprintf("%s-option-%d", questionID, i)
		}
		options[i] = Option{
			ID:        id,
			Text:      *ro.OptionText,
			IsCorrect: ro.IsCorrect,
		}
	}
	return options, nil
}

// SentinelOptions 解析失败时的降级结果：单个错误选项，携带原始值便于排查
func SentinelOptions(questionID string, raw json.RawMessage) []Option {
	return []Option{{
		ID:        fmt.Sprintf("%s-option-error", questionID),
		Text:      string(raw),
		IsCorrect: false,
	}}
}

// NormalizeOptions 按题型归一化：简答和问答题始终是空选项集
func NormalizeOptions(q *model.Question) ([]Option, error) {
	if q.QuestionType == model.ShortAnswer || q.QuestionType == model.Essay {
		return nil, nil
	}
	return DecodeOptions(q.ID, q.Options, q.CorrectAnswerIndex)
}
