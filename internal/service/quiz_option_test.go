package service

import (
	"encoding/json"
	"testing"

	"lms_portal_backend/internal/model"
)

func TestDecodeOptionsStringEncoding(t *testing.T) {
	correct := 1
	options, err := DecodeOptions("q1", json.RawMessage(`["A","B","C"]`), &correct)
	if err != nil {
		t.Fatalf("decode string encoding: %v", err)
	}
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	if options[0].ID != "q1-option-0" || options[2].ID != "q1-option-2" {
		t.Fatalf("unexpected synthetic ids: %v", options)
	}
	if options[1].Text != "B" || !options[1].IsCorrect {
		t.Fatalf("expected option 1 to be the correct one, got %+v", options[1])
	}
	if options[0].IsCorrect || options[2].IsCorrect {
		t.Fatalf("only one option may be correct: %+v", options)
	}
}

func TestDecodeOptionsStringEncodingWithoutIndex(t *testing.T) {
	options, err := DecodeOptions("q1", json.RawMessage(`["A","B"]`), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, o := range options {
		if o.IsCorrect {
			t.Fatalf("no option should be correct without an index: %+v", o)
		}
	}
}

func TestDecodeOptionsObjectEncoding(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":"a","option_text":"Paris","is_correct":true},
		{"id":7,"option_text":"London","is_correct":false},
		{"option_text":"Berlin"}
	]`)
	options, err := DecodeOptions("q2", raw, nil)
	if err != nil {
		t.Fatalf("decode object encoding: %v", err)
	}
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	if options[0].ID != "a" || !options[0].IsCorrect {
		t.Fatalf("expected option a to be correct: %+v", options[0])
	}
	// 数字 id 转为字符串
	if options[1].ID != "7" {
		t.Fatalf("expected numeric id to become %q, got %q", "7", options[1].ID)
	}
	// 缺 id 时合成
	if options[2].ID != "q2-option-2" {
		t.Fatalf("expected synthetic id for missing id, got %q", options[2].ID)
	}
}

func TestDecodeOptionsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not an array", `{"oops":true}`},
		{"object missing option_text", `[{"id":"a","is_correct":true}]`},
		{"mixed garbage", `[42, "x"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeOptions("q3", json.RawMessage(tc.raw), nil); err == nil {
				t.Fatalf("expected error for %s", tc.raw)
			}
		})
	}
}

func TestDecodeOptionsEmpty(t *testing.T) {
	options, err := DecodeOptions("q4", nil, nil)
	if err != nil || options != nil {
		t.Fatalf("empty raw should yield nil, nil; got %v, %v", options, err)
	}
	options, err = DecodeOptions("q4", json.RawMessage(`null`), nil)
	if err != nil || options != nil {
		t.Fatalf("null raw should yield nil, nil; got %v, %v", options, err)
	}
}

func TestSentinelOptions(t *testing.T) {
	raw := json.RawMessage(`{"broken":`)
	options := SentinelOptions("q5", raw)
	if len(options) != 1 {
		t.Fatalf("expected single sentinel option, got %d", len(options))
	}
	if options[0].ID != "q5-option-error" {
		t.Fatalf("unexpected sentinel id %q", options[0].ID)
	}
	if options[0].Text != string(raw) {
		t.Fatalf("sentinel should carry the raw payload, got %q", options[0].Text)
	}
	if options[0].IsCorrect {
		t.Fatal("sentinel option must never be correct")
	}
}

func TestNormalizeOptionsTextQuestions(t *testing.T) {
	for _, qt := range []model.QuestionType{model.ShortAnswer, model.Essay} {
		q := &model.Question{QuestionType: qt, Options: json.RawMessage(`["should","be","ignored"]`)}
		options, err := NormalizeOptions(q)
		if err != nil {
			t.Fatalf("%s: %v", qt, err)
		}
		if options != nil {
			t.Fatalf("%s questions must have no options, got %v", qt, options)
		}
	}
}
