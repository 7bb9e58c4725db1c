package question

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherquiz-service/internal/cipher"
	"cipherquiz-service/internal/domain"
)

type staticSource struct {
	questions []domain.CustomQuestion
	err       error
}

func (s staticSource) CustomQuestions(context.Context) ([]domain.CustomQuestion, error) {
	return s.questions, s.err
}

func newTestBuilder(seed int64, custom CustomSource) *Builder {
	b := NewBuilder(custom, rand.New(rand.NewSource(seed)))
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("q-%d", n)
	}
	return b
}

func TestBuildSetScoringAndPositions(t *testing.T) {
	b := newTestBuilder(1, nil)
	cfg := domain.DefaultConfig()
	cfg.QuestionsPerTopic = map[string]int{"caesar": 2, "vigenere": 1, "base64": 2}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, qs, 5)

	seen := map[string]bool{}
	for i, q := range qs {
		assert.Equal(t, i+1, q.Position)
		assert.Equal(t, 5, q.Total)
		assert.InDelta(t, 20.0, q.RemainingScore, 1e-9)
		assert.NotEmpty(t, q.ID)
		assert.False(t, seen[q.ID], "duplicate question id %s", q.ID)
		seen[q.ID] = true
		assert.NotEmpty(t, q.Prompt)
		assert.NotEmpty(t, q.CorrectAnswer)
	}

	counts := map[string]int{}
	for _, q := range qs {
		counts[q.Topic]++
	}
	assert.Equal(t, 2, counts[cipher.TopicCaesar.String()])
	assert.Equal(t, 1, counts[cipher.TopicVigenere.String()])
	assert.Equal(t, 2, counts[cipher.TopicBase64.String()])
}

func TestBuildSetEmptyConfig(t *testing.T) {
	b := newTestBuilder(1, nil)
	cfg := domain.QuizConfig{QuestionsPerTopic: map[string]int{}}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, qs)
}

func TestBuildSetSkipsUnknownTopics(t *testing.T) {
	b := newTestBuilder(1, nil)
	cfg := domain.DefaultConfig()
	cfg.QuestionsPerTopic = map[string]int{"caesar": 1, "rot13": 4}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	// Unknown topics still count toward the total: the score split follows
	// the configured count, the unknown entries just produce nothing.
	require.Len(t, qs, 1)
	assert.Equal(t, cipher.TopicCaesar.String(), qs[0].Topic)
	assert.InDelta(t, 20.0, qs[0].RemainingScore, 1e-9)
}

func TestBuildSetAllTopicsGenerate(t *testing.T) {
	b := newTestBuilder(7, nil)
	cfg := domain.DefaultConfig()
	cfg.QuestionsPerTopic = map[string]int{}
	for _, topic := range cipher.Topics {
		cfg.QuestionsPerTopic[topic.String()] = 1
	}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, qs, len(cipher.Topics))
}

func TestBuildSetCryptanalysisVariants(t *testing.T) {
	b := newTestBuilder(11, nil)
	cfg := domain.DefaultConfig()
	cfg.Cryptanalysis = true
	cfg.QuestionsPerTopic = map[string]int{"caesar": 1, "vigenere": 1, "xor": 1, "playfair": 1, "transposition": 1}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, qs, 5)

	for _, q := range qs {
		switch q.Topic {
		case cipher.TopicCaesar.String():
			// Composite answer: shift and plaintext separated by a pipe.
			assert.Equal(t, inputCaesarAnalysis, q.InputType)
			assert.Contains(t, q.CorrectAnswer, "|")
		case cipher.TopicVigenere.String(), cipher.TopicTransposition.String():
			// The keyword is the secret.
			assert.Regexp(t, "^[A-Z]+$", q.CorrectAnswer)
		case cipher.TopicXor.String():
			assert.Equal(t, inputNumber, q.InputType)
		}
	}
}

func TestBuildSetCustomQuestions(t *testing.T) {
	src := staticSource{questions: []domain.CustomQuestion{
		{ID: "c1", Topic: "caesar", Mode: "Encrypt", Key: "3", Text: "HELLO"},
		{ID: "c2", Topic: "base64", Mode: "Decrypt", Text: "SGVsbG8="},
	}}
	b := newTestBuilder(3, src)
	cfg := domain.DefaultConfig()
	cfg.QuestionsPerTopic = map[string]int{}
	cfg.CustomQuestionIDs = []string{"c1", "c2", "missing"}

	qs, err := b.BuildSet(context.Background(), cfg)
	require.NoError(t, err)
	// Unknown ids are skipped but still counted in the score split.
	require.Len(t, qs, 2)
	for _, q := range qs {
		assert.InDelta(t, 100.0/3.0, q.RemainingScore, 1e-9)
	}

	byTopic := map[string]*domain.QuestionState{}
	for _, q := range qs {
		byTopic[q.Topic] = q
	}
	require.Contains(t, byTopic, cipher.TopicCaesar.String())
	assert.Equal(t, "KHOOR", byTopic[cipher.TopicCaesar.String()].CorrectAnswer)
	require.Contains(t, byTopic, cipher.TopicBase64.String())
	assert.Equal(t, "Hello", byTopic[cipher.TopicBase64.String()].CorrectAnswer)
}

func TestBuildSetCustomSourceError(t *testing.T) {
	src := staticSource{err: errors.New("boom")}
	b := newTestBuilder(3, src)
	cfg := domain.DefaultConfig()
	cfg.QuestionsPerTopic = map[string]int{}
	cfg.CustomQuestionIDs = []string{"c1"}

	_, err := b.BuildSet(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load custom questions")
}

func TestCustomCaesarMalformedShiftDefaults(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "caesar", Mode: "Encrypt", Key: "banana", Text: "HELLO",
	}, "en")
	// Unparseable shift falls back to 3.
	assert.Equal(t, "KHOOR", q.CorrectAnswer)
	assert.Equal(t, "+3", q.Data["Shift"])
}

func TestCustomCaesarAnalysis(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "caesar", Mode: "Encrypt", Key: "5", Text: "ATTACK", Analysis: true,
	}, "en")
	assert.Equal(t, inputCaesarAnalysis, q.InputType)
	assert.Equal(t, "5|ATTACK", q.CorrectAnswer)
	assert.Equal(t, cipher.CaesarEncode("ATTACK", 5), q.Data["Ciphertext"])
}

func TestCustomHillMalformedKeyDefaults(t *testing.T) {
	b := newTestBuilder(1, nil)
	for _, key := range []string{"", "1,2,3", "a,b,c,d", "2,4,6,8"} {
		q := b.fromCustom(domain.CustomQuestion{
			Topic: "hill", Mode: "Encrypt", Key: key, Text: "TEST",
		}, "en")
		assert.Equal(t, "3", q.Data["Matrix_00"], "key %q", key)
		assert.Equal(t, "5", q.Data["Matrix_01"], "key %q", key)
		assert.Equal(t, "6", q.Data["Matrix_10"], "key %q", key)
		assert.Equal(t, "17", q.Data["Matrix_11"], "key %q", key)
		assert.Equal(t, cipher.HillEncode("TEST", defaultHillKey), q.CorrectAnswer)
	}
}

func TestCustomHillValidKeyKept(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "hill", Mode: "Decrypt", Key: "3,3,2,5", Text: "HIAT",
	}, "en")
	assert.Equal(t, "3", q.Data["Matrix_00"])
	key := cipher.HillKey{A: 3, B: 3, C: 2, D: 5}
	want, err := cipher.HillDecode("HIAT", key)
	require.NoError(t, err)
	assert.Equal(t, want, q.CorrectAnswer)
}

func TestCustomBase64InvalidYieldsSentinel(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "base64", Mode: "Decrypt", Text: "!!!not-base64!!!",
	}, "en")
	assert.Equal(t, cipher.InvalidBase64, q.CorrectAnswer)
}

func TestCustomXorNonNumericDefaultsToZero(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "xor", Text: "abc", Key: "12",
	}, "en")
	assert.Equal(t, "12", q.CorrectAnswer)
}

func TestCustomUnknownTopicFallsBackToGeneric(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{Topic: "enigma", Text: "RIDDLE"}, "en")
	assert.Equal(t, "enigma", q.Topic)
	assert.Equal(t, "RIDDLE", q.CorrectAnswer)
	assert.Equal(t, enLabels.Answer, q.InputHint)

	q = b.fromCustom(domain.CustomQuestion{Topic: "enigma", Text: "RIDDLE"}, "tr")
	assert.Equal(t, trLabels.Answer, q.InputHint)
}

func TestCustomTranspositionRoundTrip(t *testing.T) {
	b := newTestBuilder(1, nil)
	q := b.fromCustom(domain.CustomQuestion{
		Topic: "transposition", Mode: "Encrypt", Key: "ZEBRA", Text: "WEAREDISCOVERED",
	}, "en")
	tr := cipher.NewTransposition("ZEBRA")
	assert.Equal(t, tr.Encode("WEAREDISCOVERED"), q.CorrectAnswer)
	assert.Equal(t, "ZEBRA", q.Data["Keyword"])
}

func TestLanguageSelectsPromptText(t *testing.T) {
	for _, lang := range []string{"tr", "en"} {
		b := newTestBuilder(5, nil)
		cfg := domain.DefaultConfig()
		cfg.Language = lang
		cfg.QuestionsPerTopic = map[string]int{"base64": 1}

		qs, err := b.BuildSet(context.Background(), cfg)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		if lang == "tr" {
			assert.True(t, strings.Contains(qs[0].Prompt, "metn") || strings.Contains(qs[0].Prompt, "Base64 kodlu"))
		} else {
			assert.True(t, strings.Contains(qs[0].Prompt, "Encode") || strings.Contains(qs[0].Prompt, "Decode"))
		}
	}
}

func TestCompareAnswer(t *testing.T) {
	cases := []struct {
		name     string
		topic    string
		expected string
		answer   string
		want     bool
	}{
		{"case-insensitive by default", "caesar", "KHOOR", "khoor", true},
		{"whitespace trimmed", "caesar", "KHOOR", "  KHOOR  ", true},
		{"wrong answer", "caesar", "KHOOR", "KHOOS", false},
		{"base64 mixed case is exact", "base64", "SGVsbG8=", "sgvsbg8=", false},
		{"base64 mixed case exact match", "base64", "SGVsbG8=", "SGVsbG8=", true},
		{"base64 uppercase-only stays folded", "base64", "QUJD", "qujd", true},
		{"unknown topic folds", "enigma", "AbC", "aBc", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompareAnswer(tc.topic, tc.expected, tc.answer))
		})
	}
}
