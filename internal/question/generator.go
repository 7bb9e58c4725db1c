// Package question builds scored, shuffled question sets for a quiz
// configuration and defines cipher-aware answer comparison.
package question

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"cipherquiz-service/internal/cipher"
	"cipherquiz-service/internal/domain"
	"github.com/google/uuid"
)

// CustomSource supplies externally authored question templates.
type CustomSource interface {
	CustomQuestions(ctx context.Context) ([]domain.CustomQuestion, error)
}

// Builder assembles question sets. The random source is injected so callers
// (and tests) control determinism; nothing here touches the global RNG.
type Builder struct {
	custom CustomSource
	rnd    *rand.Rand
	newID  func() string
}

// NewBuilder creates a Builder over a custom-question source and a seeded
// random source. custom may be nil when no custom questions are configured.
func NewBuilder(custom CustomSource, rnd *rand.Rand) *Builder {
	return &Builder{
		custom: custom,
		rnd:    rnd,
		newID:  func() string { return uuid.New().String() },
	}
}

// BuildSet generates the complete question set for a config: per-topic
// generated questions plus materialized custom questions, each worth
// 100/total, shuffled, with 1-based positions assigned in final order.
func (b *Builder) BuildSet(ctx context.Context, cfg domain.QuizConfig) ([]*domain.QuestionState, error) {
	total := len(cfg.CustomQuestionIDs)
	for _, n := range cfg.QuestionsPerTopic {
		total += n
	}
	if total == 0 {
		return nil, nil
	}
	score := 100.0 / float64(total)

	var questions []*domain.QuestionState
	for name, n := range cfg.QuestionsPerTopic {
		topic, ok := cipher.ParseTopic(name)
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			q := b.generate(topic, cfg)
			q.ID = b.newID()
			q.RemainingScore = score
			q.Total = total
			questions = append(questions, q)
		}
	}

	if len(cfg.CustomQuestionIDs) > 0 && b.custom != nil {
		all, err := b.custom.CustomQuestions(ctx)
		if err != nil {
			return nil, fmt.Errorf("load custom questions: %w", err)
		}
		byID := make(map[string]domain.CustomQuestion, len(all))
		for _, cq := range all {
			byID[cq.ID] = cq
		}
		for _, id := range cfg.CustomQuestionIDs {
			cq, ok := byID[id]
			if !ok {
				continue // unknown ids are skipped, not fatal
			}
			q := b.fromCustom(cq, cfg.Language)
			q.ID = b.newID()
			q.RemainingScore = score
			q.Total = total
			questions = append(questions, q)
		}
	}

	b.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	for i, q := range questions {
		q.Position = i + 1
	}
	return questions, nil
}

func (b *Builder) generate(topic cipher.Topic, cfg domain.QuizConfig) *domain.QuestionState {
	switch topic {
	case cipher.TopicCaesar:
		return b.generateCaesar(cfg)
	case cipher.TopicVigenere:
		return b.generateVigenere(cfg)
	case cipher.TopicBase64:
		return b.generateBase64(cfg)
	case cipher.TopicXor:
		return b.generateXor(cfg)
	case cipher.TopicHill:
		return b.generateHill(cfg)
	case cipher.TopicMonoalphabetic:
		return b.generateMonoalphabetic(cfg)
	case cipher.TopicPlayfair:
		return b.generatePlayfair(cfg)
	case cipher.TopicTransposition:
		return b.generateTransposition(cfg)
	default:
		panic("unhandled cipher topic " + topic.String())
	}
}

func (b *Builder) generateCaesar(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	shift := 1 + b.rnd.Intn(25)

	crypto := cfg.Cryptanalysis
	var plain string
	if crypto {
		plain = meaningfulText(b.rnd, lang)
	} else {
		plain = b.randomWord(5)
	}
	enc := cipher.CaesarEncode(plain, shift)
	encode := !crypto && b.rnd.Intn(2) == 0

	data := map[string]string{lbl.Indices: alphabetIndices}
	var prompt, hint, answer, inputType string
	switch {
	case crypto:
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıdaki metin Sezar (Caesar) şifreleme yöntemiyle şifrelenmiştir. Harf frekans analizi yaparak şifreyi kırınız ve anlamlı düz metni bulunuz.",
			"The text below is encrypted using Caesar cipher. Perform frequency analysis to crack the code and find the meaningful plaintext.")
		hint = pick(lang, "Şifre (Shift) ve Düz Metin", "Shift and Plaintext")
		answer = fmt.Sprintf("%d|%s", shift, plain)
		inputType = inputCaesarAnalysis
	case encode:
		data[lbl.Shift] = fmt.Sprintf("+%d", shift)
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki \"%s\" metnini, %d birim öteleme kullanarak Sezar şifreleyiniz.", plain, shift),
			fmt.Sprintf("Encrypt the text %q using Caesar cipher with a shift of %d.", plain, shift))
		hint = pick(lang, "Şifreli metni girin", "Enter encrypted text")
		answer = enc
		inputType = inputText
	default:
		data[lbl.Shift] = fmt.Sprintf("+%d", shift)
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki metin Sezar yöntemiyle (%d birim öteleme) şifrelenmiştir. Şifreyi çözünüz.", shift),
			fmt.Sprintf("The text below is encrypted using Caesar cipher with a shift of %d. Decrypt it.", shift))
		hint = pick(lang, "Düz metni girin (Büyük harf)", "Enter plaintext (Uppercase)")
		answer = plain
		inputType = inputText
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicCaesar.String(),
		Prompt:        prompt,
		InputHint:     hint,
		InputType:     inputType,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generateVigenere(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	key := b.randomWord(3)

	crypto := cfg.Cryptanalysis
	var plain string
	if crypto {
		plain = meaningfulText(b.rnd, lang)
	} else {
		plain = b.randomPhrase(2, 3)
	}
	enc := cipher.VigenereEncode(plain, key)
	encode := !crypto && b.rnd.Intn(2) == 0

	data := map[string]string{lbl.Indices: alphabetIndices}
	var prompt, hint, answer string
	switch {
	case crypto:
		// The key is the secret: both texts are shown, the keyword is asked.
		data[lbl.Plaintext] = plain
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıda düz metin ve şifreli hali verilmiştir. Vigenere şifrelemesinde kullanılan anahtar kelimeyi bulunuz.",
			"The plaintext and ciphertext are given below. Find the Vigenere keyword used.")
		hint = pick(lang, "Anahtar kelimeyi girin", "Enter keyword")
		answer = key
	case encode:
		data[lbl.Key] = key
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini, '%s' anahtar kelimesini kullanarak Vigenere şifreleme yöntemiyle şifreleyiniz.", plain, key),
			fmt.Sprintf("Encrypt %q using Vigenere cipher with key '%s'.", plain, key))
		hint = pick(lang, "Şifreli metni yazın", "Enter encrypted text")
		answer = enc
	default:
		data[lbl.Key] = key
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki metin '%s' anahtarı kullanılarak Vigenere yöntemiyle şifrelenmiştir. Şifreyi çözünüz.", key),
			fmt.Sprintf("The text below is encrypted using Vigenere cipher with key '%s'. Decrypt it.", key))
		hint = pick(lang, "Düz metni girin", "Enter plaintext")
		answer = plain
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicVigenere.String(),
		Prompt:        prompt,
		InputHint:     hint,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generateBase64(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	plain := b.randomPhrase(1, 3)
	encoded := cipher.Base64Encode(plain)
	encode := b.rnd.Intn(2) == 0

	data := map[string]string{}
	var prompt, hint, answer string
	if encode {
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini Base64 formatına kodlayınız.", plain),
			fmt.Sprintf("Encode %q to Base64.", plain))
		hint = pick(lang, "Encoded çıktıyı yazın", "Enter encoded output")
		answer = encoded
	} else {
		data[lbl.Encoded] = encoded
		prompt = pick(lang,
			"Aşağıda verilen Base64 kodlu metnin orijinal halini bulunuz.",
			"Decode the following Base64 text.")
		hint = pick(lang, "Düz metin", "Enter plaintext")
		answer = plain
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicBase64.String(),
		Prompt:        prompt,
		InputHint:     hint,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generateXor(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	val1 := b.rnd.Intn(256)
	val2 := b.rnd.Intn(256)
	result := cipher.Xor(val1, val2)

	if cfg.Cryptanalysis {
		// Given one operand and the result, recover the key operand.
		return &domain.QuestionState{
			Topic: cipher.TopicXor.String(),
			Prompt: pick(lang,
				fmt.Sprintf("XOR İşlemi: %d XOR [Anahtar] = %d. Anahtar (Key) değerini bulunuz.", val1, result),
				fmt.Sprintf("XOR Operation: %d XOR [Key] = %d. Find the Key value.", val1, result)),
			InputHint:     pick(lang, "Sayı girin", "Enter number"),
			InputType:     inputNumber,
			Data:          map[string]string{lbl.Value1: strconv.Itoa(val1), lbl.Result: strconv.Itoa(result)},
			CorrectAnswer: strconv.Itoa(val2),
		}
	}

	base1 := cipher.XorBases[b.rnd.Intn(len(cipher.XorBases))]
	base2 := cipher.XorBases[b.rnd.Intn(len(cipher.XorBases))]
	f1 := cipher.FormatXorOperand(val1, base1)
	f2 := cipher.FormatXorOperand(val2, base2)

	return &domain.QuestionState{
		Topic: cipher.TopicXor.String(),
		Prompt: pick(lang,
			fmt.Sprintf("Aşağıdaki %s ve %s değerlerinin XOR işleminin sonucunu onluk (decimal) tabanda yazınız.", f1, f2),
			fmt.Sprintf("Calculate XOR of %s and %s and write the result in decimal.", f1, f2)),
		InputHint:     pick(lang, "Sayı girin", "Enter number"),
		InputType:     inputNumber,
		Data:          map[string]string{lbl.Value1: f1, lbl.Value2: f2},
		CorrectAnswer: strconv.Itoa(result),
	}
}

func (b *Builder) generateHill(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	key := cipher.RandomHillKey(b.rnd)
	plain := b.randomWord(4)
	enc := cipher.HillEncode(plain, key)
	encode := b.rnd.Intn(2) == 0

	data := map[string]string{
		"Matrix_00":  strconv.Itoa(key.A),
		"Matrix_01":  strconv.Itoa(key.B),
		"Matrix_10":  strconv.Itoa(key.C),
		"Matrix_11":  strconv.Itoa(key.D),
		lbl.Indices: alphabetIndices,
	}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = plain
		prompt = pick(lang,
			"Aşağıda verilen anahtar matrisini kullanarak düz metni Hill şifreleme yöntemiyle şifreleyiniz.",
			"Encrypt the plaintext using Hill cipher with the given key matrix.")
		answer = enc
	} else {
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıdaki metin Hill yöntemiyle şifrelenmiştir. Verilen anahtar matrisini kullanarak şifreyi çözünüz.",
			"Decrypt the ciphertext using Hill cipher with the given key matrix.")
		answer = plain
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicHill.String(),
		Prompt:        prompt,
		InputHint:     lbl.Answer,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generateMonoalphabetic(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	mono := cipher.NewMonoalphabetic(b.randomWord(5))
	plain := b.randomWord(5)
	enc := mono.Encode(plain)
	encode := b.rnd.Intn(2) == 0

	data := map[string]string{lbl.MixedAlphabet: mono.MixedAlphabet()}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = plain
		prompt = pick(lang,
			"Aşağıdaki karışık alfabe tablosunu kullanarak düz metni Monoalfabetik yöntemle şifreleyiniz.",
			"Encrypt the plaintext using the mixed alphabet table.")
		answer = enc
	} else {
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıdaki karışık alfabe tablosunu kullanarak şifrelenmiş metni çözünüz.",
			"Decrypt the ciphertext using the mixed alphabet table.")
		answer = plain
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicMonoalphabetic.String(),
		Prompt:        prompt,
		InputHint:     lbl.Answer,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generatePlayfair(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	key := b.randomWord(5)
	pf := cipher.NewPlayfair(key)

	if cfg.Cryptanalysis {
		// Key and matrix are given; the meaningful plaintext is the answer.
		plain := pf.Normalize(shortMeaningfulText(b.rnd, lang))
		enc := pf.Encode(plain)
		return &domain.QuestionState{
			Topic: cipher.TopicPlayfair.String(),
			Prompt: pick(lang,
				"Aşağıdaki metin Playfair ile şifrelenmiştir. Anahtar ve Matris verilmiştir. Şifreyi çözerek anlamlı metni bulunuz.",
				"Decrypt the Playfair ciphertext using the given key and matrix to find the meaningful text."),
			InputHint:     pick(lang, "Anlamlı Metin", "Meaningful Text"),
			InputType:     inputText,
			Data:          map[string]string{lbl.Keyword: key, lbl.Matrix: pf.MatrixString(), lbl.Ciphertext: enc},
			CorrectAnswer: plain,
		}
	}

	plain := pf.Normalize(b.randomWord(6))
	enc := pf.Encode(plain)
	encode := b.rnd.Intn(2) == 0

	data := map[string]string{lbl.Keyword: key, lbl.Matrix: pf.MatrixString()}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = plain
		prompt = pick(lang,
			fmt.Sprintf("'%s' anahtar kelimesiyle oluşturulan Playfair matrisini kullanarak \"%s\" metnini şifreleyiniz.", key, plain),
			fmt.Sprintf("Encrypt %q using Playfair cipher with key '%s'.", plain, key))
		answer = enc
	} else {
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıdaki metin Playfair yöntemiyle şifrelenmiştir. Verilen anahtar kelime ve matrisi kullanarak şifreyi çözünüz.",
			"The text below is encrypted using Playfair cipher. Decrypt it using the key and matrix.")
		answer = pf.Decode(enc)
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicPlayfair.String(),
		Prompt:        prompt,
		InputHint:     lbl.Answer,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) generateTransposition(cfg domain.QuizConfig) *domain.QuestionState {
	lang := cfg.Language
	lbl := labelsFor(lang)
	key := b.randomWord(5)
	tr := cipher.NewTransposition(key)

	if cfg.Cryptanalysis {
		plain := cipher.OnlyLetters(meaningfulText(b.rnd, lang))
		enc := tr.Encode(plain)
		return &domain.QuestionState{
			Topic: cipher.TopicTransposition.String(),
			Prompt: pick(lang,
				"Aşağıda düz metin ve şifreli hali verilmiştir. Sütunlu Yer Değiştirme (Transposition) şifrelemesinde kullanılan anahtar kelimeyi bulunuz.",
				"Find the keyword used for Columnar Transposition given the plaintext and ciphertext."),
			InputHint:     pick(lang, "Anahtar kelimeyi girin", "Enter keyword"),
			InputType:     inputText,
			Data:          map[string]string{lbl.Plaintext: plain, lbl.Ciphertext: enc, lbl.Indices: alphabetIndices},
			CorrectAnswer: key,
		}
	}

	plain := b.randomWord(10)
	enc := tr.Encode(plain)
	encode := b.rnd.Intn(2) == 0

	data := map[string]string{lbl.Keyword: key, lbl.Indices: alphabetIndices}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = plain
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini, '%s' anahtarını kullanarak Sütunlu Yer Değiştirme yöntemiyle şifreleyiniz.", plain, key),
			fmt.Sprintf("Encrypt %q using Columnar Transposition with key '%s'.", plain, key))
		answer = enc
	} else {
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			"Aşağıdaki metin Sütunlu Yer Değiştirme yöntemiyle şifrelenmiştir. Şifreyi çözünüz.",
			"Decrypt the text below which was encrypted using Columnar Transposition.")
		// The solver's hand decode trims trailing filler, so the expected
		// answer has to match that, not the raw plaintext.
		answer = tr.Decode(enc)
	}

	return &domain.QuestionState{
		Topic:         cipher.TopicTransposition.String(),
		Prompt:        prompt,
		InputHint:     lbl.Answer,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

const wordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (b *Builder) randomWord(length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = wordAlphabet[b.rnd.Intn(len(wordAlphabet))]
	}
	return string(out)
}

func (b *Builder) randomPhrase(minWords, maxWords int) string {
	count := minWords + b.rnd.Intn(maxWords-minWords+1)
	parts := make([]string, count)
	for i := range parts {
		parts[i] = b.randomWord(3 + b.rnd.Intn(5))
	}
	return strings.Join(parts, " ")
}
