package question

import (
	"fmt"
	"strconv"
	"strings"

	"cipherquiz-service/internal/cipher"
	"cipherquiz-service/internal/domain"
)

// defaultHillKey backs malformed or non-invertible custom Hill keys; its
// determinant (21) is coprime with 26.
var defaultHillKey = cipher.HillKey{A: 3, B: 5, C: 6, D: 17}

// fromCustom materializes a template into a QuestionState. Malformed
// templates never fail the whole build; each branch falls back to a safe
// default instead.
func (b *Builder) fromCustom(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	topic, ok := cipher.ParseTopic(cq.Topic)
	if !ok {
		return b.customGeneric(cq, lang)
	}
	switch topic {
	case cipher.TopicCaesar:
		return b.customCaesar(cq, lang)
	case cipher.TopicVigenere:
		return b.customVigenere(cq, lang)
	case cipher.TopicBase64:
		return b.customBase64(cq, lang)
	case cipher.TopicXor:
		return b.customXor(cq, lang)
	case cipher.TopicHill:
		return b.customHill(cq, lang)
	case cipher.TopicMonoalphabetic:
		return b.customMonoalphabetic(cq, lang)
	case cipher.TopicPlayfair:
		return b.customPlayfair(cq, lang)
	case cipher.TopicTransposition:
		return b.customTransposition(cq, lang)
	default:
		return b.customGeneric(cq, lang)
	}
}

func (b *Builder) customCaesar(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	shift, err := strconv.Atoi(strings.TrimSpace(cq.Key))
	if err != nil || shift < 1 || shift > 25 {
		shift = 3
	}
	encode := cq.Mode == "Encrypt"

	var plain, enc string
	if encode {
		plain = cq.Text
		enc = cipher.CaesarEncode(plain, shift)
	} else {
		enc = cq.Text
		plain = cipher.CaesarDecode(enc, shift)
	}

	data := map[string]string{lbl.Indices: alphabetIndices}
	if cq.Analysis {
		data[lbl.Ciphertext] = enc
		return &domain.QuestionState{
			Topic: cipher.TopicCaesar.String(),
			Prompt: pick(lang,
				"Aşağıdaki şifreli metin Sezar (Caesar) yöntemiyle oluşturulmuştur. Şifreyi kırarak Shift değerini ve anlamlı metni bulunuz.",
				"The text below is encrypted using Caesar cipher. Crack the code to find the Shift value and the meaningful plaintext."),
			InputHint:     pick(lang, "Shift ve Düz Metin", "Shift and Plaintext"),
			InputType:     inputCaesarAnalysis,
			Data:          data,
			CorrectAnswer: fmt.Sprintf("%d|%s", shift, plain),
		}
	}

	data[lbl.Shift] = fmt.Sprintf("+%d", shift)
	var prompt, hint, answer string
	if encode {
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini, %d birim öteleme kullanarak Sezar (Caesar) şifreleme yöntemiyle şifreleyiniz.", plain, shift),
			fmt.Sprintf("Encrypt the text %q using Caesar cipher with a shift of %d.", plain, shift))
		hint = pick(lang, "Şifreli metni girin", "Enter encrypted text")
		answer = enc
	} else {
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki metin Sezar (Caesar) şifreleme yöntemiyle şifrelenmiştir (Öteleme: %d). Şifreyi çözerek orijinal metni bulunuz.", shift),
			fmt.Sprintf("The text below is encrypted using Caesar cipher with a shift of %d. Decrypt it.", shift))
		hint = pick(lang, "Düz metni girin (Büyük harf)", "Enter plaintext (Uppercase)")
		answer = plain
	}
	return &domain.QuestionState{
		Topic:         cipher.TopicCaesar.String(),
		Prompt:        prompt,
		InputHint:     hint,
		InputType:     inputText,
		Data:          data,
		CorrectAnswer: answer,
	}
}

func (b *Builder) customVigenere(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	key := cipher.OnlyLetters(cq.Key)
	if key == "" {
		key = "KEY"
	}
	encode := cq.Mode == "Encrypt"

	data := map[string]string{lbl.Key: key, lbl.Indices: alphabetIndices}
	var prompt, hint, answer string
	if encode {
		plain := cq.Text
		answer = cipher.VigenereEncode(plain, key)
		data[lbl.Plaintext] = plain
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini, '%s' anahtar kelimesini kullanarak Vigenere şifreleme yöntemiyle şifreleyiniz.", plain, key),
			fmt.Sprintf("Encrypt %q using Vigenere cipher with keyword '%s'.", plain, key))
		hint = pick(lang, "Şifreli metni girin", "Enter encrypted text")
	} else {
		enc := cq.Text
		answer = cipher.VigenereDecode(enc, key)
		data[lbl.Ciphertext] = enc
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki metin '%s' anahtarı kullanılarak Vigenere yöntemiyle şifrelenmiştir. Şifreyi çözünüz.", key),
			fmt.Sprintf("Decrypt the text below which was encrypted using Vigenere cipher with keyword '%s'.", key))
		hint = pick(lang, "Düz metni girin", "Enter plaintext")
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

func (b *Builder) customBase64(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	encode := cq.Mode == "Encrypt"

	data := map[string]string{}
	var prompt, hint, answer string
	if encode {
		answer = cipher.Base64Encode(cq.Text)
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini Base64 formatına kodlayınız.", cq.Text),
			fmt.Sprintf("Encode %q to Base64.", cq.Text))
		hint = pick(lang, "Encoded çıktıyı yazın", "Enter encoded output")
	} else {
		data[lbl.Encoded] = cq.Text
		answer = cipher.Base64Decode(cq.Text) // malformed input yields the sentinel
		prompt = pick(lang,
			"Aşağıda verilen Base64 kodlu metnin orijinal halini bulunuz.",
			"Decode the following Base64 text.")
		hint = pick(lang, "Düz metin", "Enter plaintext")
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

func (b *Builder) customXor(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	// Non-numeric operands fall back to zero rather than failing the build.
	val1, _ := strconv.Atoi(strings.TrimSpace(cq.Text))
	val2, _ := strconv.Atoi(strings.TrimSpace(cq.Key))
	result := cipher.Xor(val1, val2)

	return &domain.QuestionState{
		Topic: cipher.TopicXor.String(),
		Prompt: pick(lang,
			fmt.Sprintf("Aşağıdaki %d ve %d değerlerinin XOR işleminin sonucunu onluk (decimal) tabanda yazınız.", val1, val2),
			fmt.Sprintf("Calculate XOR of %d and %d and write the result in decimal.", val1, val2)),
		InputHint:     pick(lang, "Sayı girin", "Enter number"),
		InputType:     inputNumber,
		Data:          map[string]string{lbl.Value1: strconv.Itoa(val1), lbl.Value2: strconv.Itoa(val2)},
		CorrectAnswer: strconv.Itoa(result),
	}
}

func (b *Builder) customHill(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	key := parseHillKey(cq.Key)
	encode := cq.Mode == "Encrypt"

	text := cipher.OnlyLetters(cq.Text)
	if len(text)%2 != 0 {
		text += "X"
	}

	data := map[string]string{
		"Matrix_00":  strconv.Itoa(key.A),
		"Matrix_01":  strconv.Itoa(key.B),
		"Matrix_10":  strconv.Itoa(key.C),
		"Matrix_11":  strconv.Itoa(key.D),
		lbl.Indices: alphabetIndices,
	}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = text
		answer = cipher.HillEncode(text, key)
		prompt = pick(lang,
			"Aşağıda verilen anahtar matrisini kullanarak düz metni Hill şifreleme yöntemiyle şifreleyiniz.",
			"Encrypt the plaintext using Hill cipher with the given key matrix.")
	} else {
		data[lbl.Ciphertext] = text
		answer, _ = cipher.HillDecode(text, key) // key is guaranteed invertible by parseHillKey
		prompt = pick(lang,
			"Aşağıdaki metin Hill yöntemiyle şifrelenmiştir. Verilen anahtar matrisini kullanarak şifreyi çözünüz.",
			"Decrypt the ciphertext using Hill cipher with the given key matrix.")
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

// parseHillKey reads "a,b,c,d" (comma or space separated). Anything short,
// non-numeric or non-invertible falls back to the default key.
func parseHillKey(raw string) cipher.HillKey {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) < 4 {
		return defaultHillKey
	}
	vals := make([]int, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return defaultHillKey
		}
		vals[i] = v
	}
	key := cipher.HillKey{A: vals[0], B: vals[1], C: vals[2], D: vals[3]}
	if !key.Invertible() {
		return defaultHillKey
	}
	return key
}

func (b *Builder) customMonoalphabetic(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	mono := cipher.NewMonoalphabetic(cq.Key)
	encode := cq.Mode == "Encrypt"
	text := strings.ToUpper(cq.Text)

	data := map[string]string{lbl.MixedAlphabet: mono.MixedAlphabet()}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = text
		answer = mono.Encode(text)
		prompt = pick(lang,
			fmt.Sprintf("Aşağıdaki karışık alfabe tablosunu kullanarak \"%s\" metnini Monoalfabetik yöntemle şifreleyiniz.", text),
			fmt.Sprintf("Encrypt %q using the mixed alphabet table.", text))
	} else {
		data[lbl.Ciphertext] = text
		answer = mono.Decode(text)
		prompt = pick(lang,
			"Aşağıdaki karışık alfabe tablosunu kullanarak şifrelenmiş metni çözünüz.",
			"Decrypt the ciphertext using the mixed alphabet table.")
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

func (b *Builder) customPlayfair(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	pf := cipher.NewPlayfair(cq.Key)
	encode := cq.Mode == "Encrypt"
	text := pf.Normalize(cq.Text)

	data := map[string]string{lbl.Keyword: cq.Key, lbl.Matrix: pf.MatrixString()}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = text
		answer = pf.Encode(text)
		prompt = pick(lang,
			fmt.Sprintf("'%s' anahtar kelimesiyle oluşturulan Playfair matrisini kullanarak \"%s\" metnini şifreleyiniz.", cq.Key, text),
			fmt.Sprintf("Encrypt %q using Playfair cipher with key '%s'.", text, cq.Key))
	} else {
		data[lbl.Ciphertext] = text
		answer = pf.Decode(text)
		prompt = pick(lang,
			"Aşağıdaki metin Playfair yöntemiyle şifrelenmiştir. Verilen anahtar kelime ve matrisi kullanarak şifreyi çözünüz.",
			"The text below is encrypted using Playfair cipher. Decrypt it using the key and matrix.")
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

func (b *Builder) customTransposition(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	lbl := labelsFor(lang)
	tr := cipher.NewTransposition(cq.Key)
	encode := cq.Mode == "Encrypt"
	text := cipher.OnlyLetters(cq.Text)

	data := map[string]string{lbl.Keyword: tr.Keyword(), lbl.Indices: alphabetIndices}
	var prompt, answer string
	if encode {
		data[lbl.Plaintext] = text
		answer = tr.Encode(text)
		prompt = pick(lang,
			fmt.Sprintf("\"%s\" metnini, '%s' anahtarını kullanarak Sütunlu Yer Değiştirme (Columnar Transposition) yöntemiyle şifreleyiniz.", text, tr.Keyword()),
			fmt.Sprintf("Encrypt %q using Columnar Transposition with key '%s'.", text, tr.Keyword()))
	} else {
		data[lbl.Ciphertext] = text
		answer = tr.Decode(text)
		prompt = pick(lang,
			"Aşağıdaki metin Sütunlu Yer Değiştirme (Columnar Transposition) yöntemiyle şifrelenmiştir. Şifreyi çözünüz.",
			"Decrypt the text below which was encrypted using Columnar Transposition.")
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

func (b *Builder) customGeneric(cq domain.CustomQuestion, lang string) *domain.QuestionState {
	return &domain.QuestionState{
		Topic:         cq.Topic,
		Prompt:        cq.Text,
		InputHint:     labelsFor(lang).Answer,
		InputType:     inputText,
		CorrectAnswer: cq.Text,
	}
}
