package question

// Prompt and label text comes in two parallel sets; the config language tag
// only selects display text, never the cipher math or the expected answer.

const alphabetIndices = "A=0, B=1, C=2, D=3, E=4, F=5, G=6, H=7, I=8, J=9, K=10, L=11, M=12, N=13, O=14, P=15, Q=16, R=17, S=18, T=19, U=20, V=21, W=22, X=23, Y=24, Z=25"

const (
	inputText           = "text"
	inputNumber         = "number"
	inputCaesarAnalysis = "caesar_analysis"
)

type labels struct {
	Plaintext     string
	Ciphertext    string
	Key           string
	Keyword       string
	Shift         string
	Matrix        string
	Indices       string
	Encoded       string
	Value1        string
	Value2        string
	Result        string
	MixedAlphabet string
	Answer        string
}

var trLabels = labels{
	Plaintext:     "Düz Metin",
	Ciphertext:    "Şifreli Metin",
	Key:           "Anahtar",
	Keyword:       "Anahtar Kelime",
	Shift:         "Kaydırma",
	Matrix:        "Matris",
	Indices:       "Alfabe İndeksleri",
	Encoded:       "Kodlanmış Metin",
	Value1:        "Değer 1",
	Value2:        "Değer 2",
	Result:        "Sonuç",
	MixedAlphabet: "Karışık Alfabe",
	Answer:        "Cevap",
}

var enLabels = labels{
	Plaintext:     "Plaintext",
	Ciphertext:    "Ciphertext",
	Key:           "Key",
	Keyword:       "Keyword",
	Shift:         "Shift",
	Matrix:        "Matrix",
	Indices:       "Alphabet Indices",
	Encoded:       "Encoded",
	Value1:        "Value 1",
	Value2:        "Value 2",
	Result:        "Result",
	MixedAlphabet: "Mixed Alphabet",
	Answer:        "Answer",
}

func labelsFor(lang string) labels {
	if lang == "en" {
		return enLabels
	}
	return trLabels
}

// pick returns en for language "en" and tr for everything else, mirroring the
// two-language prompt tables.
func pick(lang, tr, en string) string {
	if lang == "en" {
		return en
	}
	return tr
}

// meaningfulTexts are cryptanalysis plaintexts: long enough for frequency
// analysis, spelled with the basic Latin alphabet only.
var meaningfulTexts = map[string][]string{
	"tr": {
		"TARIH GELECEGE ISIK TUTAN BIR AYNA GIBIDIR GECMISINI BILMEYENIN GELECEGI OLMAZ",
		"ISTANBUL BOGAZI ASYA VE AVRUPA KITALARINI BIRLESTIREN DUNYANIN EN ONEMLI SU YOLLARINDAN BIRIDIR",
		"GOBEKLITEPE INSANLIK TARIHININ BILINEN EN ESKI TAPINAK KOMPLEKSI OLARAK TARIHI DEGISTIRMISTIR",
		"BILIM VE TEKNOLOJI INSANLIGIN GELISIMI ICIN EN ONEMLI ARACLARDIR SUREKLI ILERLEMELIYIZ",
		"SIBER GUVENLIK GUNUMUZ DUNYASININ EN KRITIK SAVUNMA HATLARINDAN BIRIDIR BILGI GUC DEMEKTIR",
		"KRIPTOLOJI VERILERIN GUVENLIGINI SAGLAMAK ICIN MATEMATIKSEL YONTEMLER KULLANAN BIR BILIM DALIDIR",
		"KUANTUM BILGISAYARLAR GELECEKTE SIFRELEME YONTEMLERINI KOKUNDEN DEGISTIRECEK BIR GUCE SAHIPTIR",
		"SAKLA SAMANI GELIR ZAMANI DAMLAYA DAMLAYA GOL OLUR GUVENME VARLIGA DUSERSIN DARLIGA",
		"BIR ELIN NESI VAR IKI ELIN SESI VAR BIRLIKTEN KUVVET DOGAR",
		"KITAPLAR HIC SOLMAYAN CICEKLERDIR OKUMAK ZIHNI ACAR VE RUHU BESLER",
	},
	"en": {
		"HISTORY IS LIKE A MIRROR THAT SHEDS LIGHT ON THE FUTURE THOSE WHO DO NOT KNOW THEIR PAST HAVE NO FUTURE",
		"THE GREAT WALL OF CHINA IS ONE OF THE MOST IMPRESSIVE ARCHITECTURAL FEATS IN HUMAN HISTORY",
		"THE PYRAMIDS OF GIZA ARE THE ONLY SURVIVING WONDER OF THE ANCIENT WORLD AND REMAIN A MYSTERY",
		"SCIENCE AND TECHNOLOGY ARE THE MOST IMPORTANT TOOLS FOR THE DEVELOPMENT OF HUMANITY WE MUST CONSTANTLY PROGRESS",
		"CYBER SECURITY IS ONE OF THE MOST CRITICAL DEFENSE LINES OF TODAYS WORLD INFORMATION IS POWER",
		"CRYPTOLOGY IS A BRANCH OF SCIENCE THAT USES MATHEMATICAL METHODS TO ENSURE THE SECURITY OF DATA",
		"QUANTUM COMPUTING PROMISES TO SOLVE PROBLEMS THAT ARE CURRENTLY IMPOSSIBLE FOR CLASSICAL COMPUTERS",
		"ACTIONS SPEAK LOUDER THAN WORDS BETTER LATE THAN NEVER EASY COME EASY GO NO PAIN NO GAIN",
		"THE PEN IS MIGHTIER THAN THE SWORD IDEAS CAN CHANGE THE WORLD MORE THAN VIOLENCE",
		"BOOKS ARE PORTABLE MAGIC THAT ALLOW US TO TRAVEL WITHOUT MOVING OUR FEET",
	},
}

// shortMeaningfulTexts keep Playfair analysis questions solvable by hand.
var shortMeaningfulTexts = map[string][]string{
	"tr": {"SIBER VATAN", "GIZLI DOSYA", "DEVLET SIRRI", "GUVENLI HAT", "OPERASYON", "MAVI VATAN", "KRIPTO", "ISTIHBARAT"},
	"en": {"TOP SECRET", "CYBER WAR", "SAFE ZONE", "CODE RED", "OPERATION", "INTELLIGENCE", "HIDDEN KEY", "SECRET FILE"},
}

func meaningfulText(rnd intner, lang string) string {
	list := meaningfulTexts["tr"]
	if lang == "en" {
		list = meaningfulTexts["en"]
	}
	return list[rnd.Intn(len(list))]
}

func shortMeaningfulText(rnd intner, lang string) string {
	list := shortMeaningfulTexts["tr"]
	if lang == "en" {
		list = shortMeaningfulTexts["en"]
	}
	return list[rnd.Intn(len(list))]
}

type intner interface {
	Intn(n int) int
}
