package scoring

import (
	"regexp"
	"strings"
)

// Legibility reference constants
const (
	maxCompactChars   = 240
	maxCompactPhrases = 6
	longCharPenaltyAt = 160
	wordPeakLo        = 8
	wordPeakHi        = 22
	longWordLen       = 10
	lengthWeight      = 0.45
	complexityWeight  = 0.35
	soupWeight        = 0.20
	vocabBase         = 0.80
	vocabScale        = 0.20
)

// jargonTerms is a fixed closed list of insider vocabulary that reads as
// machine-room noise to a general audience
var jargonTerms = map[string]struct{}{
	"llm": {}, "llms": {}, "gpt": {}, "transformer": {}, "transformers": {},
	"inference": {}, "embedding": {}, "embeddings": {}, "tokenizer": {},
	"finetune": {}, "finetuning": {}, "fine-tune": {}, "fine-tuning": {},
	"quantization": {}, "rag": {}, "agentic": {}, "multimodal": {},
	"kubernetes": {}, "k8s": {}, "gpu": {}, "gpus": {}, "cuda": {},
	"latency": {}, "throughput": {}, "sdk": {}, "api": {}, "apis": {},
	"backend": {}, "frontend": {}, "middleware": {}, "orchestration": {},
	"checkpoint": {}, "checkpoints": {}, "benchmark": {}, "benchmarks": {},
}

var (
	wordLikeRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	acronymRe  = regexp.MustCompile(`^[A-Z]{2,5}$`)
	digitRe    = regexp.MustCompile(`[0-9]`)
)

// LegibilityResult is the human-legibility verdict with its components
type LegibilityResult struct {
	Score             float64 `json:"score"`
	LengthScore       float64 `json:"length_score"`
	ComplexityScore   float64 `json:"complexity_score"`
	SoupScore         float64 `json:"soup_score"`
	VocabBonus        float64 `json:"vocab_bonus"`
	Words             int     `json:"words"`
	Chars             int     `json:"chars"`
	AvgWordLen        float64 `json:"avg_word_len"`
	LongWordRatio     float64 `json:"long_word_ratio"`
	CapsRatio         float64 `json:"caps_ratio"`
	DigitRatio        float64 `json:"digit_ratio"`
	JargonHits        int     `json:"jargon_hits"`
}

// CulturalLegibility asks whether a person outside the bubble could read the
// moment's text and get it: moderate length, plain words, no acronym soup
func CulturalLegibility(title string, phrases []string) LegibilityResult {
	text := compact(title, phrases)
	if text == "" {
		return LegibilityResult{}
	}

	raw := strings.Fields(text)
	words := len(raw)
	chars := len(text)

	wordLike, longWords, caps, digits, jargon, acronyms := 0, 0, 0, 0, 0, 0
	totalLen := 0
	distinct := make(map[string]struct{}, words)
	for _, tok := range raw {
		distinct[strings.ToLower(tok)] = struct{}{}
		if digitRe.MatchString(tok) {
			digits++
		}
		if acronymRe.MatchString(tok) {
			acronyms++
		}
		if tok == strings.ToUpper(tok) && len(tok) >= 2 && tok != strings.ToLower(tok) {
			caps++
		}
		if !wordLikeRe.MatchString(tok) {
			continue
		}
		wordLike++
		totalLen += len(tok)
		if len(tok) >= longWordLen {
			longWords++
		}
		if _, hit := jargonTerms[strings.ToLower(tok)]; hit {
			jargon++
		}
	}

	avgLen := 0.0
	longRatio := 0.0
	if wordLike > 0 {
		avgLen = float64(totalLen) / float64(wordLike)
		longRatio = float64(longWords) / float64(wordLike)
	}
	capsRatio := float64(caps) / float64(words)
	digitRatio := float64(digits) / float64(words)
	acronymRatio := float64(acronyms) / float64(words)
	jargonRatio := float64(jargon)/float64(words) + 0.5*acronymRatio

	length := lengthScore(words, chars)
	complexity := clamp01(1 - (1.2*longRatio + 0.15*maxf(0, avgLen-7) + 0.8*jargonRatio))
	soup := clamp01(1 - (1.5*capsRatio + 1.2*digitRatio))
	vocab := clamp01(float64(len(distinct)) / float64(words))

	score := (lengthWeight*length + complexityWeight*complexity + soupWeight*soup) *
		(vocabBase + vocabScale*vocab)

	return LegibilityResult{
		Score:           clamp01(score),
		LengthScore:     length,
		ComplexityScore: complexity,
		SoupScore:       soup,
		VocabBonus:      vocab,
		Words:           words,
		Chars:           chars,
		AvgWordLen:      avgLen,
		LongWordRatio:   longRatio,
		CapsRatio:       capsRatio,
		DigitRatio:      digitRatio,
		JargonHits:      jargon,
	}
}

// compact joins the title and up to maxCompactPhrases phrases into one string
// capped at maxCompactChars bytes
func compact(title string, phrases []string) string {
	parts := make([]string, 0, 1+maxCompactPhrases)
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	for _, p := range phrases {
		if len(parts) >= 1+maxCompactPhrases {
			break
		}
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	out := strings.Join(parts, " ")
	if len(out) > maxCompactChars {
		out = out[:maxCompactChars]
		// do not cut a word in half
		if i := strings.LastIndexByte(out, ' '); i > 0 {
			out = out[:i]
		}
	}
	return out
}

// lengthScore peaks for 8..22 words and decays for terse or rambling text,
// with an extra penalty past longCharPenaltyAt chars
func lengthScore(words, chars int) float64 {
	var s float64
	switch {
	case words == 0:
		return 0
	case words < wordPeakLo:
		s = float64(words) / float64(wordPeakLo)
	case words <= wordPeakHi:
		s = 1
	default:
		s = clamp01(1 - float64(words-wordPeakHi)/float64(wordPeakHi))
	}
	if chars > longCharPenaltyAt {
		over := float64(chars-longCharPenaltyAt) / float64(longCharPenaltyAt)
		s *= clamp01(1 - 0.5*over)
	}
	return s
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
