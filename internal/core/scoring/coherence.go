package scoring

import (
	"math"
	"sort"

	"zeitgeist/internal/core/tokens"
)

// Coherence reference constants
const (
	minPhraseTokens  = 3    // phrases with fewer surviving tokens are discarded
	corePhraseShare  = 0.35 // token must appear in ceil(35% of phrases) to be core
	maxCoreTokens    = 12
	noisePivot       = 0.35 // noise ratio above this starts to cost
	noiseSlope       = 0.8
	noiseFloor       = 0.5
	keywordBoostMax  = 0.10
	overlapWeight    = 0.50
	compressWeight   = 0.35
	compressClampLo  = 4
	compressClampHi  = 12
)

// CoherenceResult is the narrative-coherence verdict with its components
type CoherenceResult struct {
	Score        float64  `json:"score"`
	Overlap      float64  `json:"overlap"`
	Compression  float64  `json:"compression"`
	NoiseRatio   float64  `json:"noise_ratio"`
	NoisePenalty float64  `json:"noise_penalty"`
	KeywordBoost float64  `json:"keyword_boost"`
	Phrases      int      `json:"phrases"`
	CoreTokens   []string `json:"core_tokens,omitempty"`
}

// NarrativeCoherence measures whether the candidate's phrases tell one story:
// high pairwise token overlap, a compact core vocabulary, low noise.
// Keywords, when supplied, grant a small boost if they intersect the core
func NarrativeCoherence(phrases []string, keywords []string) CoherenceResult {
	sets := make([]tokens.Set, 0, len(phrases))
	totalOccurrences := 0
	for _, p := range phrases {
		toks := tokens.Normalize(p)
		if len(toks) < minPhraseTokens {
			continue
		}
		sets = append(sets, tokens.NewSet(toks))
		totalOccurrences += len(toks)
	}
	if len(sets) == 0 {
		return CoherenceResult{NoisePenalty: 1, KeywordBoost: 1}
	}

	// mean pairwise jaccard across surviving phrases
	overlap := 0.0
	if len(sets) > 1 {
		sum, pairs := 0.0, 0
		for i := 0; i < len(sets); i++ {
			for j := i + 1; j < len(sets); j++ {
				sum += tokens.Jaccard(sets[i], sets[j])
				pairs++
			}
		}
		overlap = sum / float64(pairs)
	}

	// phrase frequency per token
	freq := make(map[string]int)
	for _, s := range sets {
		for t := range s {
			freq[t]++
		}
	}
	unique := len(freq)

	need := int(math.Ceil(corePhraseShare * float64(len(sets))))
	if need < 1 {
		need = 1
	}
	core := make([]string, 0, len(freq))
	for t, n := range freq {
		if n >= need {
			core = append(core, t)
		}
	}
	// frequency desc then lexicographic so the ranking is deterministic
	sort.Slice(core, func(i, j int) bool {
		if freq[core[i]] != freq[core[j]] {
			return freq[core[i]] > freq[core[j]]
		}
		return core[i] < core[j]
	})
	if len(core) > maxCoreTokens {
		core = core[:maxCoreTokens]
	}

	compression := float64(len(core)) / clampf(float64(unique), compressClampLo, compressClampHi)

	noiseRatio := 0.0
	if totalOccurrences > 0 {
		noiseRatio = float64(unique) / float64(totalOccurrences)
	}
	noisePenalty := 1.0
	if noiseRatio > noisePivot {
		noisePenalty = math.Max(noiseFloor, 1-noiseSlope*(noiseRatio-noisePivot))
	}

	boost := keywordBoost(keywords, core)

	score := clamp01((overlapWeight*overlap + compressWeight*compression) * noisePenalty * boost)

	return CoherenceResult{
		Score:        score,
		Overlap:      overlap,
		Compression:  compression,
		NoiseRatio:   noiseRatio,
		NoisePenalty: noisePenalty,
		KeywordBoost: boost,
		Phrases:      len(sets),
		CoreTokens:   core,
	}
}

// keywordBoost returns a multiplier in [1, 1+keywordBoostMax] scaled by how
// many supplied keywords survive normalization and land in the core
func keywordBoost(keywords, core []string) float64 {
	if len(keywords) == 0 || len(core) == 0 {
		return 1
	}
	coreSet := tokens.NewSet(core)
	valid, hit := 0, 0
	for _, kw := range keywords {
		for _, t := range tokens.Normalize(kw) {
			valid++
			if coreSet.Has(t) {
				hit++
			}
		}
	}
	if valid == 0 || hit == 0 {
		return 1
	}
	return 1 + keywordBoostMax*(float64(hit)/float64(valid))
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
