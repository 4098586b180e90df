package similarity

// Weights blends the three similarity measures into one score. Fields are
// expected to sum to 1; Validate enforces it.
type Weights struct {
	JaroWinkler float64 `yaml:"jaro_winkler"`
	Edit        float64 `yaml:"edit"`
	Token       float64 `yaml:"token"`
}

func (w Weights) blend(jw, edit, token float64) float64 {
	return w.JaroWinkler*jw + w.Edit*edit + w.Token*token
}

// Valid reports whether the weights are non-negative and sum to 1 within a
// small epsilon.
func (w Weights) Valid() bool {
	if w.JaroWinkler < 0 || w.Edit < 0 || w.Token < 0 {
		return false
	}
	sum := w.JaroWinkler + w.Edit + w.Token
	return sum > 0.999 && sum < 1.001
}

// DefaultPrimaryWeights is the blend used first for payee and client name
// scoring.
func DefaultPrimaryWeights() Weights {
	return Weights{JaroWinkler: 0.4, Edit: 0.3, Token: 0.3}
}

// DefaultAlternateWeights favors token overlap; it rescues matches where word
// order or extra words tank the character-level measures.
func DefaultAlternateWeights() Weights {
	return Weights{JaroWinkler: 0.4, Token: 0.6}
}

// BlendedScore scores two names on a 0-100 scale. Both inputs are
// business-normalized first; Jaro-Winkler, edit ratio and token similarity
// are blended under each weight set and the better blend wins. A name that
// normalizes to nothing scores 0.
//
// This one function is the confidence formula for every name-based matcher:
// callers vary the weights, not the math.
func BlendedScore(a, b string, primary, alternate Weights) float64 {
	na := NormalizeBusinessName(a)
	nb := NormalizeBusinessName(b)
	if na == "" || nb == "" {
		return 0
	}

	jw := JaroWinkler(na, nb)
	edit := EditRatio(na, nb)
	token := TokenSimilarity(na, nb)

	score := primary.blend(jw, edit, token)
	if alt := alternate.blend(jw, edit, token); alt > score {
		score = alt
	}
	return score * 100
}
