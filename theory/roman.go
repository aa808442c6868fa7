package theory

import "strings"

// romanDegree maps a roman numeral's lower-cased base letters to a 1-based
// scale degree. ResolveNumeral reads the numeral's case (upper/lower)
// separately to pick a major or minor default triad quality.
var romanDegree = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
}

// ResolveNumeral resolves a roman numeral (e.g. "I", "ii", "V7") against
// a key string (e.g. "Cmajor", "Am") to a Chord, per spec.md section 4.3.
// Returns ok=false if the key is unset/unparseable or the numeral is
// invalid.
func ResolveNumeral(numeral, key string) (Chord, bool) {
	if key == "" {
		return Chord{}, false
	}
	base, extension := splitNumeral(numeral)
	if base == "" {
		return Chord{}, false
	}
	isUpper := base == strings.ToUpper(base)
	degree, ok := romanDegree[strings.ToLower(base)]
	if !ok {
		return Chord{}, false
	}

	root, isMinor := ParseKey(key)
	scaleType := ScaleMajor
	if isMinor {
		scaleType = ScaleNaturalMinor
	}
	scale := NewScale(root, scaleType)
	chordRoot := scale.Degree(degree)

	quality := "maj"
	if !isUpper {
		quality = "m"
	}
	if extension != "" {
		if q, ok := qualityAliases[extension]; ok {
			quality = q
		} else {
			return Chord{}, false
		}
	}

	return Chord{Root: chordRoot, Quality: quality}, true
}

// splitNumeral separates a roman-numeral literal's base (I..VII, any
// case) from its optional extension suffix, per spec.md section 6:
// `(I|II|III|IV|V|VI|VII|i|ii|iii|iv|v|vi|vii)(7|maj7|m7|min7|dim7|sus2|sus4|9|6|m6|add9|aug|dim)?`
func splitNumeral(s string) (base, extension string) {
	s = strings.TrimSpace(s)
	romanLetters := "IViv"
	i := 0
	for i < len(s) && strings.ContainsRune(romanLetters, rune(s[i])) {
		i++
	}
	base = s[:i]
	extension = s[i:]
	if _, ok := romanDegree[strings.ToLower(base)]; !ok {
		return "", ""
	}
	return base, extension
}
