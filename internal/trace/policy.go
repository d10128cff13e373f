package trace

import (
	"fmt"
	"regexp"
)

// NamePolicy reports whether a symbol name looks synthetic (produced by an
// obfuscating transform rather than a human). Synthetic names lose to the
// frame's own function name during resolution.
type NamePolicy func(name string) bool

// DefaultSyntheticPattern matches the common hex-suffixed obfuscator shape,
// e.g. "_0x3a4f2b".
const DefaultSyntheticPattern = `^_0x[0-9a-fA-F]+$`

// SyntheticName compiles pattern into a NamePolicy. An empty pattern means
// "nothing is synthetic".
func SyntheticName(pattern string) (NamePolicy, error) {
	if pattern == "" {
		return func(string) bool { return false }, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("synthetic name pattern: %w", err)
	}
	return re.MatchString, nil
}

// pickName applies the name preference rule: the original name wins unless
// it looks synthetic, in which case the raw frame function name is kept.
func pickName(original string, hasOriginal bool, frameFunc string, synthetic NamePolicy) string {
	if hasOriginal && !synthetic(original) {
		return original
	}
	return frameFunc
}
