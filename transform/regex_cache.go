package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/mapengine/pkg/cache"
)

// customMaskRegexes caches compiled custom-mask patterns, LRU-bounded
// since mask patterns arrive from mapping documents and a hostile or
// churning document must not grow process memory without bound.
var customMaskRegexes cache.Cache[*regexp.Regexp]

func init() {
	var err error
	customMaskRegexes, err = cache.NewLRU[*regexp.Regexp](100)
	if err != nil {
		panic(fmt.Sprintf("transform: failed to initialize custom-mask regex cache: %v", err))
	}
}

// compileRegex returns a cached compiled regex, compiling and caching on
// first use. Patterns that fail the complexity guard are rejected before
// compilation.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, found := customMaskRegexes.Get(pattern); found {
		return re, nil
	}

	if err := validateRegexComplexity(pattern); err != nil {
		return nil, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
	}

	customMaskRegexes.Set(pattern, re)
	return re, nil
}

// validateRegexComplexity rejects custom-mask patterns whose shape
// suggests exponential backtracking or oversized state. Mask patterns
// come from mapping documents, which may be remotely sourced; the guard
// runs before every first-time compile.
func validateRegexComplexity(pattern string) error {
	if len(pattern) > 500 {
		return fmt.Errorf("regex pattern too long (max 500 chars): %d chars", len(pattern))
	}

	// Heuristic screen for fragments with overlapping nested quantifiers.
	dangerousFragments := []string{
		`(\w+)*\w`,
		`(\w*)+`,
		`(a+)+`,
		`([a-zA-Z]+)*`,
		`(\d+)*\d`,
		`(.*)*`,
		`(.+)+`,
		`(\s+)*\s`,
		`([^,]+)*[^,]`,
	}
	for _, fragment := range dangerousFragments {
		if strings.Contains(pattern, fragment) {
			return fmt.Errorf("regex pattern contains potentially dangerous construct: nested quantifiers that may cause exponential backtracking")
		}
	}

	if strings.Contains(pattern, "{") {
		for i := 1000; i <= 9999; i++ {
			if strings.Contains(pattern, fmt.Sprintf("{%d", i)) {
				return fmt.Errorf("regex pattern contains excessive repetition count (>= 1000)")
			}
		}
	}

	if strings.Count(pattern, "(") > 20 {
		return fmt.Errorf("regex pattern has too many capture groups (max 20)")
	}

	nestLevel := 0
	maxNest := 0
	for _, ch := range pattern {
		if ch == '(' {
			nestLevel++
			if nestLevel > maxNest {
				maxNest = nestLevel
			}
		} else if ch == ')' {
			nestLevel--
		}
	}
	if maxNest > 5 {
		return fmt.Errorf("regex pattern has excessive nesting depth (max 5 levels)")
	}

	return nil
}

// clearCache empties the custom-mask regex cache. Test helper.
func clearCache() {
	customMaskRegexes.Clear()
}

func cacheSize() int {
	return customMaskRegexes.Size()
}
