package transform

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegexComplexity(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		shouldFail bool
		errorMsg   string
	}{
		{name: "nested_quantifiers_overlap", pattern: `(\w+)*\w`, shouldFail: true, errorMsg: "nested quantifiers"},
		{name: "classic_redos", pattern: `(a+)+`, shouldFail: true, errorMsg: "nested quantifiers"},
		{name: "nested_wildcards", pattern: `(.*)*`, shouldFail: true, errorMsg: "nested quantifiers"},
		{name: "excessive_length", pattern: strings.Repeat("a", 501), shouldFail: true, errorMsg: "too long"},
		{name: "excessive_repetition", pattern: `a{1000,}`, shouldFail: true, errorMsg: "excessive repetition count"},
		{name: "too_many_capture_groups", pattern: strings.Repeat("(a)", 21), shouldFail: true, errorMsg: "too many capture groups"},
		{name: "excessive_nesting", pattern: `((((((a))))))`, shouldFail: true, errorMsg: "excessive nesting depth"},

		{name: "ssn_shape", pattern: `\d{3}-\d{2}-(\d{4})`, shouldFail: false},
		{name: "email_local_part", pattern: `^([^@])[^@]*@`, shouldFail: false},
		{name: "digit_runs", pattern: `[0-9]{4}`, shouldFail: false},
		{name: "alternation", pattern: `(visa|mastercard|amex)`, shouldFail: false},
		{name: "max_safe_length", pattern: strings.Repeat("a", 500), shouldFail: false},
		{name: "max_safe_groups", pattern: strings.Repeat("(a)", 20), shouldFail: false},
		{name: "max_safe_nesting", pattern: `(((((a)))))`, shouldFail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegexComplexity(tt.pattern)
			if tt.shouldFail {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompileRegex(t *testing.T) {
	clearCache()

	t.Run("compiles_and_matches", func(t *testing.T) {
		re, err := compileRegex(`\d{3}-\d{2}-\d{4}`)
		require.NoError(t, err)
		assert.True(t, re.MatchString("123-45-6789"))
		assert.False(t, re.MatchString("not-an-ssn"))
	})

	t.Run("cache_hit_returns_same_object", func(t *testing.T) {
		clearCache()
		re1, err := compileRegex(`[0-9]{4}$`)
		require.NoError(t, err)
		re2, err := compileRegex(`[0-9]{4}$`)
		require.NoError(t, err)
		assert.Same(t, re1, re2)
		assert.Equal(t, 1, cacheSize())
	})

	t.Run("rejects_dangerous_pattern", func(t *testing.T) {
		_, err := compileRegex(`(a+)+`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nested quantifiers")
	})

	t.Run("invalid_syntax", func(t *testing.T) {
		_, err := compileRegex(`[unclosed`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})
}

func TestCompileRegex_LRUEviction(t *testing.T) {
	clearCache()
	for i := 0; i <= 100; i++ {
		_, err := compileRegex(fmt.Sprintf("pattern%d", i))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, cacheSize(), 100)
}

func TestCompileRegex_Concurrent(t *testing.T) {
	clearCache()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			re, err := compileRegex(`mask.*me`)
			assert.NoError(t, err)
			assert.NotNil(t, re)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cacheSize())
}
