package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eiffelgen/internal/contract"
)

func TestParse_IdentifierOnlyDefaultsToBeforeAndAfter(t *testing.T) {
	spec, err := Parse("my_invariant")
	require.NoError(t, err)
	assert.Equal(t, "my_invariant", spec.InvariantName)
	assert.Equal(t, contract.CheckBeforeAndAfter, spec.Timing)
}

func TestParse_TimingKeywords(t *testing.T) {
	tests := []struct {
		name string
		args string
		want contract.Timing
	}{
		{"before", `positive, "before"`, contract.CheckBefore},
		{"after", `positive, "after"`, contract.CheckAfter},
		{"before_and_after", `positive, "before_and_after"`, contract.CheckBeforeAndAfter},
		{"synonym require", `positive, "require"`, contract.CheckBefore},
		{"synonym ensure", `positive, "ensure"`, contract.CheckAfter},
		{"synonym require_and_ensure", `positive, "require_and_ensure"`, contract.CheckBeforeAndAfter},
		{"name-value form", `positive, check_time = "before"`, contract.CheckBefore},
		{"last keyword wins", `positive, "before", "after"`, contract.CheckAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, "positive", spec.InvariantName)
			assert.Equal(t, tt.want, spec.Timing)
		})
	}
}

func TestParse_UnrecognizedTokensAreIgnored(t *testing.T) {
	// Bare identifiers, numbers and unknown name-value pairs in the
	// remainder are forward-compatibility slots, not errors.
	tests := []string{
		`positive, sometimes`,
		`positive, 42`,
		`positive, mode = "strict"`,
		`positive, future_flag, "before"`,
	}

	for _, args := range tests {
		t.Run(args, func(t *testing.T) {
			spec, err := Parse(args)
			require.NoError(t, err)
			assert.Equal(t, "positive", spec.InvariantName)
		})
	}
}

func TestParse_InvalidTimingLiteral(t *testing.T) {
	_, err := Parse(`positive, "sometimes"`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrInvalidTiming, pe.Code)
	assert.Equal(t, "sometimes", pe.Token)
	assert.Contains(t, pe.Message, `"sometimes"`)
	assert.Contains(t, pe.Message, `"before"`)
	assert.Contains(t, pe.Message, `"after"`)
	assert.Contains(t, pe.Message, `"before_and_after"`)
}

func TestParse_InvalidTimingInNameValueForm(t *testing.T) {
	_, err := Parse(`positive, check_time = "sometimes"`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrInvalidTiming, pe.Code)
}

func TestParse_EmptyDirective(t *testing.T) {
	for _, args := range []string{"", "   ", ","} {
		_, err := Parse(args)
		require.Error(t, err)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, ErrEmptyDirective, pe.Code)
	}
}

func TestParse_FirstTokenMustBeIdentifier(t *testing.T) {
	for _, args := range []string{`"before"`, `123abc`, `a.b`} {
		_, err := Parse(args)
		require.Error(t, err)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, ErrMalformedAttribute, pe.Code)
	}
}

func TestParseWithDefault(t *testing.T) {
	spec, err := ParseWithDefault("positive", contract.CheckBefore)
	require.NoError(t, err)
	assert.Equal(t, contract.CheckBefore, spec.Timing)

	// An explicit keyword still overrides the configured default.
	spec, err = ParseWithDefault(`positive, "after"`, contract.CheckBefore)
	require.NoError(t, err)
	assert.Equal(t, contract.CheckAfter, spec.Timing)
}

func TestParse_Deterministic(t *testing.T) {
	first, err := Parse(`positive, "before"`)
	require.NoError(t, err)
	second, err := Parse(`positive, "before"`)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseTiming(t *testing.T) {
	timing, ok := ParseTiming("ensure")
	require.True(t, ok)
	assert.Equal(t, contract.CheckAfter, timing)

	_, ok = ParseTiming("sometimes")
	assert.False(t, ok)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("my_invariant"))
	assert.True(t, IsIdentifier("_x9"))
	assert.False(t, IsIdentifier("9x"))
	assert.False(t, IsIdentifier("a-b"))
	assert.False(t, IsIdentifier(""))
}
