package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	input := MustCompile("a/{x}/b/{y}.ext")
	output := MustCompile("a/{x}/c.ext")

	unbound, err := UnboundParam(input, output)
	require.NoError(t, err)
	assert.Equal(t, "y", unbound)

	bound, err := BoundParam(input, output)
	require.NoError(t, err)
	assert.Equal(t, "x", bound)
}

func TestUnboundParam_Ambiguous(t *testing.T) {
	cases := map[string]struct {
		input, output string
		params        []string
	}{
		"none unbound": {"words/{id}.toml", "out/{id}.json", nil},
		"two unbound":  {"words/{lang}/{id}.toml", "words.json", []string{"id", "lang"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnboundParam(MustCompile(tc.input), MustCompile(tc.output))
			var cfg *ConfigError
			require.ErrorAs(t, err, &cfg)
			assert.Equal(t, AmbiguousKey, cfg.Code)
			assert.Equal(t, tc.params, cfg.Params)
		})
	}
}

func TestBoundParam_Ambiguous(t *testing.T) {
	_, err := BoundParam(MustCompile("words/{id}.toml"), MustCompile("words.json"))
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, AmbiguousGroup, cfg.Code)
	assert.Contains(t, err.Error(), "ambiguous group")
}

func TestSubset(t *testing.T) {
	input := MustCompile("words/{lang}/{id}.toml")
	assert.NoError(t, Subset(MustCompile("out/{lang}.json"), input))

	err := Subset(MustCompile("out/{region}.json"), input)
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, UnknownParam, cfg.Code)
	assert.Equal(t, []string{"region"}, cfg.Params)
}
