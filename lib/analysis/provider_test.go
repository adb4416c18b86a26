package analysis_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/testhelpers"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name   string
		config testhelpers.MapLookup
		want   analysis.Target
	}{
		{
			name:   "unset provider",
			config: testhelpers.MapLookup{},
			want:   analysis.Target{Provider: analysis.OpenAI, ModelID: "gpt-4o-mini"},
		},
		{
			name:   "unsupported provider",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "bogus"},
			want:   analysis.Target{Provider: analysis.OpenAI, ModelID: "gpt-4o-mini"},
		},
		{
			name:   "whitespace provider",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "   "},
			want:   analysis.Target{Provider: analysis.OpenAI, ModelID: "gpt-4o-mini"},
		},
		{
			name:   "mixed case provider is trimmed and lowered",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "  AnThRoPiC "},
			want:   analysis.Target{Provider: analysis.Anthropic, ModelID: "claude-3-5-haiku-latest"},
		},
		{
			name:   "anthropic with model override",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "anthropic", "ANTHROPIC_MODEL": "claude-test"},
			want:   analysis.Target{Provider: analysis.Anthropic, ModelID: "claude-test"},
		},
		{
			name:   "deepseek default model",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "deepseek"},
			want:   analysis.Target{Provider: analysis.DeepSeek, ModelID: "deepseek-chat"},
		},
		{
			name:   "openai model override",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "openai", "OPENAI_MODEL": "gpt-4.1"},
			want:   analysis.Target{Provider: analysis.OpenAI, ModelID: "gpt-4.1"},
		},
		{
			name:   "override of another provider is ignored",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "deepseek", "OPENAI_MODEL": "gpt-4.1"},
			want:   analysis.Target{Provider: analysis.DeepSeek, ModelID: "deepseek-chat"},
		},
		{
			name:   "unsupported provider uses the openai override",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "mistral", "OPENAI_MODEL": "gpt-4.1"},
			want:   analysis.Target{Provider: analysis.OpenAI, ModelID: "gpt-4.1"},
		},
		{
			name:   "blank override falls back to the default",
			config: testhelpers.MapLookup{"LLM_PROVIDER": "anthropic", "ANTHROPIC_MODEL": " "},
			want:   analysis.Target{Provider: analysis.Anthropic, ModelID: "claude-3-5-haiku-latest"},
		},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.want, analysis.ResolveTarget(tt.config))
	}
}

func TestResolveTargetFromViper(t *testing.T) {
	v := viper.New()
	v.Set("LLM_PROVIDER", "anthropic")
	v.Set("ANTHROPIC_MODEL", "claude-test")

	assert.Equal(t, analysis.Target{Provider: analysis.Anthropic, ModelID: "claude-test"}, analysis.ResolveTarget(v))
}

func TestResolveTargetReadsConfigEachCall(t *testing.T) {
	config := testhelpers.MapLookup{}
	assert.Equal(t, analysis.OpenAI, analysis.ResolveTarget(config).Provider)

	config["LLM_PROVIDER"] = "deepseek"
	assert.Equal(t, analysis.DeepSeek, analysis.ResolveTarget(config).Provider)
}

func TestParseProvider(t *testing.T) {
	p, ok := analysis.ParseProvider("DeepSeek")
	assert.True(t, ok)
	assert.Equal(t, analysis.DeepSeek, p)

	p, ok = analysis.ParseProvider("ollama")
	assert.False(t, ok)
	assert.Equal(t, analysis.OpenAI, p)
}
