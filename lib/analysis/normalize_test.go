package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	th "gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/testhelpers"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "trim and lower", value: "  John Doe ", want: "john doe"},
		{name: "collapse whitespace", value: "John \t\n  Doe", want: "john doe"},
		{name: "cyrillic", value: "ПАО  Сбербанк", want: "пао сбербанк"},
		{name: "already normal", value: "conference", want: "conference"},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.want, analysis.NormalizeValue(tt.value))
	}
}

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence *float64
		want       float64
	}{
		{name: "missing", confidence: nil, want: 0.75},
		{name: "NaN", confidence: th.Float(math.NaN()), want: 0.75},
		{name: "negative", confidence: th.Float(-0.2), want: 0},
		{name: "above one", confidence: th.Float(1.7), want: 1},
		{name: "positive infinity", confidence: th.Float(math.Inf(1)), want: 1},
		{name: "zero", confidence: th.Float(0), want: 0},
		{name: "one", confidence: th.Float(1), want: 1},
		{name: "in range", confidence: th.Float(0.42), want: 0.42},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.want, analysis.NormalizeConfidence(tt.confidence))
	}
}

func TestNormalizeWikiURL(t *testing.T) {
	tests := []struct {
		name string
		url  *string
		want *string
	}{
		{name: "nil", url: nil, want: nil},
		{name: "blank", url: th.String("  "), want: nil},
		{name: "https", url: th.String("https://en.wikipedia.org/wiki/Lionel_Messi"), want: th.String("https://en.wikipedia.org/wiki/Lionel_Messi")},
		{name: "http trimmed", url: th.String(" http://example.org/x "), want: th.String("http://example.org/x")},
		{name: "upper case scheme", url: th.String("HTTPS://example.org"), want: th.String("HTTPS://example.org")},
		{name: "relative", url: th.String("/wiki/Moscow"), want: nil},
		{name: "ftp", url: th.String("ftp://example.org/file"), want: nil},
		{name: "javascript", url: th.String("javascript:alert(1)"), want: nil},
		{name: "not a url", url: th.String("wikipedia page"), want: nil},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		assert.Equal(t, tt.want, analysis.NormalizeWikiURL(tt.url))
	}
}

func TestNormalizeDeduplicatesByTypeAndValue(t *testing.T) {
	raw := []analysis.RawDetection{
		th.RawWithConfidence(analysis.Person, "John Doe", 0.9),
		th.RawWithConfidence(analysis.Person, "john  doe", 0.8),
		th.RawWithConfidence(analysis.Organization, "John Doe", 0.7),
	}

	got := analysis.Normalize("John Doe met john doe", raw)

	require.Len(t, got, 2)
	assert.Equal(t, analysis.Person, got[0].Type)
	assert.Equal(t, 0.9, got[0].Confidence)
	assert.Equal(t, analysis.Organization, got[1].Type)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	raw := th.Raw(analysis.Location, "  Moscow ")

	got := analysis.Normalize("Trip to moscow", []analysis.RawDetection{raw})

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "Moscow", d.Value)
	assert.Equal(t, "Moscow", d.DisplayName)
	assert.Equal(t, "moscow", d.NormalizedValue)
	assert.Equal(t, analysis.DefaultConfidence, d.Confidence)
	assert.Equal(t, analysis.DefaultReason, d.Reason)
	assert.Nil(t, d.Description)
	assert.Nil(t, d.WikiURL)
	assert.Equal(t, th.Int(8), d.StartOffset)
	assert.Equal(t, th.Int(14), d.EndOffset)
}

func TestNormalizeKeepsOwnFields(t *testing.T) {
	raw := analysis.RawDetection{
		Type:        analysis.SportsClub,
		Value:       "Spartak",
		DisplayName: th.String("  FC Spartak Moscow "),
		Confidence:  th.Float(0.6),
		Reason:      th.String("named as a football club"),
		Description: th.String("Russian football club"),
		WikiURL:     th.String("https://en.wikipedia.org/wiki/FC_Spartak_Moscow"),
	}

	got := analysis.Normalize("Spartak won", []analysis.RawDetection{raw})

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "FC Spartak Moscow", d.DisplayName)
	assert.Equal(t, 0.6, d.Confidence)
	assert.Equal(t, "named as a football club", d.Reason)
	assert.Equal(t, th.String("Russian football club"), d.Description)
	assert.Equal(t, th.String("https://en.wikipedia.org/wiki/FC_Spartak_Moscow"), d.WikiURL)
}

func TestNormalizeBlankDisplayNameFallsBackToValue(t *testing.T) {
	raw := th.Raw(analysis.Person, "Jane Roe")
	raw.DisplayName = th.String("   ")

	got := analysis.Normalize("Jane Roe", []analysis.RawDetection{raw})

	require.Len(t, got, 1)
	assert.Equal(t, "Jane Roe", got[0].DisplayName)
}

func TestNormalizeDropsBlankValues(t *testing.T) {
	got := analysis.Normalize("text", []analysis.RawDetection{
		th.Raw(analysis.Person, "   "),
		th.Raw(analysis.Event, ""),
	})
	assert.Empty(t, got)
}

func TestNormalizeSortsByOffsetWithUnlocatedLast(t *testing.T) {
	source := "Messi scored at Camp Nou during the final"
	raw := []analysis.RawDetection{
		th.Raw(analysis.Person, "Ronaldo"),
		th.Raw(analysis.Event, "final"),
		th.Raw(analysis.Organization, "UEFA"),
		th.Raw(analysis.Location, "Camp Nou"),
		th.Raw(analysis.Person, "Messi"),
	}

	got := analysis.Normalize(source, raw)

	assert.Equal(t, []string{"Messi", "Camp Nou", "final", "Ronaldo", "UEFA"}, th.Values(got))
	for _, d := range got {
		if d.StartOffset == nil {
			assert.Nil(t, d.EndOffset)
			continue
		}
		assert.LessOrEqual(t, *d.StartOffset, *d.EndOffset)
	}
}

func TestNormalizeEqualOffsetsKeepOrder(t *testing.T) {
	raw := []analysis.RawDetection{
		th.Raw(analysis.Organization, "Real Madrid"),
		th.Raw(analysis.SportsClub, "Real Madrid"),
	}

	got := analysis.Normalize("Real Madrid won", raw)

	require.Len(t, got, 2)
	assert.Equal(t, analysis.Organization, got[0].Type)
	assert.Equal(t, analysis.SportsClub, got[1].Type)
}
