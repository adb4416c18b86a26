package render_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/render"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
	th "gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/testhelpers"
)

func TestAnalysisReplyWithoutText(t *testing.T) {
	reply, err := render.AnalysisReply("42", nil, false)
	require.NoError(t, err)
	assert.Contains(t, reply, "#42")
	assert.Contains(t, reply, "No text found")
	assert.NotContains(t, reply, "Entities found")
}

func TestAnalysisReplyWithoutEntities(t *testing.T) {
	reply, err := render.AnalysisReply("42", []analysis.EntityDetection{}, true)
	require.NoError(t, err)
	assert.Contains(t, reply, "#42")
	assert.Contains(t, reply, "No entities detected")
}

func TestAnalysisReplyGroupsByType(t *testing.T) {
	detections := []analysis.EntityDetection{
		th.Detection(analysis.Organization, "OpenAI"),
		th.Detection(analysis.Person, "John Doe"),
		th.Detection(analysis.SportsClub, "Zenit"),
		th.Detection(analysis.Person, "Jane Smith"),
	}

	reply, err := render.AnalysisReply("42", detections, true)
	require.NoError(t, err)

	assert.Contains(t, reply, "#42")
	assert.Contains(t, reply, "Entities found: 4")
	persons := strings.Index(reply, "<b>👤 Persons:</b>")
	organizations := strings.Index(reply, "<b>🏢 Organizations:</b>")
	clubs := strings.Index(reply, "<b>⚽ Sports clubs:</b>")
	require.NotEqual(t, -1, persons)
	require.NotEqual(t, -1, organizations)
	require.NotEqual(t, -1, clubs)
	assert.Less(t, persons, organizations)
	assert.Less(t, organizations, clubs)
	assert.Less(t, strings.Index(reply, "John Doe"), strings.Index(reply, "Jane Smith"))
	assert.NotContains(t, reply, "Locations")
	assert.NotContains(t, reply, "blockquote")
}

func TestAnalysisReplyDescription(t *testing.T) {
	d := th.Detection(analysis.Person, "Lionel Messi")
	d.Description = th.String("Argentine footballer")

	reply, err := render.AnalysisReply("7", []analysis.EntityDetection{d}, true)
	require.NoError(t, err)
	assert.Contains(t, reply, "<blockquote>Argentine footballer</blockquote>")
}

func TestAnalysisReplyEscapesHTML(t *testing.T) {
	d := th.Detection(analysis.Organization, "<script>alert(1)</script>")
	d.Description = th.String("Tom & Jerry")

	reply, err := render.AnalysisReply("<b>", []analysis.EntityDetection{d}, true)
	require.NoError(t, err)
	assert.NotContains(t, reply, "<script>")
	assert.Contains(t, reply, "&lt;script&gt;")
	assert.Contains(t, reply, "Tom &amp; Jerry")
	assert.Contains(t, reply, "#&lt;b&gt;")
}

func TestHistory(t *testing.T) {
	empty, err := render.History(nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "History is empty")

	reply, err := render.History([]render.HistoryItem{
		{Index: 1, ID: "10", Preview: "Test message", EntityCount: 2},
		{Index: 2, ID: "20", Preview: "Another message", EntityCount: 0},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "Recent messages")
	assert.Contains(t, reply, "1. #10 Test message")
	assert.Contains(t, reply, "entities: 2")
	assert.Contains(t, reply, "2. #20 Another message")
	assert.Contains(t, reply, "entities: 0")
}

func TestHistoryItems(t *testing.T) {
	items := render.HistoryItems([]store.MessageSummary{
		{ID: "b", Text: th.String("  second \n\n message "), EntityCount: 3},
		{ID: "a", Text: nil},
	})

	assert.Equal(t, []render.HistoryItem{
		{Index: 1, ID: "b", Preview: "second message", EntityCount: 3},
		{Index: 2, ID: "a", Preview: render.NoTextPlaceholder},
	}, items)
	assert.Empty(t, render.HistoryItems(nil))
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("word ", 30)
	cyrillic := strings.Repeat("Москва ", 20)
	unbroken := strings.Repeat("x", 100)

	tests := []struct {
		name string
		text *string
		want string
	}{
		{name: "nil", text: nil, want: render.NoTextPlaceholder},
		{name: "blank", text: th.String(" \n\t "), want: render.NoTextPlaceholder},
		{name: "short", text: th.String("Match at  Luzhniki"), want: "Match at Luzhniki"},
		{name: "cut between words", text: &long, want: strings.TrimSpace(strings.Repeat("word ", 16))},
		{name: "cyrillic counts characters", text: &cyrillic, want: strings.TrimSpace(strings.Repeat("Москва ", 11))},
		{name: "single long word", text: &unbroken, want: strings.Repeat("x", 80)},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		got := render.Preview(tt.text)
		assert.Equal(t, tt.want, got)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), render.PreviewMaxLength)
	}
}

func TestWikiLinks(t *testing.T) {
	withURL := func(value, url string) analysis.EntityDetection {
		d := th.Detection(analysis.Person, value)
		d.DisplayName = value + " (wiki)"
		d.WikiURL = th.String(url)
		return d
	}

	rows := render.WikiLinks([]analysis.EntityDetection{
		withURL("A", "https://en.wikipedia.org/wiki/A"),
		th.Detection(analysis.Event, "no link"),
		withURL("B", "https://en.wikipedia.org/wiki/B"),
		withURL("C", "https://en.wikipedia.org/wiki/C"),
	})

	assert.Equal(t, [][]render.Button{
		{{Label: "A (wiki)", URL: "https://en.wikipedia.org/wiki/A"}, {Label: "B (wiki)", URL: "https://en.wikipedia.org/wiki/B"}},
		{{Label: "C (wiki)", URL: "https://en.wikipedia.org/wiki/C"}},
	}, rows)

	none := render.WikiLinks([]analysis.EntityDetection{th.Detection(analysis.Event, "no link")})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
