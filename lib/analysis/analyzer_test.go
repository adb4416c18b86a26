package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/gen/mocks"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	th "gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/testhelpers"
)

type AnalyzerSuite struct {
	suite.Suite
	config th.MapLookup
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerSuite))
}

func (s *AnalyzerSuite) SetupTest() {
	s.config = th.MapLookup{}
}

func (s *AnalyzerSuite) TestEmptyInputSkipsBackend() {
	extractor := &mocks.Extractor{}
	analyzer := analysis.NewAnalyzer(s.config, extractor)

	for _, text := range []string{"", "   ", "\n\t"} {
		got := analyzer.Analyze(context.Background(), text)
		s.NotNil(got)
		s.Empty(got)
	}
	extractor.AssertNotCalled(s.T(), "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AnalyzerSuite) TestPassesTrimmedTextAndResolvedTarget() {
	s.config["LLM_PROVIDER"] = "anthropic"
	s.config["ANTHROPIC_MODEL"] = "claude-test"
	target := analysis.Target{Provider: analysis.Anthropic, ModelID: "claude-test"}

	extractor := &mocks.Extractor{}
	extractor.On("Extract", mock.Anything, "Messi scored", target).
		Return([]analysis.RawDetection{th.Raw(analysis.Person, "Messi")}, nil).Once()

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "  Messi scored \n")

	s.Equal([]string{"Messi"}, th.Values(got))
	extractor.AssertExpectations(s.T())
}

func (s *AnalyzerSuite) TestNormalizesBackendResult() {
	extractor := th.NewMockExtractor([]analysis.RawDetection{
		th.RawWithConfidence(analysis.Person, "John Doe", 0.9),
		th.RawWithConfidence(analysis.Person, "john doe", 0.8),
	}, nil)

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "John Doe says hi")

	s.Require().Len(got, 1)
	s.Equal("John Doe", got[0].Value)
	s.Equal(0.9, got[0].Confidence)
	s.Equal(th.Int(0), got[0].StartOffset)
	extractor.AssertExpectations(s.T())
}

func (s *AnalyzerSuite) TestBackendErrorRunsFallback() {
	extractor := th.NewMockExtractor(nil, errors.New("connection refused"))

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Author: John Smith")

	people := th.OfType(got, analysis.Person)
	s.Require().Len(people, 1)
	s.Equal("John Smith", people[0].Value)
	s.Equal("Fallback: looks like a personal name.", people[0].Reason)
}

func (s *AnalyzerSuite) TestContractViolationRunsFallback() {
	_, contractErr := analysis.DecodeResponse([]byte(`{"entities":[{"type":"animal","value":"cat"}]}`))
	extractor := th.NewMockExtractor(nil, contractErr)

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Tomorrow is the conference")

	s.Equal([]string{"conference"}, th.Values(got))
}

func (s *AnalyzerSuite) TestEmptyBackendResultRunsFallback() {
	extractor := th.NewMockExtractor([]analysis.RawDetection{}, nil)

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Tomorrow is the conference")

	s.Require().Len(got, 1)
	s.Equal(analysis.Event, got[0].Type)
	s.Equal("conference", got[0].Value)
}

func (s *AnalyzerSuite) TestBlankBackendValuesRunFallback() {
	extractor := th.NewMockExtractor([]analysis.RawDetection{th.Raw(analysis.Person, "  ")}, nil)

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Author: John Smith")

	s.Equal([]string{"John Smith"}, th.Values(got))
}

func (s *AnalyzerSuite) TestFallbackMayFindNothing() {
	extractor := th.NewMockExtractor(nil, errors.New("timeout"))

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Автор: Пётр Петров")

	s.NotNil(got)
	s.Empty(th.OfType(got, analysis.Person))
}

func (s *AnalyzerSuite) TestPanickingBackendRunsFallback() {
	extractor := &mocks.Extractor{}
	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("sdk exploded") }).Once()

	var got []analysis.EntityDetection
	s.NotPanics(func() {
		got = analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Tomorrow is the conference")
	})
	s.Equal([]string{"conference"}, th.Values(got))
}

func (s *AnalyzerSuite) TestOutputIsSortedWithUnlocatedLast() {
	extractor := th.NewMockExtractor([]analysis.RawDetection{
		th.Raw(analysis.Organization, "FIFA"),
		th.Raw(analysis.Location, "Madrid"),
		th.Raw(analysis.SportsClub, "Real Madrid"),
	}, nil)

	got := analysis.NewAnalyzer(s.config, extractor).Analyze(context.Background(), "Real Madrid is in Madrid")

	s.Equal([]string{"Real Madrid", "Madrid", "FIFA"}, th.Values(got))
	s.Nil(got[2].StartOffset)
}

func TestAnalyzerPropagatesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request")

	extractor := &mocks.Extractor{}
	extractor.On("Extract", mock.MatchedBy(func(c context.Context) bool { return c.Value(key{}) == "request" }), mock.Anything, mock.Anything).
		Return([]analysis.RawDetection{th.Raw(analysis.Event, "final")}, nil).Once()

	got := analysis.NewAnalyzer(th.MapLookup{}, extractor).Analyze(ctx, "the final")

	require.Len(t, got, 1)
	assert.Equal(t, analysis.Event, got[0].Type)
	extractor.AssertExpectations(t)
}
