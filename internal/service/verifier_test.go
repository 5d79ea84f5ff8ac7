package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	return NewVerifier(knowledge.NewEngine(knowledge.MustLoad()), zap.NewNop())
}

func mem(id, text string, trust float64) domain.Memory {
	return domain.Memory{ID: id, Text: text, Trust: trust}
}

func memAt(id, text string, trust float64, ts int64) domain.Memory {
	m := mem(id, text, trust)
	m.Timestamp = domain.Int64Ptr(ts)
	return m
}

const (
	jan2024 = int64(1704067200)
	feb2024 = int64(1706745600)
	mar2024 = int64(1709337600)
)

func TestVerify_BasicGrounding(t *testing.T) {
	v := newTestVerifier(t)
	ctx := context.Background()
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}

	r := v.Verify(ctx, "You work at Microsoft", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.Empty(t, r.Hallucinations)
	assert.Equal(t, "m1", r.GroundingMap["Microsoft"])

	r = v.Verify(ctx, "You work at Amazon", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Equal(t, []string{"Amazon"}, r.Hallucinations)
	assert.Nil(t, r.Corrected)
}

func TestVerify_PartialGrounding(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "User lives in Seattle", 1.0),
	}

	r := v.Verify(context.Background(), "You work at Amazon and live in Seattle", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Hallucinations, "Amazon")
	assert.NotContains(t, r.Hallucinations, "Seattle")
	assert.Equal(t, "m2", r.GroundingMap["Seattle"])
}

func TestVerify_Paraphrases(t *testing.T) {
	tests := []struct {
		name   string
		memory string
		text   string
	}{
		{"first person memory", "I work at Microsoft", "You work at Microsoft"},
		{"structured fact", "FACT: employer = Microsoft", "You work at Microsoft"},
		{"employed by", "User is employed by Microsoft", "You work at Microsoft"},
		{"resides in", "User resides in Seattle, Washington", "You live in Seattle"},
		{"school suffix", "User graduated from Stanford University", "You studied at Stanford"},
	}
	v := newTestVerifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Verify(context.Background(), tt.text, []domain.Memory{mem("m1", tt.memory, 1.0)}, domain.ModePermissive)
			assert.True(t, r.Passed, "hallucinations: %v", r.Hallucinations)
			assert.Empty(t, r.Hallucinations)
		})
	}
}

func TestVerify_MultipleMemorySupport(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "I work at Microsoft", 1.0),
	}
	r := v.Verify(context.Background(), "You work at Microsoft", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.Contains(t, []string{"m1", "m2"}, r.GroundingMap["Microsoft"])
	assert.Empty(t, r.ContradictionDetails)
}

func TestVerify_CompoundValues(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User knows Python", 0.9),
		mem("m2", "User knows JavaScript", 0.9),
	}

	r := v.Verify(context.Background(), "You use Python and JavaScript", memories, domain.ModePermissive)
	assert.True(t, r.Passed, "hallucinations: %v", r.Hallucinations)
	assert.Equal(t, "m1", r.GroundingMap["Python"])
	assert.Equal(t, "m2", r.GroundingMap["JavaScript"])

	r = v.Verify(context.Background(), "You use Python, JavaScript, Ruby, and Go", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Hallucinations, "Ruby")
	assert.Contains(t, r.Hallucinations, "Go")
	assert.NotContains(t, r.Hallucinations, "Python")
	assert.NotContains(t, r.Hallucinations, "JavaScript")
	assert.False(t, r.FactsSupported.Has("programming_language"))
}

func TestVerify_WrongTitle(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "User is a Software Engineer", 1.0),
	}
	r := v.Verify(context.Background(), "You work at Microsoft as a Product Manager", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Hallucinations, "Product Manager")
	assert.NotContains(t, r.Hallucinations, "Microsoft")
}

func TestVerify_EmptyText(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}

	for _, text := range []string{"", "   \n\t"} {
		r := v.Verify(context.Background(), text, memories, domain.ModeStrict)
		assert.True(t, r.Passed)
		assert.Equal(t, 1.0, r.Confidence)
		assert.Zero(t, r.FactsExtracted.Len())
		assert.Nil(t, r.Corrected)
	}
}

func TestVerify_NoFactsExtracted(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}
	r := v.Verify(context.Background(), "Hello, how are you today?", memories, domain.ModeStrict)
	assert.True(t, r.Passed)
	assert.Empty(t, r.Hallucinations)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestVerify_ZeroMemoriesIsHallucination(t *testing.T) {
	v := newTestVerifier(t)
	r := v.Verify(context.Background(), "You work at Microsoft", nil, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Equal(t, []string{"Microsoft"}, r.Hallucinations)
	assert.Zero(t, r.FactsSupported.Len())
	assert.Equal(t, 0.0, r.Confidence)
}

func TestVerify_Confidence(t *testing.T) {
	v := newTestVerifier(t)

	r := v.Verify(context.Background(), "You work at Microsoft",
		[]domain.Memory{mem("m1", "User works at Microsoft", 0.9)}, domain.ModePermissive)
	assert.InDelta(t, 0.95, r.Confidence, 1e-9)

	r = v.Verify(context.Background(), "You work at Microsoft",
		[]domain.Memory{mem("m1", "User works at Microsoft", 0.95)}, domain.ModePermissive)
	assert.Greater(t, r.Confidence, 0.9)
}

func TestVerify_StrictModeCorrects(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}

	r := v.Verify(context.Background(), "You work at Amazon", memories, domain.ModeStrict)
	require.NotNil(t, r.Corrected)
	assert.Equal(t, "You work at Microsoft", *r.Corrected)

	r = v.Verify(context.Background(), "You work at Microsoft", memories, domain.ModeStrict)
	assert.True(t, r.Passed)
	assert.Nil(t, r.Corrected)
}

func TestVerify_StrictModeSanitizesMemoryClaims(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}
	text := "I remember you work at Amazon.\nHave a great day!"

	r := v.Verify(context.Background(), text, memories, domain.ModeStrict)
	require.NotNil(t, r.Corrected)
	assert.Equal(t,
		"Have a great day!\n\nI don't have reliable stored information for your employer yet. If you tell me, I can store it going forward.",
		*r.Corrected)
}

func TestVerify_HistoricalSlotResolvesToCanonical(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		memAt("m1", "User works at Microsoft", 0.85, jan2024),
		memAt("m2", "User works at Amazon", 0.85, feb2024),
	}
	r := v.Verify(context.Background(), "You work at Amazon. You previously worked at Microsoft.", memories, domain.ModePermissive)
	assert.True(t, r.Passed, "hallucinations: %v", r.Hallucinations)
	assert.False(t, r.RequiresDisclosure)
	assert.NotEmpty(t, r.ContradictionDetails)
	assert.Equal(t, "m1", r.GroundingMap["Microsoft"])
}

func TestVerify_ContradictionDisclosure(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		memAt("m1", "User works at Microsoft", 0.90, jan2024),
		memAt("m2", "User works at Amazon", 0.90, feb2024),
	}

	r := v.Verify(context.Background(), "You work at Amazon", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.True(t, r.RequiresDisclosure)
	assert.Contains(t, r.ContradictedClaims, "Amazon")
	require.NotNil(t, r.ExpectedDisclosure)
	assert.Equal(t, "Amazon (changed from microsoft)", *r.ExpectedDisclosure)

	r = v.Verify(context.Background(), "You work at Amazon (changed from Microsoft)", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.False(t, r.RequiresDisclosure)
}

func TestVerify_DisclosurePhrasings(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User lives in Seattle", 0.85),
		mem("m2", "User lives in Portland", 0.85),
	}
	outputs := []string{
		"You live in Portland (moved from Seattle)",
		"You live in Portland. Previously you lived in Seattle.",
		"You used to live in Seattle but now live in Portland",
		"You live in Portland (was Seattle)",
	}
	for _, out := range outputs {
		t.Run(out, func(t *testing.T) {
			r := v.Verify(context.Background(), out, memories, domain.ModePermissive)
			assert.True(t, r.Passed)
			assert.False(t, r.RequiresDisclosure)
		})
	}
}

func TestVerify_StrictModeAddsDisclosure(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		memAt("m1", "User works at Microsoft", 0.90, jan2024),
		memAt("m2", "User works at Amazon", 0.90, feb2024),
	}
	r := v.Verify(context.Background(), "You work at Amazon", memories, domain.ModeStrict)
	require.NotNil(t, r.Corrected)
	assert.Equal(t, "You work at Amazon (changed from microsoft)", *r.Corrected)
}

func TestVerify_TrustWeighting(t *testing.T) {
	tests := []struct {
		name               string
		trustA, trustB     float64
		text               string
		passed             bool
		requiresDisclosure bool
		hallucination      string
	}{
		{name: "high trust side wins", trustA: 0.2, trustB: 0.95, text: "You work at Amazon", passed: true},
		{name: "low trust side rejected", trustA: 0.2, trustB: 0.95, text: "You work at Microsoft", hallucination: "Microsoft"},
		{name: "zero trust ignored", trustA: 0.9, trustB: 0.0, text: "You work at Microsoft", passed: true},
		{name: "equal high trust", trustA: 0.85, trustB: 0.85, text: "You work at Microsoft", requiresDisclosure: true},
		{name: "small gap", trustA: 0.90, trustB: 0.85, text: "You work at Amazon", requiresDisclosure: true},
		{name: "both below credibility", trustA: 0.6, trustB: 0.7, text: "You work at Amazon", passed: true},
	}
	v := newTestVerifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memories := []domain.Memory{
				mem("m1", "User works at Microsoft", tt.trustA),
				mem("m2", "User works at Amazon", tt.trustB),
			}
			r := v.Verify(context.Background(), tt.text, memories, domain.ModePermissive)
			assert.Equal(t, tt.passed, r.Passed)
			assert.Equal(t, tt.requiresDisclosure, r.RequiresDisclosure)
			if tt.hallucination != "" {
				assert.Contains(t, r.Hallucinations, tt.hallucination)
			}
		})
	}
}

func TestVerify_LargeTrustGapStillMarksContradiction(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 0.2),
		mem("m2", "User works at Amazon", 0.95),
	}
	r := v.Verify(context.Background(), "You work at Amazon", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.Contains(t, r.ContradictedClaims, "Amazon")
	assert.Greater(t, r.Confidence, 0.8)
}

func TestVerify_AgreeingLowTrustMemoriesStillGround(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 0.3),
		mem("m2", "User works at Microsoft", 0.4),
	}
	r := v.Verify(context.Background(), "You work at Microsoft", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
}

func TestVerify_EndToEndContradictions(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		memAt("m1", "User works at Microsoft in Seattle", 0.90, jan2024),
		memAt("m2", "User works at Amazon in Portland", 0.90, mar2024),
	}

	r := v.Verify(context.Background(), "You work at Amazon in Portland", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.True(t, r.RequiresDisclosure)
	assert.Len(t, r.ContradictionDetails, 2)

	r = v.Verify(context.Background(), "You work at Amazon in Portland (changed from Microsoft in Seattle)", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.False(t, r.RequiresDisclosure)
}

func TestVerify_NoContradictionsReported(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "User lives in Seattle", 1.0),
	}
	r := v.Verify(context.Background(), "You work at Microsoft and live in Seattle", memories, domain.ModePermissive)
	assert.True(t, r.Passed)
	assert.Empty(t, r.ContradictionDetails)
	assert.Empty(t, r.ContradictedClaims)
	assert.False(t, r.RequiresDisclosure)
}

func TestVerify_HallucinationAmongContradictions(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 0.85),
		mem("m2", "User works at Amazon", 0.85),
	}
	r := v.Verify(context.Background(), "You work at Google", memories, domain.ModePermissive)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Hallucinations, "Google")
}

func TestVerify_KnowledgeFacts(t *testing.T) {
	v := newTestVerifier(t)

	r := v.Verify(context.Background(), "We ended up going with Postgres instead",
		[]domain.Memory{mem("m1", "FACT: database = MySQL", 0.9)}, domain.ModePermissive)
	assert.False(t, r.Passed)

	r = v.Verify(context.Background(), "We ended up going with Postgres instead",
		[]domain.Memory{mem("m1", "FACT: database = PostgreSQL", 0.9)}, domain.ModePermissive)
	assert.True(t, r.Passed, "hallucinations: %v", r.Hallucinations)
}

func TestExtractClaims(t *testing.T) {
	v := newTestVerifier(t)
	claims := v.ExtractClaims("My name is Bob and I live in Denver")

	name, ok := claims.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Bob", name.Value)
	loc, ok := claims.Get("location")
	require.True(t, ok)
	assert.Equal(t, "Denver", loc.Value)
}

func TestExplain(t *testing.T) {
	v := newTestVerifier(t)
	ex := v.Explain("We use MySQL")
	db, ok := ex.Knowledge.Get("database")
	require.True(t, ok)
	assert.Equal(t, "mysql", db.Normalized)
	require.NotEmpty(t, ex.KnowledgeDetailed)
	assert.Equal(t, "database", ex.KnowledgeDetailed[0].Slot)
	assert.NotNil(t, ex.Pattern)

	plain := NewVerifier(nil, zap.NewNop()).Explain("We use MySQL")
	assert.Equal(t, 0, plain.Knowledge.Len())
	assert.Empty(t, plain.KnowledgeDetailed)
}

func TestFindSupport(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "User lives in Seattle", 1.0),
	}

	claim, ok := v.ExtractClaims("I work at Microsoft").Get("employer")
	require.True(t, ok)
	m, found := v.FindSupport(context.Background(), claim, memories)
	require.True(t, found)
	assert.Equal(t, "m1", m.ID)

	_, found = v.FindSupport(context.Background(), domain.ExtractedFact{Slot: "employer", Value: "Globex"}, memories)
	assert.False(t, found)
}

func TestBuildGroundingMap(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{
		mem("m1", "User works at Microsoft", 1.0),
		mem("m2", "User lives in Seattle", 1.0),
	}
	claims := v.ExtractClaims("I work at Microsoft and live in Seattle")

	gm := v.BuildGroundingMap(context.Background(), claims, memories)
	assert.Equal(t, "m1", gm["Microsoft"])
	assert.Equal(t, "m2", gm["Seattle"])
}

func TestVerifyBatch(t *testing.T) {
	v := newTestVerifier(t)
	memories := []domain.Memory{mem("m1", "User works at Microsoft", 1.0)}
	items := []BatchItem{
		{Text: "You work at Microsoft", Memories: memories},
		{Text: "You work at Amazon", Memories: memories},
		{Text: "", Memories: memories},
		{Text: "You work at Google", Memories: nil},
	}

	reports, err := v.VerifyBatch(context.Background(), items, domain.ModePermissive, 2)
	require.NoError(t, err)
	require.Len(t, reports, len(items))
	assert.True(t, reports[0].Passed)
	assert.False(t, reports[1].Passed)
	assert.True(t, reports[2].Passed)
	assert.Equal(t, []string{"Google"}, reports[3].Hallucinations)
	for i, r := range reports {
		assert.Equal(t, items[i].Text, r.Original)
	}
}

func TestVerifyBatch_Cancelled(t *testing.T) {
	v := newTestVerifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.VerifyBatch(ctx, []BatchItem{{Text: "You work at Microsoft"}}, domain.ModePermissive, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify_WithoutKnowledgeEngine(t *testing.T) {
	v := NewVerifier(nil, zap.NewNop())
	r := v.Verify(context.Background(), "You work at Microsoft",
		[]domain.Memory{mem("m1", "User works at Microsoft", 1.0)}, domain.ModePermissive)
	assert.True(t, r.Passed)
}
