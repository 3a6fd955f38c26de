package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"intentions/internal/intentsv2/models"
	"intentions/internal/intentsv2/store"
	"intentions/internal/platform/notify"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	recorder *notify.Recorder
	service  *Service
	ctx      context.Context
	t0       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	bus := notify.NewBus()
	s.recorder = notify.NewRecorder().Attach(bus, models.Kinds...)
	s.service = New(store.NewInMemory(), bus)
	s.t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.t0)
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) create(req *models.CreateIntentRequest) *models.Intent {
	if req.Name == "" {
		req.Name = "Summarize"
	}
	if req.Description == "" {
		req.Description = "Condense a document"
	}
	i, err := s.service.CreateIntent(s.ctx, req)
	s.Require().NoError(err)
	return i
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) *dErrors.Error {
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected a domain error, got %v", err)
	s.Require().Equal(code, de.Code)
	return de
}

func (s *ServiceSuite) TestCreateWithArticulation() {
	i := s.create(&models.CreateIntentRequest{
		Aspects:     []models.AspectRequest{{Name: "tone"}},
		Inputs:      []models.InputRequest{{Name: "document", Description: "the source text"}},
		Assumptions: []models.AssumptionRequest{{Description: "English input", Confidence: ptr("likely")}},
	})

	s.Len(i.Aspects, 1)
	s.Require().Len(i.Inputs, 1)
	s.True(i.Inputs[0].Required)
	s.Equal(models.ConfidenceLikely, i.Assumptions[0].Confidence)
	s.Equal([]string{models.KindIntentCreated}, s.recorder.Kinds())
	created := s.recorder.Last().(models.IntentCreated)
	s.Equal(i.ID, created.IntentID)
	s.Equal("Condense a document", created.Description)
}

func (s *ServiceSuite) TestCreateRejectsNestedFailures() {
	_, err := s.service.CreateIntent(s.ctx, &models.CreateIntentRequest{
		Name:        "Summarize",
		Description: "Condense",
		Inputs:      []models.InputRequest{{Name: "document", Description: "  "}},
	})
	de := s.requireCode(err, dErrors.CodeValidation)
	s.Equal("inputs[0].description", de.Fields[0].Field)

	_, err = s.service.CreateIntent(s.ctx, &models.CreateIntentRequest{
		Name:        "Summarize",
		Description: "Condense",
		Pitfalls:    []models.PitfallRequest{{Description: "too long", AspectID: ptr(int64(1))}},
	})
	de = s.requireCode(err, dErrors.CodeValidation)
	s.Equal("aspect_id", de.Fields[0].Field)

	intents, err := s.service.ListIntents(s.ctx)
	s.Require().NoError(err)
	s.Empty(intents)
	s.Empty(s.recorder.Events())
}

// untouchable panics on any repository call, accessors included.
type untouchable struct{ Store }

func (s *ServiceSuite) TestUnknownConfidenceRejectedBeforeRepository() {
	svc := New(untouchable{}, notify.NewBus())
	s.NotPanics(func() {
		_, err := svc.AddAssumption(s.ctx, 1, &models.AssumptionRequest{
			Description: "English input",
			Confidence:  ptr("maybe"),
		})
		de := s.requireCode(err, dErrors.CodeValidation)
		s.Equal("confidence", de.Fields[0].Field)
	})
}

func (s *ServiceSuite) TestInvalidEnumsRejectedBeforeRepository() {
	svc := New(untouchable{}, notify.NewBus())
	for field, add := range map[string]func() error{
		"priority": func() error {
			_, err := svc.AddQuality(s.ctx, 1, &models.QualityRequest{Criterion: "Short", Priority: ptr("urgent")})
			return err
		},
		"source": func() error {
			_, err := svc.AddExample(s.ctx, 1, &models.ExampleRequest{Sample: "Done.", Source: ptr("scraped")})
			return err
		},
		"source_type": func() error {
			_, err := svc.AddInsight(s.ctx, 1, &models.InsightRequest{Content: "Too long", SourceType: "hunch"})
			return err
		},
		"status": func() error {
			_, err := svc.AddInsight(s.ctx, 1, &models.InsightRequest{Content: "Too long", SourceType: "output", Status: ptr("maybe")})
			return err
		},
	} {
		s.Run(field, func() {
			var err error
			s.NotPanics(func() { err = add() })
			de := s.requireCode(err, dErrors.CodeValidation)
			s.Equal(field, de.Fields[0].Field)
		})
	}
}

func (s *ServiceSuite) TestUpdateNameAndDescription() {
	i := s.create(&models.CreateIntentRequest{})
	later := s.t0.Add(time.Minute)
	ctx := requestcontext.WithTime(s.ctx, later)

	renamed, err := s.service.UpdateName(ctx, i.ID, &models.TextRequest{Value: " Digest "})
	s.Require().NoError(err)
	s.Equal("Digest", renamed.Name)
	s.Equal(s.t0, renamed.CreatedAt)
	s.Equal(later, renamed.UpdatedAt)

	_, err = s.service.UpdateDescription(ctx, i.ID, &models.TextRequest{Value: "Shorten a report"})
	s.Require().NoError(err)

	updates := s.recorder.Events()[1:]
	s.Require().Len(updates, 2)
	s.Equal("name", updates[0].(models.IntentUpdated).FieldUpdated)
	s.Equal("description", updates[1].(models.IntentUpdated).FieldUpdated)

	_, err = s.service.UpdateName(ctx, i.ID, &models.TextRequest{Value: "   "})
	s.requireCode(err, dErrors.CodeValidation)
	_, err = s.service.UpdateName(ctx, 999, &models.TextRequest{Value: "x"})
	de := s.requireCode(err, dErrors.CodeNotFound)
	s.Equal("Intent not found", de.Message)
	s.Len(s.recorder.Events(), 3)
}

func (s *ServiceSuite) TestUpdateArticulation() {
	i := s.create(&models.CreateIntentRequest{
		Aspects:  []models.AspectRequest{{Name: "tone"}},
		Pitfalls: []models.PitfallRequest{{Description: "too long"}},
	})
	aspectID := i.Aspects[0].ID
	s.recorder.Reset()

	updated, err := s.service.UpdateArticulation(s.ctx, i.ID, &models.ArticulationRequest{
		Inputs:   &[]models.InputRequest{{Name: "document", Description: "text", AspectID: &aspectID}},
		Pitfalls: &[]models.PitfallRequest{},
	})
	s.Require().NoError(err)
	s.Len(updated.Inputs, 1)
	s.Empty(updated.Pitfalls)
	s.Len(updated.Aspects, 1)
	s.Equal([]string{models.KindArticulationUpdated}, s.recorder.Kinds())

	_, err = s.service.UpdateArticulation(s.ctx, i.ID, &models.ArticulationRequest{
		Choices: &[]models.ChoiceRequest{{Name: "style", Description: "d", AspectID: ptr(aspectID + 100)}},
	})
	s.requireCode(err, dErrors.CodeValidation)

	_, err = s.service.UpdateArticulation(s.ctx, 999, &models.ArticulationRequest{})
	s.requireCode(err, dErrors.CodeNotFound)
	s.Len(s.recorder.Events(), 1)
}

func (s *ServiceSuite) TestAddAndRemoveChildren() {
	i := s.create(&models.CreateIntentRequest{})
	s.recorder.Reset()

	aspect, err := s.service.AddAspect(s.ctx, i.ID, &models.AspectRequest{Name: "tone"})
	s.Require().NoError(err)
	choice, err := s.service.AddChoice(s.ctx, i.ID, &models.ChoiceRequest{
		Name: "style", Description: "formal or casual", AspectID: &aspect.ID,
	})
	s.Require().NoError(err)
	quality, err := s.service.AddQuality(s.ctx, i.ID, &models.QualityRequest{Criterion: "one page"})
	s.Require().NoError(err)
	s.Equal(models.PriorityShouldHave, quality.Priority)
	example, err := s.service.AddExample(s.ctx, i.ID, &models.ExampleRequest{Sample: "TL;DR", Source: ptr("llm_generated")})
	s.Require().NoError(err)
	s.Equal(models.SourceLLMGenerated, example.Source)
	_, err = s.service.AddInput(s.ctx, i.ID, &models.InputRequest{Name: "document", Description: "text", Required: ptr(false)})
	s.Require().NoError(err)
	_, err = s.service.AddPitfall(s.ctx, i.ID, &models.PitfallRequest{Description: "drift"})
	s.Require().NoError(err)

	s.Equal([]string{
		"v2.aspect.added", "v2.choice.added", "v2.quality.added", "v2.example.added",
		"v2.input.added", "v2.pitfall.added",
	}, s.recorder.Kinds())
	added := s.recorder.Events()[1].(models.ChildChanged)
	s.Equal(choice.ID, added.ChildID)
	s.Equal("choice", added.ChildKind)

	removed, err := s.service.RemoveChild(s.ctx, models.KindAspects, i.ID, aspect.ID)
	s.Require().NoError(err)
	s.True(removed)
	s.Equal("v2.aspect.removed", s.recorder.Last().Kind())

	found, err := s.service.GetIntent(s.ctx, i.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Choices, 1)
	s.Nil(found.Choices[0].AspectID)
	s.False(found.Inputs[0].Required)

	before := len(s.recorder.Events())
	removed, err = s.service.RemoveChild(s.ctx, models.KindAspects, i.ID, aspect.ID)
	s.Require().NoError(err)
	s.False(removed)
	_, err = s.service.RemoveChild(s.ctx, models.KindAspects, 999, aspect.ID)
	s.requireCode(err, dErrors.CodeNotFound)
	_, err = s.service.AddAspect(s.ctx, 999, &models.AspectRequest{Name: "tone"})
	s.requireCode(err, dErrors.CodeNotFound)
	_, err = s.service.AddPitfall(s.ctx, i.ID, &models.PitfallRequest{Description: "drift", AspectID: &aspect.ID})
	s.requireCode(err, dErrors.CodeValidation)
	s.Len(s.recorder.Events(), before)
}

func (s *ServiceSuite) TestPromptsAndOutputs() {
	i := s.create(&models.CreateIntentRequest{})

	first, err := s.service.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: "Summarize: {document}"})
	s.Require().NoError(err)
	second, err := s.service.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: "Summarize briefly: {document}"})
	s.Require().NoError(err)
	s.Equal(1, first.Version)
	s.Equal(2, second.Version)
	created := s.recorder.Last().(models.PromptCreated)
	s.Equal(2, created.Version)

	out, err := s.service.AddOutput(s.ctx, second.ID, &models.OutputRequest{Content: "A short summary"})
	s.Require().NoError(err)
	s.Equal(second.ID, out.PromptID)
	s.Equal(models.KindOutputCreated, s.recorder.Last().Kind())

	outputs, err := s.service.ListOutputs(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Len(outputs, 1)
	outputs, err = s.service.ListOutputs(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Empty(outputs)

	_, err = s.service.AddOutput(s.ctx, 999, &models.OutputRequest{Content: "orphan"})
	de := s.requireCode(err, dErrors.CodeNotFound)
	s.Equal("Prompt not found", de.Message)
	_, err = s.service.ListOutputs(s.ctx, 999)
	s.requireCode(err, dErrors.CodeNotFound)
	_, err = s.service.AddPrompt(s.ctx, 999, &models.PromptRequest{Content: "x"})
	s.requireCode(err, dErrors.CodeNotFound)
	_, err = s.service.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: " "})
	s.requireCode(err, dErrors.CodeValidation)
}

func (s *ServiceSuite) TestInsightSources() {
	i := s.create(&models.CreateIntentRequest{
		Assumptions: []models.AssumptionRequest{{Description: "English input"}},
	})
	other := s.create(&models.CreateIntentRequest{Name: "Translate"})
	p, err := s.service.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: "Summarize"})
	s.Require().NoError(err)
	out, err := s.service.AddOutput(s.ctx, p.ID, &models.OutputRequest{Content: "summary"})
	s.Require().NoError(err)
	foreign, err := s.service.AddPrompt(s.ctx, other.ID, &models.PromptRequest{Content: "Translate"})
	s.Require().NoError(err)
	foreignOut, err := s.service.AddOutput(s.ctx, foreign.ID, &models.OutputRequest{Content: "traduction"})
	s.Require().NoError(err)

	in, err := s.service.AddInsight(s.ctx, i.ID, &models.InsightRequest{
		Content:            "summaries run long",
		SourceType:         models.SourceTypeOutput,
		SourceOutputID:     &out.ID,
		SourcePromptID:     &p.ID,
		SourceAssumptionID: &i.Assumptions[0].ID,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPending, in.Status)
	s.Equal(in.ID, s.recorder.Last().(models.InsightCreated).InsightID)

	tests := []struct {
		name  string
		req   models.InsightRequest
		field string
	}{
		{"prompt of another intent", models.InsightRequest{Content: "x", SourceType: "prompt", SourcePromptID: &foreign.ID}, "source_prompt_id"},
		{"output of another intent", models.InsightRequest{Content: "x", SourceType: "output", SourceOutputID: &foreignOut.ID}, "source_output_id"},
		{"missing output", models.InsightRequest{Content: "x", SourceType: "output", SourceOutputID: ptr(int64(999))}, "source_output_id"},
		{"missing assumption", models.InsightRequest{Content: "x", SourceType: "assumption", SourceAssumptionID: ptr(int64(999))}, "source_assumption_id"},
		{"unknown source type", models.InsightRequest{Content: "x", SourceType: "rumour"}, "source_type"},
		{"unknown status", models.InsightRequest{Content: "x", SourceType: "sharpening", Status: ptr("archived")}, "status"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			before := len(s.recorder.Events())
			_, err := s.service.AddInsight(s.ctx, i.ID, &tt.req)
			de := s.requireCode(err, dErrors.CodeValidation)
			s.Equal(tt.field, de.Fields[0].Field)
			s.Len(s.recorder.Events(), before)
		})
	}
}

func (s *ServiceSuite) TestDeleteCascades() {
	i := s.create(&models.CreateIntentRequest{Aspects: []models.AspectRequest{{Name: "tone"}}})
	p, err := s.service.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: "Summarize"})
	s.Require().NoError(err)
	_, err = s.service.AddOutput(s.ctx, p.ID, &models.OutputRequest{Content: "summary"})
	s.Require().NoError(err)

	deleted, err := s.service.DeleteIntent(s.ctx, i.ID)
	s.Require().NoError(err)
	s.True(deleted)
	s.Equal(models.KindIntentDeleted, s.recorder.Last().Kind())

	_, err = s.service.GetIntent(s.ctx, i.ID)
	s.requireCode(err, dErrors.CodeNotFound)
	_, err = s.service.ListOutputs(s.ctx, p.ID)
	s.requireCode(err, dErrors.CodeNotFound)

	deleted, err = s.service.DeleteIntent(s.ctx, i.ID)
	s.Require().NoError(err)
	s.False(deleted)
	s.Equal(models.KindIntentDeleted, s.recorder.Last().Kind())
}

func (s *ServiceSuite) TestFailingSubscriberIsIsolated() {
	bus := notify.NewBus()
	bus.Subscribe(models.KindPromptCreated, "broken", func(context.Context, notify.Notification) error {
		return errors.New("sink down")
	})
	recorder := notify.NewRecorder().Attach(bus, models.KindPromptCreated)
	svc := New(store.NewInMemory(), bus)

	i, err := svc.CreateIntent(s.ctx, &models.CreateIntentRequest{Name: "Summarize", Description: "Condense"})
	s.Require().NoError(err)
	p, err := svc.AddPrompt(s.ctx, i.ID, &models.PromptRequest{Content: "Summarize"})
	s.Require().NoError(err)
	s.Equal(1, p.Version)
	s.Len(recorder.Events(), 1)
}
