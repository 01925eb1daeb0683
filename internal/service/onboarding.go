package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/validate"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
)

// AnswersPatch is a partial answer set keyed by JSON field name, e.g.
// {"tariff": "tempo"}. An explicit null clears the answer.
type AnswersPatch map[string]json.RawMessage

// OnboardingService manages the questionnaire completion record.
//
// There is one record per installation, not per user. Every successful
// write publishes on the injected Subject; the signal carries no data.
type OnboardingService struct {
	store    repository.KeyValueStore
	changes  *notify.Subject
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewOnboardingService(store repository.KeyValueStore, changes *notify.Subject, logger *slog.Logger) *OnboardingService {
	return &OnboardingService{
		store:    store,
		changes:  changes,
		validate: validate.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Changes is the subject every write publishes on.
func (s *OnboardingService) Changes() *notify.Subject {
	return s.changes
}

// Load returns the completion record. An absent or unreadable record is
// {completed: false}. A record that is not completed never carries answers
// or a completion date. A completed record stays completed even when some of
// its answers no longer decode; those answers are left unset.
func (s *OnboardingService) Load(ctx context.Context) (model.OnboardingStorage, error) {
	stored, err := s.loadStored(ctx)
	if err != nil {
		return model.OnboardingStorage{}, err
	}
	if stored == nil {
		return model.OnboardingStorage{Completed: false}, nil
	}
	return model.OnboardingStorage{
		Completed:   true,
		CompletedAt: stored.CompletedAt,
		Answers:     s.decodeAnswers(stored.Answers),
	}, nil
}

// Save records the full answer set and marks onboarding completed now.
func (s *OnboardingService) Save(ctx context.Context, answers model.OnboardingAnswers) (model.OnboardingStorage, error) {
	if err := validate.Struct(s.validate, answers); err != nil {
		return model.OnboardingStorage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.OnboardingStorage{
		Completed:   true,
		CompletedAt: s.timestamp(),
		Answers:     &answers,
	}
	if err := s.write(ctx, rec); err != nil {
		return model.OnboardingStorage{}, err
	}
	s.logger.Info("onboarding completed")
	return rec, nil
}

// Patch merges patch into the stored answers with increasing precedence
// defaults < existing < patch, and marks onboarding completed. An existing
// completion date is kept, so patching twice with the same values leaves the
// record unchanged. Only the patched fields are validated; stored answers
// under older names or shapes are carried over untouched.
func (s *OnboardingService) Patch(ctx context.Context, patch AnswersPatch) (model.OnboardingStorage, error) {
	checked, err := checkPatch(patch)
	if err != nil {
		return model.OnboardingStorage{}, err
	}
	if err := validate.Struct(s.validate, checked); err != nil {
		return model.OnboardingStorage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.loadStored(ctx)
	if err != nil {
		return model.OnboardingStorage{}, err
	}

	fields, err := answerFields(model.DefaultOnboardingAnswers())
	if err != nil {
		return model.OnboardingStorage{}, err
	}
	var completedAt string
	if stored != nil {
		var existing map[string]json.RawMessage
		if err := json.Unmarshal(stored.Answers, &existing); err == nil {
			for name, value := range existing {
				fields[name] = value
			}
		}
		completedAt = stored.CompletedAt
	}
	if completedAt == "" {
		completedAt = s.timestamp()
	}
	for name, value := range patch {
		fields[name] = value
	}

	answers, err := json.Marshal(fields)
	if err != nil {
		return model.OnboardingStorage{}, fmt.Errorf("service/onboarding: encoding answers: %w", err)
	}
	rec := storedOnboarding{Completed: true, CompletedAt: completedAt, Answers: answers}
	if err := s.write(ctx, rec); err != nil {
		return model.OnboardingStorage{}, err
	}
	return model.OnboardingStorage{
		Completed:   true,
		CompletedAt: completedAt,
		Answers:     s.decodeAnswers(answers),
	}, nil
}

// Skip marks onboarding completed without recording any answers.
func (s *OnboardingService) Skip(ctx context.Context) (model.OnboardingStorage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.OnboardingStorage{Completed: true, CompletedAt: s.timestamp()}
	if err := s.write(ctx, rec); err != nil {
		return model.OnboardingStorage{}, err
	}
	s.logger.Info("onboarding skipped")
	return rec, nil
}

// Reset deletes the record; the next Load reports {completed: false}.
func (s *OnboardingService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repository.Remove(ctx, s.store, repository.KeyOnboarding); err != nil {
		return fmt.Errorf("service/onboarding: reset: %w", err)
	}
	s.changes.Publish()
	s.logger.Info("onboarding reset")
	return nil
}

// RawAnswers returns the stored answers as a generic JSON object, without
// decoding them into OnboardingAnswers. Records written by older versions of
// the wizard use other field names and value spellings; reconciliation reads
// them through this. Returns nil when there are no answers.
func (s *OnboardingService) RawAnswers(ctx context.Context) (map[string]any, error) {
	raw, found, err := s.store.Get(ctx, repository.KeyOnboarding)
	if err != nil {
		return nil, fmt.Errorf("service/onboarding: raw answers: %w", apperror.StorageFailed("load "+repository.KeyOnboarding, err))
	}
	if !found {
		return nil, nil
	}

	var rec struct {
		Answers map[string]any `json:"answers"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Debug("onboarding record is not valid JSON", slog.String("key", repository.KeyOnboarding))
		return nil, nil
	}
	return rec.Answers, nil
}

func (s *OnboardingService) write(ctx context.Context, rec any) error {
	if err := repository.SaveJSON(ctx, s.store, repository.KeyOnboarding, rec); err != nil {
		return fmt.Errorf("service/onboarding: saving: %w", err)
	}
	s.changes.Publish()
	return nil
}

func (s *OnboardingService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// storedOnboarding is the persisted record with the answers left undecoded.
type storedOnboarding struct {
	Completed   bool            `json:"completed"`
	CompletedAt string          `json:"completedAt,omitempty"`
	Answers     json.RawMessage `json:"answers,omitempty"`
}

// loadStored returns the completed record, or nil when there is none.
func (s *OnboardingService) loadStored(ctx context.Context) (*storedOnboarding, error) {
	stored, err := repository.LoadJSON[storedOnboarding](ctx, s.store, repository.KeyOnboarding)
	if err != nil {
		return nil, fmt.Errorf("service/onboarding: loading: %w", err)
	}
	if stored == nil || !stored.Completed {
		return nil, nil
	}
	return stored, nil
}

// decodeAnswers decodes what it can. Values of the wrong JSON type stay
// unset and unknown names are ignored.
func (s *OnboardingService) decodeAnswers(raw json.RawMessage) *model.OnboardingAnswers {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var answers model.OnboardingAnswers
	if err := json.Unmarshal(raw, &answers); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil
		}
		s.logger.Debug("onboarding answers partially decoded", slog.String("field", typeErr.Field))
	}
	return &answers
}

// answerFields splits a into its JSON fields.
func answerFields(a model.OnboardingAnswers) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("service/onboarding: encoding answers: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("service/onboarding: decoding answers: %w", err)
	}
	return fields, nil
}

// checkPatch decodes patch over the default answers. Unknown field names and
// values of the wrong JSON type are validation errors.
func checkPatch(patch AnswersPatch) (model.OnboardingAnswers, error) {
	fields, err := answerFields(model.DefaultOnboardingAnswers())
	if err != nil {
		return model.OnboardingAnswers{}, err
	}

	for name, value := range patch {
		if _, known := fields[name]; !known {
			return model.OnboardingAnswers{}, apperror.ValidationFailed(name, fmt.Sprintf("unknown answer %q", name))
		}
		fields[name] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return model.OnboardingAnswers{}, apperror.ValidationFailed("answers", "answers are not valid JSON")
	}

	var out model.OnboardingAnswers
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return model.OnboardingAnswers{}, apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return model.OnboardingAnswers{}, apperror.ValidationFailed("answers", "answers are not valid JSON")
	}
	return out, nil
}
