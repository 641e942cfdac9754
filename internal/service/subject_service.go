package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/form"
	"github.com/stemsi/class-subjects/internal/metrics"
	"github.com/stemsi/class-subjects/internal/model"
	"github.com/stemsi/class-subjects/internal/repository"
	"github.com/stemsi/class-subjects/internal/websocket"
)

// ErrInvalidSubjects is returned in strict mode when a payload fails the
// same checks the admin form runs.
var ErrInvalidSubjects = errors.New("invalid subjects")

// InvalidSubjectsError carries the per-entry messages of a strict-mode rejection.
type InvalidSubjectsError struct {
	Fields map[string]string
}

func (e *InvalidSubjectsError) Error() string { return ErrInvalidSubjects.Error() }

func (e *InvalidSubjectsError) Is(target error) bool { return target == ErrInvalidSubjects }

// RecordPublisher announces stored records to live feed subscribers.
// websocket.Hub serves a single instance; worker.FeedRelay spans instances.
type RecordPublisher interface {
	Publish(rec model.SubjectsRecord) int
}

type SubjectService struct {
	subjectRepo repository.SubjectsRepository
	hub         *websocket.Hub
	publisher   RecordPublisher
	strict      bool
	log         zerolog.Logger
}

// NewSubjectService wires the service. A nil publisher sends records
// straight to hub.
func NewSubjectService(subjectRepo repository.SubjectsRepository, hub *websocket.Hub, publisher RecordPublisher, strict bool, log zerolog.Logger) *SubjectService {
	if publisher == nil && hub != nil {
		publisher = hub
	}
	return &SubjectService{
		subjectRepo: subjectRepo,
		hub:         hub,
		publisher:   publisher,
		strict:      strict,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

// Create appends a record for the submitted class and subjects. Outside
// strict mode the payload is stored as received.
func (s *SubjectService) Create(ctx context.Context, req model.CreateSubjectsRequest) error {
	s.log.Info().
		Str("class", req.Class).
		Strs("subjects", req.Subjects).
		Msg("Received subjects")

	if s.strict {
		if err := s.check(req); err != nil {
			metrics.SubmissionErrorsTotal.WithLabelValues("invalid").Inc()
			return err
		}
	}

	rec := model.SubjectsRecord{ClassName: req.Class, Subjects: req.Subjects}
	if rec.Subjects == nil {
		rec.Subjects = []string{}
	}

	if err := s.subjectRepo.Append(ctx, rec); err != nil {
		metrics.SubmissionErrorsTotal.WithLabelValues("store").Inc()
		s.log.Error().Err(err).Str("class", req.Class).Msg("failed to store subjects")
		return fmt.Errorf("append subjects: %w", err)
	}

	metrics.SubmissionsTotal.Inc()
	metrics.SubjectsReceivedTotal.Add(float64(len(rec.Subjects)))

	if s.publisher != nil {
		n := s.publisher.Publish(rec)
		s.log.Debug().Int("subscribers", n).Msg("Published subjects record")
	}
	return nil
}

// GetAll returns every stored record in insertion order, never nil.
func (s *SubjectService) GetAll(ctx context.Context) ([]model.SubjectsRecord, error) {
	records, err := s.subjectRepo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list subjects")
		return nil, err
	}
	if records == nil {
		records = []model.SubjectsRecord{}
	}
	return records, nil
}

// Subscribe opens a live feed of newly stored records.
func (s *SubjectService) Subscribe() (<-chan model.SubjectsRecord, func()) {
	if s.hub == nil {
		ch := make(chan model.SubjectsRecord)
		close(ch)
		return ch, func() {}
	}
	return s.hub.Subscribe()
}

func (s *SubjectService) check(req model.CreateSubjectsRequest) error {
	fields := make(map[string]string)
	if !model.IsKnownClass(req.Class) {
		fields["class"] = "Unknown class"
	}
	if len(req.Subjects) == 0 {
		fields["subjects"] = form.MsgRequired
	}
	for k, v := range form.Validate(req.Subjects).Fields() {
		fields[k] = v
	}
	if len(fields) > 0 {
		return &InvalidSubjectsError{Fields: fields}
	}
	return nil
}

// Strict reports whether submissions are re-validated before storing.
func (s *SubjectService) Strict() bool {
	return s.strict
}
