package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/form"
	"github.com/stemsi/class-subjects/internal/model"
	"github.com/stemsi/class-subjects/internal/repository"
	"github.com/stemsi/class-subjects/internal/websocket"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, model.SubjectsRecord) error {
	return errors.New("disk full")
}

func (failingRepo) List(context.Context) ([]model.SubjectsRecord, error) {
	return nil, errors.New("disk full")
}

func TestCreateStoresAndLists(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(repository.NewMemorySubjectsRepository(), nil, nil, false, zerolog.Nop())

	empty, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("GetAll on empty store = %#v, want empty non-nil slice", empty)
	}

	req := model.CreateSubjectsRequest{Class: "Class-V", Subjects: []string{"Math", "Science"}}
	if err := svc.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Create(ctx, req); err != nil {
		t.Fatalf("Create duplicate class: %v", err)
	}

	got, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	rec := model.SubjectsRecord{ClassName: "Class-V", Subjects: []string{"Math", "Science"}}
	if want := []model.SubjectsRecord{rec, rec}; !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll = %+v, want %+v", got, want)
	}
}

func TestCreateAcceptsAnythingOutsideStrictMode(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(repository.NewMemorySubjectsRepository(), nil, nil, false, zerolog.Nop())

	if err := svc.Create(ctx, model.CreateSubjectsRequest{}); err != nil {
		t.Fatalf("Create(empty): %v", err)
	}
	if err := svc.Create(ctx, model.CreateSubjectsRequest{Class: "Class-XII", Subjects: []string{"a", "a"}}); err != nil {
		t.Fatalf("Create(unvalidated): %v", err)
	}

	got, _ := svc.GetAll(ctx)
	if len(got) != 2 {
		t.Fatalf("len(GetAll) = %d, want 2", len(got))
	}
	if got[0].Subjects == nil {
		t.Error("missing subjects stored as nil, want empty slice")
	}
}

func TestCreateStrictMode(t *testing.T) {
	tests := []struct {
		name       string
		req        model.CreateSubjectsRequest
		wantFields map[string]string
	}{
		{
			name:       "valid",
			req:        model.CreateSubjectsRequest{Class: "LKG", Subjects: []string{"Rhymes", "Drawing"}},
			wantFields: nil,
		},
		{
			name: "unknown class",
			req:  model.CreateSubjectsRequest{Class: "Class-XII", Subjects: []string{"Physics"}},
			wantFields: map[string]string{
				"class": "Unknown class",
			},
		},
		{
			name: "no subjects",
			req:  model.CreateSubjectsRequest{Class: "LKG"},
			wantFields: map[string]string{
				"subjects": form.MsgRequired,
			},
		},
		{
			name: "entry rules",
			req:  model.CreateSubjectsRequest{Class: "UKG", Subjects: []string{"Art", "art", "x", ""}},
			wantFields: map[string]string{
				"subjects[1]": form.MsgDuplicate,
				"subjects[2]": form.MsgMinLength,
				"subjects[3]": form.MsgRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemorySubjectsRepository()
			svc := NewSubjectService(repo, nil, nil, true, zerolog.Nop())

			err := svc.Create(context.Background(), tt.req)
			stored, _ := repo.List(context.Background())

			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Create: %v", err)
				}
				if len(stored) != 1 {
					t.Fatalf("stored %d records, want 1", len(stored))
				}
				return
			}

			if !errors.Is(err, ErrInvalidSubjects) {
				t.Fatalf("err = %v, want ErrInvalidSubjects", err)
			}
			var invalid *InvalidSubjectsError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %T, want *InvalidSubjectsError", err)
			}
			if !reflect.DeepEqual(invalid.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", invalid.Fields, tt.wantFields)
			}
			if len(stored) != 0 {
				t.Errorf("rejected submission was stored: %+v", stored)
			}
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	svc := NewSubjectService(failingRepo{}, nil, nil, false, zerolog.Nop())
	if err := svc.Create(context.Background(), model.CreateSubjectsRequest{Class: "LKG"}); err == nil {
		t.Fatal("Create: want error from store")
	}
	if _, err := svc.GetAll(context.Background()); err == nil {
		t.Fatal("GetAll: want error from store")
	}
}

func TestCreatePublishesToSubscribers(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.Close()
	svc := NewSubjectService(repository.NewMemorySubjectsRepository(), hub, nil, false, zerolog.Nop())

	feed, cancel := svc.Subscribe()
	defer cancel()

	req := model.CreateSubjectsRequest{Class: "PREP", Subjects: []string{"Numbers"}}
	if err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case rec := <-feed:
		want := model.SubjectsRecord{ClassName: "PREP", Subjects: []string{"Numbers"}}
		if !reflect.DeepEqual(rec, want) {
			t.Fatalf("published %+v, want %+v", rec, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no record published")
	}
}

type recordingPublisher struct {
	got []model.SubjectsRecord
}

func (p *recordingPublisher) Publish(rec model.SubjectsRecord) int {
	p.got = append(p.got, rec)
	return 1
}

func TestCreateUsesCustomPublisher(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.Close()
	feed, cancel := hub.Subscribe()
	defer cancel()

	pub := &recordingPublisher{}
	svc := NewSubjectService(repository.NewMemorySubjectsRepository(), hub, pub, false, zerolog.Nop())
	if err := svc.Create(context.Background(), model.CreateSubjectsRequest{Class: "LKG", Subjects: []string{"Rhymes"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(pub.got) != 1 || pub.got[0].ClassName != "LKG" {
		t.Fatalf("publisher got %+v", pub.got)
	}
	select {
	case rec := <-feed:
		t.Fatalf("hub received %+v directly; the publisher owns delivery", rec)
	default:
	}
}

func TestSubscribeWithoutHub(t *testing.T) {
	svc := NewSubjectService(repository.NewMemorySubjectsRepository(), nil, nil, false, zerolog.Nop())
	feed, cancel := svc.Subscribe()
	defer cancel()
	if _, ok := <-feed; ok {
		t.Fatal("feed without hub should be closed")
	}
}
