package websocket

import (
	"testing"

	"github.com/stemsi/class-subjects/internal/model"
)

func TestHubPublish(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()

	rec := model.SubjectsRecord{ClassName: "PREP", Subjects: []string{"Colours"}}
	if n := h.Publish(rec); n != 2 {
		t.Fatalf("Publish delivered to %d, want 2", n)
	}
	if got := <-a; got.ClassName != "PREP" {
		t.Errorf("a got %+v", got)
	}
	if got := <-b; got.ClassName != "PREP" {
		t.Errorf("b got %+v", got)
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("a still open after cancel")
	}
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers = %d, want 1", h.Subscribers())
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	rec := model.SubjectsRecord{ClassName: "UKG"}
	for i := 0; i < subscriberBuffer; i++ {
		h.Publish(rec)
	}
	if n := h.Publish(rec); n != 0 {
		t.Fatalf("Publish to full subscriber delivered %d, want 0", n)
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	h.Close()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel open after Close")
	}
	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("subscription after Close is open")
	}
}
