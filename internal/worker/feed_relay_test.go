package worker

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/model"
	"github.com/stemsi/class-subjects/internal/websocket"
)

func TestForwardPublishesToHub(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.Close()
	feed, cancel := hub.Subscribe()
	defer cancel()

	w := &FeedRelay{hub: hub, log: zerolog.Nop()}
	w.forward(`not json`)
	w.forward(`{"className":"Class-IX","subjects":["Physics"]}`)

	select {
	case rec := <-feed:
		want := model.SubjectsRecord{ClassName: "Class-IX", Subjects: []string{"Physics"}}
		if !reflect.DeepEqual(rec, want) {
			t.Fatalf("forwarded %+v, want %+v", rec, want)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing forwarded")
	}
	select {
	case rec := <-feed:
		t.Fatalf("unexpected extra record %+v", rec)
	default:
	}
}

func TestFeedRelayRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	hub := websocket.NewHub()
	defer hub.Close()
	feed, cancel := hub.Subscribe()
	defer cancel()

	relay := NewFeedRelay(rdb, hub, "test_feed_"+uuid.NewString(), zerolog.Nop())
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go relay.Start(ctx)

	rec := model.SubjectsRecord{ClassName: "UKG", Subjects: []string{"Stories"}}
	deadline := time.Now().Add(5 * time.Second)
	for relay.Publish(rec) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay never subscribed")
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case got := <-feed:
		if !reflect.DeepEqual(got, rec) {
			t.Fatalf("relayed %+v, want %+v", got, rec)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("record not relayed")
	}
}
