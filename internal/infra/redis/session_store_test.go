package redis

import (
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	store.Save(app.NewSession("s1", "u1", sampleQuiz(), domain.Settings{}))
	if !mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if got := mr.HGet("quiz:session:s1", "userId"); got != "u1" {
		t.Fatalf("expected user marker, got %q", got)
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
