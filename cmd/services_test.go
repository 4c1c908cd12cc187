package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/xvierd/fuzzle/internal/logging"
)

func TestNotifyInBackground_DoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	sent := make(chan struct{})

	returned := make(chan (<-chan struct{}), 1)
	go func() {
		returned <- notifyInBackground(logging.NewNop(), "test", func() error {
			close(sent)
			<-release
			return nil
		})
	}()

	var done <-chan struct{}
	select {
	case done = <-returned:
	case <-time.After(time.Second):
		t.Fatal("notifyInBackground blocked on a slow send")
	}

	<-sent
	select {
	case <-done:
		t.Fatal("done closed before the send finished")
	default:
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done never closed")
	}
}

func TestNotifyInBackground_SendError(t *testing.T) {
	done := notifyInBackground(logging.NewNop(), "test", func() error {
		return errors.New("no notification daemon")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done never closed after a failed send")
	}
}
