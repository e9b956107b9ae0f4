// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

type fakeTrainer struct {
	mu    sync.Mutex
	calls []recommend.ContentType
	errs  map[recommend.ContentType]error
	ran   chan recommend.ContentType
}

func newFakeTrainer() *fakeTrainer {
	return &fakeTrainer{ran: make(chan recommend.ContentType, 64)}
}

func (f *fakeTrainer) Train(ctx context.Context, ct recommend.ContentType, params *recommend.Params) (*recommend.TrainResult, error) {
	if params != nil {
		return nil, errors.New("scheduled runs use configured defaults")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("training context has no deadline")
	}
	if logging.CorrelationIDFromContext(ctx) == "" {
		return nil, errors.New("training context has no correlation id")
	}
	f.mu.Lock()
	f.calls = append(f.calls, ct)
	err := f.errs[ct]
	f.mu.Unlock()
	f.ran <- ct
	if err != nil {
		return nil, err
	}
	return &recommend.TrainResult{JobID: "202601010000-" + string(ct), ContentType: ct, MAPAtK: 0.5}, nil
}

func (f *fakeTrainer) Calls() []recommend.ContentType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recommend.ContentType(nil), f.calls...)
}

func TestTrainServiceStartupOnly(t *testing.T) {
	var buf bytes.Buffer
	trainer := newFakeTrainer()
	trainer.errs = map[recommend.ContentType]error{
		recommend.Movies: fmt.Errorf("movies: %w", recommend.ErrTrainingInProgress),
	}
	svc := NewTrainService(trainer, TrainServiceConfig{
		ContentTypes:   []recommend.ContentType{recommend.Movies, recommend.Shows},
		TrainOnStartup: true,
	}, logging.NewTestLogger(&buf))

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve = %v, want ErrDoNotRestart", err)
	}

	got := trainer.Calls()
	if len(got) != 2 || got[0] != recommend.Movies || got[1] != recommend.Shows {
		t.Errorf("trained %v, want [movies shows]", got)
	}
	out := buf.String()
	for _, want := range []string{"training already running", `"trigger":"startup"`, `"correlation_id":`, "training run complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestTrainServiceNothingToDo(t *testing.T) {
	trainer := newFakeTrainer()
	svc := NewTrainService(trainer, TrainServiceConfig{
		ContentTypes: []recommend.ContentType{recommend.Movies},
	}, logging.NewTestLogger(io.Discard))

	if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve = %v, want ErrDoNotRestart", err)
	}
	if calls := trainer.Calls(); len(calls) != 0 {
		t.Errorf("trained %v without a trigger", calls)
	}
	if svc.config.TrainTimeout != 30*time.Minute {
		t.Errorf("default TrainTimeout = %v", svc.config.TrainTimeout)
	}
}

func TestTrainServiceSchedule(t *testing.T) {
	trainer := newFakeTrainer()
	trainer.errs = map[recommend.ContentType]error{
		recommend.Shows: &recommend.EmptyTrainingSetError{ContentType: recommend.Shows},
	}
	svc := NewTrainService(trainer, TrainServiceConfig{
		ContentTypes:  []recommend.ContentType{recommend.Shows},
		TrainInterval: 20 * time.Millisecond,
		TrainTimeout:  time.Second,
	}, logging.NewTestLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-trainer.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("scheduled run %d did not happen", i+1)
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}
