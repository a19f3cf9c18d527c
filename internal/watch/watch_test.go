package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChannel_BorrowReturnsLatest(t *testing.T) {
	ch := New(1)
	ch.Send(2)
	ch.Send(3)

	if got := ch.Borrow(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestReceiver_ChangedWakesOnSend(t *testing.T) {
	ch := New("a")
	rx := ch.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	var err error
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err = rx.Changed(ctx)
		got = rx.Borrow()
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Send("b")
	wg.Wait()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "b" {
		t.Errorf("expected b, got %q", got)
	}
}

func TestReceiver_CoalescesBurst(t *testing.T) {
	ch := New(0)
	rx := ch.Subscribe()

	for i := 1; i <= 5; i++ {
		ch.Send(i)
	}

	if err := rx.Changed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rx.Borrow(); got != 5 {
		t.Errorf("expected latest 5, got %d", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rx.Changed(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline with nothing new, got %v", err)
	}
}

func TestReceiver_Closed(t *testing.T) {
	ch := New(0)
	rx := ch.Subscribe()
	ch.Close()
	ch.Close()
	ch.Send(9)

	if err := rx.Changed(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if got := ch.Borrow(); got != 0 {
		t.Errorf("expected send after close to be dropped, got %d", got)
	}
}
