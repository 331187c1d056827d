package ws

import (
	"context"
	"net"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/emandor/mcq_mentor/internal/mentor"
	"github.com/emandor/mcq_mentor/internal/middleware"
	"github.com/emandor/mcq_mentor/internal/providers"
)

type fakeGenerator struct {
	calls []string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, v mentor.Variant, topic string) (mentor.Result, error) {
	f.calls = append(f.calls, v.Slug+":"+topic)
	if f.err != nil {
		return mentor.Result{}, f.err
	}
	return mentor.Result{Variant: v, Topic: topic, Raw: "Вопрос 1"}, nil
}

func TestDispatchGenerate(t *testing.T) {
	gen := &fakeGenerator{}
	pl, ok := Dispatch(context.Background(), gen, []byte(`{"action":"generate","variant":"mts","topic":"Химия"}`))
	if !ok {
		t.Fatal("expected reply")
	}
	if pl.Event != EventGenerated || pl.Variant != "mts" {
		t.Errorf("unexpected payload %+v", pl)
	}
	res, _ := pl.Data.(mentor.Result)
	if res.Raw != "Вопрос 1" {
		t.Errorf("unexpected data %+v", pl.Data)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "mts:Химия" {
		t.Errorf("unexpected calls %v", gen.calls)
	}
}

func TestDispatchMapsFailure(t *testing.T) {
	gen := &fakeGenerator{err: &providers.RequestFailedError{Vendor: providers.SourceCotype, StatusCode: 500, Body: "secret body"}}
	pl, ok := Dispatch(context.Background(), gen, []byte(`{"action":"generate","variant":"mts","topic":"x"}`))
	if !ok {
		t.Fatal("expected reply")
	}
	ep, _ := pl.Data.(ErrorPayload)
	if pl.Event != EventError || ep.Error != providers.KindRequestFailed || ep.Message != mentor.FailureMessage {
		t.Errorf("unexpected payload %+v", pl)
	}
}

func TestDispatchUnknownVariant(t *testing.T) {
	gen := &fakeGenerator{}
	pl, ok := Dispatch(context.Background(), gen, []byte(`{"action":"generate","variant":"nope","topic":"x"}`))
	if !ok || pl.Event != EventError {
		t.Fatalf("expected error reply, got %+v", pl)
	}
	if len(gen.calls) != 0 {
		t.Error("unknown variant must not reach the generator")
	}
}

func TestDispatchIgnoresNoise(t *testing.T) {
	gen := &fakeGenerator{}
	for _, msg := range []string{`not json`, `{"action":"join","room":"x"}`, `{}`} {
		if _, ok := Dispatch(context.Background(), gen, []byte(msg)); ok {
			t.Errorf("expected no reply for %s", msg)
		}
	}
	if len(gen.calls) != 0 {
		t.Errorf("expected no calls, got %v", gen.calls)
	}
}

// blockingGenerator holds every call until its context is canceled.
type blockingGenerator struct {
	started  chan struct{}
	canceled chan struct{}
}

func (b *blockingGenerator) Generate(ctx context.Context, _ mentor.Variant, _ string) (mentor.Result, error) {
	close(b.started)
	<-ctx.Done()
	close(b.canceled)
	return mentor.Result{}, ctx.Err()
}

func serveWS(t *testing.T, gen Generator) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", middleware.WSUpgrade())
	app.Get("/ws", websocket.New(Handle(gen)))
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws"
}

func TestHandleRepliesOverSocket(t *testing.T) {
	conn, _, err := fws.DefaultDialer.Dial(serveWS(t, &fakeGenerator{}), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(fws.TextMessage, []byte(`{"action":"generate","variant":"mts","topic":"Химия"}`)); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pl struct {
		Event   Event  `json:"event"`
		Variant string `json:"variant"`
	}
	if err := conn.ReadJSON(&pl); err != nil {
		t.Fatalf("read: %v", err)
	}
	if pl.Event != EventGenerated || pl.Variant != "mts" {
		t.Errorf("unexpected reply %+v", pl)
	}
}

func TestHandleCancelsCallWhenPeerLeaves(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), canceled: make(chan struct{})}
	conn, _, err := fws.DefaultDialer.Dial(serveWS(t, gen), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := conn.WriteMessage(fws.TextMessage, []byte(`{"action":"generate","variant":"mts","topic":"x"}`)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-gen.started:
	case <-time.After(2 * time.Second):
		t.Fatal("generator never called")
	}

	conn.Close()
	select {
	case <-gen.canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("vendor call not canceled after disconnect")
	}
}
