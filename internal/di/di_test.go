package di

import "testing"

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestToken_LazySingleton(t *testing.T) {
	c := NewContainer()
	tok := NewToken[greeter]("test:greeter")

	builds := 0
	RegisterToken(c, tok, func(ServiceRegistry) greeter {
		builds++
		return english{}
	})

	if builds != 0 {
		t.Fatalf("factory ran before first Get")
	}

	for i := 0; i < 3; i++ {
		if got := GetToken(c, tok).Greet(); got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	}
	if builds != 1 {
		t.Errorf("expected 1 build, got %d", builds)
	}
}

func TestContainer_RegisterValue(t *testing.T) {
	c := NewContainer()
	c.Register("answer", 42)

	if got := c.Get("answer").(int); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestContainer_UnknownPanics(t *testing.T) {
	c := NewContainer()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown service")
		}
	}()
	c.Get("missing")
}

func TestGetToken_NilFactoryResult(t *testing.T) {
	c := NewContainer()
	tok := NewToken[greeter]("optional")
	RegisterToken(c, tok, func(ServiceRegistry) greeter { return nil })

	if got := GetToken(c, tok); got != nil {
		t.Errorf("expected nil service, got %v", got)
	}
}
