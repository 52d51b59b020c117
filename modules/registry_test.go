package modules_test

import (
	"testing"

	"github.com/relab/dagbft/modules"
)

type greeter interface {
	Greet() string
}

type english struct{}

func (english) Greet() string { return "hello" }

func TestRegisterAndGet(t *testing.T) {
	modules.Register("english", func() greeter { return english{} })

	g, ok := modules.Get[greeter]("english")
	if !ok {
		t.Fatal("Get() did not find the registered module")
	}
	if got := g.Greet(); got != "hello" {
		t.Errorf("Greet() = %q, want %q", got, "hello")
	}
}

func TestGetUnknownName(t *testing.T) {
	if _, ok := modules.Get[greeter]("klingon"); ok {
		t.Error("Get() found a module that was never registered")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	modules.Register("dup", func() greeter { return english{} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() did not panic")
		}
	}()
	modules.Register("dup", func() greeter { return english{} })
}

func TestList(t *testing.T) {
	modules.Register("listed", func() greeter { return english{} })

	for _, names := range modules.List() {
		for _, name := range names {
			if name == "listed" {
				return
			}
		}
	}
	t.Error("List() does not include the registered module")
}
