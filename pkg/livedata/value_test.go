package livedata

import (
	"errors"
	"testing"

	"github.com/bft-labs/lifecycle/pkg/lifecycle"
)

// collector records every value it receives.
type collector[T any] struct {
	got      []T
	onChange func(T)
}

func (c *collector[T]) OnChanged(v T) {
	c.got = append(c.got, v)
	if c.onChange != nil {
		c.onChange(v)
	}
}

func handle(t *testing.T, host *lifecycle.Host, events ...lifecycle.Event) {
	t.Helper()
	for _, ev := range events {
		if err := host.Lifecycle().HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent(%s) error = %v", ev, err)
		}
	}
}

func TestValue_GetAndVersion(t *testing.T) {
	v := New[int]()
	if _, ok := v.Get(); ok {
		t.Error("Get() on empty value reported ok")
	}
	if v.Version() != -1 {
		t.Errorf("Version() = %d, want -1", v.Version())
	}

	v.Set(4)
	v.Set(5)
	got, ok := v.Get()
	if !ok || got != 5 {
		t.Errorf("Get() = %d, %v, want 5, true", got, ok)
	}
	if v.Version() != 1 {
		t.Errorf("Version() = %d, want 1", v.Version())
	}

	w := NewWith("x")
	if s, ok := w.Get(); !ok || s != "x" || w.Version() != 0 {
		t.Errorf("NewWith: Get() = %q, %v, Version() = %d", s, ok, w.Version())
	}
}

func TestValue_ObserveForever(t *testing.T) {
	v := NewWith(1)
	c := &collector[int]{}

	if err := v.ObserveForever(c); err != nil {
		t.Fatal(err)
	}
	v.Set(2)
	v.RemoveObserver(c)
	v.Set(3)

	if len(c.got) != 2 || c.got[0] != 1 || c.got[1] != 2 {
		t.Errorf("got %v, want [1 2]", c.got)
	}
	if v.HasObservers() || v.HasActiveObservers() {
		t.Error("observers remain after RemoveObserver")
	}
}

func TestValue_EmptyValueNotDelivered(t *testing.T) {
	v := New[string]()
	c := &collector[string]{}
	_ = v.ObserveForever(c)

	if len(c.got) != 0 {
		t.Errorf("got %v before any Set", c.got)
	}
}

func TestValue_ObserveFollowsLifecycle(t *testing.T) {
	host := lifecycle.NewHost("screen")
	v := New[string]()
	c := &collector[string]{}

	if err := v.Observe(host, c); err != nil {
		t.Fatal(err)
	}
	if v.HasActiveObservers() {
		t.Error("observer active before owner started")
	}

	v.Set("a")
	handle(t, host, lifecycle.EventCreate)
	if len(c.got) != 0 {
		t.Fatalf("delivered while Created: %v", c.got)
	}

	handle(t, host, lifecycle.EventStart)
	v.Set("b")
	handle(t, host, lifecycle.EventResume, lifecycle.EventPause, lifecycle.EventStop)
	v.Set("c")
	v.Set("d")
	if len(c.got) != 2 {
		t.Fatalf("got %v, want [a b] before restart", c.got)
	}

	handle(t, host, lifecycle.EventStart)

	want := []string{"a", "b", "d"}
	if len(c.got) != len(want) {
		t.Fatalf("got %v, want %v", c.got, want)
	}
	for i := range want {
		if c.got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, c.got[i], want[i])
		}
	}
}

func TestValue_ObserverRemovedOnDestroy(t *testing.T) {
	host := lifecycle.NewHost("screen")
	v := NewWith(0)
	c := &collector[int]{}
	_ = v.Observe(host, c)
	handle(t, host, lifecycle.EventCreate, lifecycle.EventStart)

	if host.Lifecycle().ObserverCount() != 1 {
		t.Fatalf("engine has %d observers, want 1", host.Lifecycle().ObserverCount())
	}

	handle(t, host, lifecycle.EventDestroy)
	v.Set(1)

	if v.HasObservers() {
		t.Error("observer still attached after owner destroyed")
	}
	if len(c.got) != 1 || c.got[0] != 0 {
		t.Errorf("got %v, want [0]", c.got)
	}
}

func TestValue_ObserveDestroyedOwner(t *testing.T) {
	host := lifecycle.NewHost("gone")
	handle(t, host, lifecycle.EventDestroy)

	err := New[int]().Observe(host, &collector[int]{})
	if !errors.Is(err, lifecycle.ErrEngineDisposed) {
		t.Errorf("Observe() error = %v, want ErrEngineDisposed", err)
	}
}

func TestValue_ObserveNilOwner(t *testing.T) {
	v := NewWith(1)
	var typed *lifecycle.Host
	for name, owner := range map[string]lifecycle.Owner{"nil": nil, "typed nil": typed} {
		c := &collector[int]{}
		if err := v.Observe(owner, c); !errors.Is(err, ErrNilOwner) {
			t.Errorf("%s: Observe() error = %v, want ErrNilOwner", name, err)
		}
		if len(c.got) != 0 {
			t.Errorf("%s: observer received %v", name, c.got)
		}
	}
	if v.HasObservers() {
		t.Error("rejected observer was attached")
	}
}

func TestValue_ObserverBoundElsewhere(t *testing.T) {
	a, b := lifecycle.NewHost("a"), lifecycle.NewHost("b")
	v := New[int]()
	c := &collector[int]{}

	if err := v.Observe(a, c); err != nil {
		t.Fatal(err)
	}
	if err := v.Observe(a, c); err != nil {
		t.Errorf("re-observe with same owner error = %v", err)
	}
	if err := v.Observe(b, c); !errors.Is(err, ErrObserverBoundElsewhere) {
		t.Errorf("Observe(other owner) error = %v, want ErrObserverBoundElsewhere", err)
	}
	if err := v.ObserveForever(c); !errors.Is(err, ErrObserverBoundElsewhere) {
		t.Errorf("ObserveForever(bound) error = %v, want ErrObserverBoundElsewhere", err)
	}

	f := &collector[int]{}
	_ = v.ObserveForever(f)
	if err := v.Observe(a, f); !errors.Is(err, ErrObserverBoundElsewhere) {
		t.Errorf("Observe(forever observer) error = %v, want ErrObserverBoundElsewhere", err)
	}
}

func TestValue_RejectsBadObservers(t *testing.T) {
	v := New[int]()
	if err := v.ObserveForever(nil); !errors.Is(err, lifecycle.ErrNilObserver) {
		t.Errorf("ObserveForever(nil) error = %v", err)
	}
}

func TestValue_RemoveObservers(t *testing.T) {
	a, b := lifecycle.NewHost("a"), lifecycle.NewHost("b")
	v := New[int]()
	ca1, ca2, cb := &collector[int]{}, &collector[int]{}, &collector[int]{}
	_ = v.Observe(a, ca1)
	_ = v.Observe(a, ca2)
	_ = v.Observe(b, cb)

	v.RemoveObservers(a)

	if a.Lifecycle().ObserverCount() != 0 {
		t.Errorf("owner a engine still has %d observers", a.Lifecycle().ObserverCount())
	}
	if b.Lifecycle().ObserverCount() != 1 || !v.HasObservers() {
		t.Error("observer of owner b was removed")
	}
}

func TestValue_SetFromObserverRestartsDispatch(t *testing.T) {
	v := NewWith(0)
	first := &collector[int]{}
	second := &collector[int]{}
	_ = v.ObserveForever(first)
	_ = v.ObserveForever(second)

	first.onChange = func(n int) {
		if n < 3 {
			v.Set(n + 1)
		}
	}
	v.Set(1)

	if got := second.got[len(second.got)-1]; got != 3 {
		t.Errorf("second observer last saw %d, want 3", got)
	}
	for _, n := range second.got[1:] {
		if n != 3 {
			t.Errorf("second observer saw stale value %d: %v", n, second.got)
		}
	}
}

func TestValue_ObserveDuringOwnerDispatch(t *testing.T) {
	host := lifecycle.NewHost("screen")
	v := NewWith("hello")
	c := &collector[string]{}

	_, _ = host.Lifecycle().Register(lifecycle.ObserverFunc(func(owner lifecycle.Owner, event lifecycle.Event) error {
		if event == lifecycle.EventStart {
			return v.Observe(owner, c)
		}
		return nil
	}))

	handle(t, host, lifecycle.EventCreate, lifecycle.EventStart)

	if len(c.got) != 1 || c.got[0] != "hello" {
		t.Errorf("got %v, want [hello]", c.got)
	}
}
