package cleanup

import (
	"testing"

	"github.com/dkarlsen/scythe/internal/semantic"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{DeclaringType: "Order", Name: "total", Params: nil}, "Order#total()"},
		{Key{DeclaringType: "Order", Name: "add", Params: []string{"Item"}}, "Order#add(Item)"},
		{Key{DeclaringType: "Map", Name: "put", Params: []string{"K", "V"}}, "Map#put(K,V)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeyHashStable(t *testing.T) {
	k := Key{DeclaringType: "Order", Name: "add", Params: []string{"Item"}}
	same := KeyOf(semantic.Binding{DeclaringType: "Order", Name: "add", Params: []string{"Item"}})
	if k.Hash() != same.Hash() {
		t.Error("identical keys must hash identically")
	}
	other := Key{DeclaringType: "Order", Name: "add", Params: []string{"Line"}}
	if k.Hash() == other.Hash() {
		t.Error("different params should hash differently")
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern(Key{DeclaringType: "A", Name: "m"})
	b := in.Intern(Key{DeclaringType: "B", Name: "m"})
	if a == b {
		t.Error("distinct keys must get distinct ids")
	}
	if again := in.Intern(Key{DeclaringType: "A", Name: "m"}); again != a {
		t.Errorf("re-interning returned %d, want %d", again, a)
	}
	if in.Len() != 2 {
		t.Errorf("Len() = %d, want 2", in.Len())
	}
	if id, ok := in.Lookup(Key{DeclaringType: "B", Name: "m"}); !ok || id != b {
		t.Errorf("Lookup() = (%d, %v), want (%d, true)", id, ok, b)
	}
	if _, ok := in.Lookup(Key{DeclaringType: "C", Name: "m"}); ok {
		t.Error("Lookup of unseen key should miss")
	}
}
