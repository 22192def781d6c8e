package identity

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Anna@Example.CH", "anna@example.ch"},
		{"trim whitespace", "  anna@example.ch  ", "anna@example.ch"},
		{"gmail plus tag", "anna+hochzeit@gmail.com", "anna@gmail.com"},
		{"gmail dots", "a.n.n.a@gmail.com", "anna@gmail.com"},
		{"googlemail folded", "A.nna+x@GoogleMail.com", "anna@gmail.com"},
		{"other providers keep tags", "anna+tag@bluewin.ch", "anna+tag@bluewin.ch"},
		{"other providers keep dots", "anna.muster@bluewin.ch", "anna.muster@bluewin.ch"},
		{"no at sign", "Anna", "anna"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGuestKey(t *testing.T) {
	a := GuestKey("Anna.Muster+rsvp@gmail.com")
	b := GuestKey("annamuster@googlemail.com")
	if a != b {
		t.Errorf("equivalent addresses hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("GuestKey length = %d, want 64", len(a))
	}
	if GuestKey("anna@example.ch") == GuestKey("berta@example.ch") {
		t.Error("distinct addresses share a key")
	}
}
