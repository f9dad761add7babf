package whatsapp

import "testing"

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("+14155552671")
	if err != nil {
		t.Fatalf("valid number rejected: %v", err)
	}
	if got != "+14155552671" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizePhoneStripsChannelPrefix(t *testing.T) {
	got, err := NormalizePhone("whatsapp:+14155552671")
	if err != nil {
		t.Fatalf("prefixed number rejected: %v", err)
	}
	if got != "+14155552671" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizePhoneRejectsInvalid(t *testing.T) {
	for _, num := range []string{"", "14155552671", "+1", "+999999999999999"} {
		if _, err := NormalizePhone(num); err == nil {
			t.Errorf("NormalizePhone(%q): expected error", num)
		}
	}
}
