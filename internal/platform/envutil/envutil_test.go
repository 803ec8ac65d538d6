package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("RISK_TEST_INT", "abc")
	if got := Int("RISK_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("RISK_TEST_INT", " 12 ")
	if got := Int("RISK_TEST_INT", 7); got != 12 {
		t.Fatalf("Int: want=12 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes"} {
		t.Setenv("RISK_TEST_BOOL", v)
		if !Bool("RISK_TEST_BOOL", false) {
			t.Fatalf("Bool(%q): want=true", v)
		}
	}
	t.Setenv("RISK_TEST_BOOL", "off")
	if Bool("RISK_TEST_BOOL", true) {
		t.Fatalf("Bool(off): want=false")
	}
}

func TestSecondsClampsNegative(t *testing.T) {
	t.Setenv("RISK_TEST_SECONDS", "-5")
	if got := Seconds("RISK_TEST_SECONDS", 3); got != 0 {
		t.Fatalf("Seconds: want=0 got=%s", got)
	}
	t.Setenv("RISK_TEST_SECONDS", "")
	if got := Seconds("RISK_TEST_SECONDS", 3); got != 3*time.Second {
		t.Fatalf("Seconds: want=3s got=%s", got)
	}
}
