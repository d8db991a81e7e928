package cache

import "testing"

func TestScoresKeyIsPerVersion(t *testing.T) {
	if scoresKey(1) == scoresKey(2) {
		t.Fatal("versions share a key")
	}
	if scoresKey(0) == versionKey || scoresKey(7) != "restaurant_map:stats:scores-by-cuisine:7" {
		t.Errorf("scoresKey(7) = %q", scoresKey(7))
	}
}
