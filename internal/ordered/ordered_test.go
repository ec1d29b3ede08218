package ordered

import (
	"fmt"
	"testing"
)

func TestRange(t *testing.T) {
	m := map[string]int{"GMLPolygon": 3, "GMLLineString": 1, "GMLMultiPolygon": 2}
	var got []string
	Range(m, func(k string, v int) {
		got = append(got, fmt.Sprintf("%s=%d", k, v))
	})
	want := "[GMLLineString=1 GMLMultiPolygon=2 GMLPolygon=3]"
	if fmt.Sprint(got) != want {
		t.Errorf("got %v, want %s", got, want)
	}
	if len(Keys(map[int]bool{})) != 0 {
		t.Error("keys of empty map")
	}
}
