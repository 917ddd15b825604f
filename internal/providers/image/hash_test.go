package image

import "testing"

func TestHash(t *testing.T) {
	cases := map[string]int32{
		"":                   0,
		"a":                  97,
		"hello":              99162322,
		"polygenelubricants": -2147483648,
		"😀":                  1772899,
	}
	for in, want := range cases {
		if got := Hash(in); got != want {
			t.Errorf("Hash(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestEncodeURIComponent(t *testing.T) {
	cases := map[string]string{
		"a b":          "a%20b",
		"!'()*~-_.":    "!'()*~-_.",
		"&=/?#+":       "%26%3D%2F%3F%23%2B",
		"café":         "caf%C3%A9",
		"red fox, 4k!": "red%20fox%2C%204k!",
	}
	for in, want := range cases {
		if got := EncodeURIComponent(in); got != want {
			t.Errorf("EncodeURIComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSeedUsesTruncatedVariation(t *testing.T) {
	want := []int64{-1483367844, -1483367815, -1483367782, -1483367749}
	for i, w := range want {
		if got := RenderSeed("a cat", 41+int64(i), i); got != w {
			t.Errorf("RenderSeed(i=%d) = %d, want %d", i, got, w)
		}
	}
	if got := RenderSeed("mountain lake at sunrise", 7, 0); got != 1419753762 {
		t.Errorf("RenderSeed = %d", got)
	}
}
