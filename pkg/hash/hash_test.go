package hash

import (
	"strings"
	"testing"
)

func TestCalculate_KnownDigests(t *testing.T) {
	cases := []struct {
		algorithm Algorithm
		input     string
		want      string
	}{
		{MD5, "hello", "5d41402abc4b2a76b9719d911017c592"},
		{SHA1, "hello", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{SHA256, "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{SHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}

	for _, tc := range cases {
		d := NewDigester(tc.algorithm)
		got, err := d.Calculate([]byte(tc.input))
		if err != nil {
			t.Fatalf("%s(%q): %v", tc.algorithm, tc.input, err)
		}
		if got != tc.want {
			t.Errorf("%s(%q) = %s, want %s", tc.algorithm, tc.input, got, tc.want)
		}
	}
}

func TestCalculateReader_MatchesCalculate(t *testing.T) {
	d := NewDigester(SHA256)

	data := "assignment submission content"
	fromBytes, err := d.Calculate([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	fromReader, err := d.CalculateReader(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if fromBytes != fromReader {
		t.Fatalf("Calculate = %s, CalculateReader = %s", fromBytes, fromReader)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	d := NewDigester("crc32")

	if _, err := d.Calculate([]byte("x")); err == nil {
		t.Fatal("expected an error for an unsupported algorithm")
	}
}

func TestAlgorithm(t *testing.T) {
	if got := NewDigester(SHA512).Algorithm(); got != SHA512 {
		t.Fatalf("Algorithm() = %s, want sha512", got)
	}
}
