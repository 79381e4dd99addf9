package format_test

import (
	"math/rand"
	"strings"
	"testing"

	"vic/internal/format"
	"vic/internal/testkit"
)

var corpus = []string{
	"",
	"   ",
	"stop",
	"start:",
	"  start:   // entry point  ",
	"    add  zero  // comment ",
	"//comment",
	"// comment",
	"\t\tload\tone\t//\tx\t",
	"x y:",
	"loop: add",
	"a/ // b",
	"a///c",
	"load http://x",
	"read //",
	"add zero",
	"ünïcödé  wörds // ✓",
}

var optionSet = []format.Options{
	{TabSize: 4, InsertSpaces: true},
	{TabSize: 2, InsertSpaces: true},
	{TabSize: 1, InsertSpaces: true},
	{TabSize: 4, InsertSpaces: false},
}

func TestLineInvariantsCorpus(t *testing.T) {
	for _, opt := range optionSet {
		for _, line := range corpus {
			if err := testkit.CheckLineInvariants(line, opt); err != nil {
				t.Errorf("opt %+v: %v", opt, err)
			}
		}
	}
}

func TestLineInvariantsRandom(t *testing.T) {
	pieces := []string{"add", "zero", "start:", "x", ":", "/", "//", " ", "  ", "\t", "1", "-", "é"}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		var sb strings.Builder
		for n := rng.Intn(8); n >= 0; n-- {
			sb.WriteString(pieces[rng.Intn(len(pieces))])
		}
		line := sb.String()
		opt := optionSet[rng.Intn(len(optionSet))]
		if err := testkit.CheckLineInvariants(line, opt); err != nil {
			t.Fatalf("opt %+v: %v", opt, err)
		}
	}
}

func TestLabelNeverIndented(t *testing.T) {
	for _, opt := range optionSet {
		for _, label := range []string{"start:", "x:", "loop1:", "é:"} {
			if got := format.FormatLine(label, opt); got != label {
				t.Errorf("FormatLine(%q, %+v) = %q", label, opt, got)
			}
		}
	}
}
