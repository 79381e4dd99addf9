package format

import (
	"slices"
	"testing"
)

var (
	spaces4 = Options{TabSize: 4, InsertSpaces: true}
	spaces2 = Options{TabSize: 2, InsertSpaces: true}
	tabs    = Options{TabSize: 4, InsertSpaces: false}
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opt   Options
		want  string
	}{
		{"empty", "", spaces4, ""},
		{"whitespace only", " \t  ", spaces4, ""},
		{"instruction spaces", "stop", spaces4, "    stop"},
		{"instruction tab", "stop", tabs, "\tstop"},
		{"instruction two spaces", "  stop  ", spaces2, "  stop"},
		{"tab ignores tab size", "stop", Options{TabSize: 8}, "\tstop"},
		{"label", "start:", spaces4, "start:"},
		{"indented label", "    start:", spaces4, "start:"},
		{"label with tabs option", "\tloop:", tabs, "loop:"},
		{"label keyed on last word", "x y:", spaces4, "x y:"},
		{"word before label is instruction", "loop: add", spaces4, "    loop: add"},
		{"collapse inner spaces", "add  zero", spaces4, "    add zero"},
		{"collapse tabs", "add\t\tzero", spaces4, "    add zero"},
		{"comment spacing", "add  zero  // c", spaces4, "    add zero // c"},
		{"comment no space before marker", "add zero// c", spaces4, "    add zero // c"},
		{"comment only", "//comment", spaces4, "//comment"},
		{"comment only keeps leading space", "// comment", spaces4, "// comment"},
		{"comment only strips indentation", "      // comment", spaces4, "// comment"},
		{"comment trailing whitespace", "// comment \t ", spaces4, "// comment"},
		{"empty comment", "read //", spaces4, "    read //"},
		{"bare marker", "//", spaces4, "//"},
		{"label with comment", "start:  // hi", spaces4, "start: // hi"},
		{"label with tight comment", "start://hi", spaces4, "start: //hi"},
		{"first marker wins", "add one // a // b", spaces4, "    add one // a // b"},
		{"marker inside word", "load http://x", spaces4, "load http: //x"},
		{"end to end", "    add  zero  // comment ", spaces4, "    add zero // comment"},
		{"non-ascii whitespace", "add\u00a0zero\u2003", spaces4, "    add zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLine(tt.input, tt.opt)
			if got != tt.want {
				t.Errorf("FormatLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBinLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  100  ", "100"},
		{" \t ", ""},
		{"", ""},
		{"399", "399"},
		{"\t901\r", "901"},
		{" 1  2 ", "1  2"},
		{" 5 // not a comment ", "5 // not a comment"},
	}
	for _, tt := range tests {
		if got := FormatBinLine(tt.input); got != tt.want {
			t.Errorf("FormatBinLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitComment(t *testing.T) {
	tests := []struct {
		line       string
		wantPrefix string
		want       Comment
	}{
		{"add zero", "add zero", Comment{}},
		{"add // x ", "add ", Comment{Text: " x", Present: true}},
		{"//", "", Comment{Text: "", Present: true}},
		{"a //b//c", "a ", Comment{Text: "b//c", Present: true}},
		{"a / / b", "a / / b", Comment{}},
	}
	for _, tt := range tests {
		prefix, c := SplitComment(tt.line)
		if prefix != tt.wantPrefix || c != tt.want {
			t.Errorf("SplitComment(%q) = (%q, %+v), want (%q, %+v)", tt.line, prefix, c, tt.wantPrefix, tt.want)
		}
	}
}

func TestCommentPresenceIsExplicit(t *testing.T) {
	absent := ParseLine("stop").Comment
	empty := ParseLine("stop //").Comment
	if absent == empty {
		t.Fatal("absent and empty comments must differ")
	}
	if absent.String() != "" || empty.String() != "//" {
		t.Errorf("String() = %q / %q", absent.String(), empty.String())
	}
}

func TestWords(t *testing.T) {
	runs := []string{" ", "  ", "\t", " \t ", "\n"}
	want := []string{"load", "one", "two"}
	for _, sep := range runs {
		line := sep + "load" + sep + sep + "one" + sep + "two" + sep
		if got := Words(line); !slices.Equal(got, want) {
			t.Errorf("Words(%q) = %q, want %q", line, got, want)
		}
	}
	if got := Words(" \t "); len(got) != 0 {
		t.Errorf("Words(blank) = %q, want none", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"", KindBlank},
		{"   ", KindBlank},
		{"// note", KindComment},
		{"start:", KindLabel},
		{"start: // note", KindLabel},
		{"stop", KindInstruction},
		{"stop // note", KindInstruction},
		{": x", KindInstruction},
	}
	for _, tt := range tests {
		if got := Classify(ParseLine(tt.line)); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		opt  Options
		want string
	}{
		{Options{TabSize: 4, InsertSpaces: true}, "    "},
		{Options{TabSize: 1, InsertSpaces: true}, " "},
		{Options{TabSize: 4, InsertSpaces: false}, "\t"},
		{Options{TabSize: 0, InsertSpaces: false}, "\t"},
	}
	for _, tt := range tests {
		if got := Indent(tt.opt); got != tt.want {
			t.Errorf("Indent(%+v) = %q, want %q", tt.opt, got, tt.want)
		}
	}
}

func TestInstructionIndentMatchesIndent(t *testing.T) {
	for _, opt := range []Options{
		{TabSize: 2, InsertSpaces: true},
		{TabSize: 8, InsertSpaces: true},
		{TabSize: 4, InsertSpaces: false},
		{TabSize: 0, InsertSpaces: false},
	} {
		want := Indent(opt) + "load x"
		if got := FormatLine("  load   x ", opt); got != want {
			t.Errorf("FormatLine with %+v = %q, want %q", opt, got, want)
		}
	}
}

func TestIndentPanicsOnInvalidTabSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for TabSize 0 with InsertSpaces")
		}
	}()
	Indent(Options{TabSize: 0, InsertSpaces: true})
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	for _, size := range []int{0, -1} {
		if err := (Options{TabSize: size, InsertSpaces: true}).Validate(); err == nil {
			t.Errorf("Validate accepted TabSize %d", size)
		}
	}
}

func TestLabelAndCommentLinesIgnoreInvalidTabSize(t *testing.T) {
	bad := Options{TabSize: 0, InsertSpaces: true}
	for _, line := range []string{"start:", "// note", "", "  "} {
		want := FormatLine(line, spaces4)
		if got := FormatLine(line, bad); got != want {
			t.Errorf("FormatLine(%q) = %q, want %q", line, got, want)
		}
	}
}

func BenchmarkFormatLine(b *testing.B) {
	line := "    add  zero  // comment "
	for i := 0; i < b.N; i++ {
		_ = FormatLine(line, spaces4)
	}
}

func BenchmarkFormatBinLine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = FormatBinLine("   100   ")
	}
}
