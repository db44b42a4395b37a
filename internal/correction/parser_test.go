package correction

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		selected string
		want     Match
		wantOK   bool
	}{
		{
			name:   "not connector",
			text:   "should be Dr Patel not Dr Khan",
			want:   Match{CorrectName: "Dr Patel", IncorrectName: "Dr Khan"},
			wantOK: true,
		},
		{
			name:     "fallback to selected",
			text:     "should be Dr Lee",
			selected: "Dr Wong",
			want:     Match{CorrectName: "Dr Lee", IncorrectName: "Dr Wong"},
			wantOK:   true,
		},
		{
			name:   "instead of connector",
			text:   "Sorry, the name should be Dr. Rao instead of Dr. Roy",
			want:   Match{CorrectName: "Dr. Rao", IncorrectName: "Dr. Roy"},
			wantOK: true,
		},
		{
			name:   "comma connector",
			text:   "should be Dr Ames, Dr Bell",
			want:   Match{CorrectName: "Dr Ames", IncorrectName: "Dr Bell"},
			wantOK: true,
		},
		{
			name:   "comma then not",
			text:   "should be Dr. Smith, not Dr Jones",
			want:   Match{CorrectName: "Dr. Smith", IncorrectName: "Dr Jones"},
			wantOK: true,
		},
		{
			name:   "comma then instead of",
			text:   "should be Dr. Smith, instead of Dr. Jones",
			want:   Match{CorrectName: "Dr. Smith", IncorrectName: "Dr. Jones"},
			wantOK: true,
		},
		{
			name:     "dangling connector falls back to selected",
			text:     "should be Dr. Smith, not",
			selected: "Dr Sel",
			want:     Match{CorrectName: "Dr. Smith", IncorrectName: "Dr Sel"},
			wantOK:   true,
		},
		{
			// The honorific is optional, so ordinary prose with the trigger
			// phrase still parses.
			name:   "plain prose matches",
			text:   "It should be fine, discussed pricing",
			want:   Match{CorrectName: "fine", IncorrectName: "discussed"},
			wantOK: true,
		},
		{
			name:   "case insensitive",
			text:   "SHOULD BE dr smith NOT dr jones",
			want:   Match{CorrectName: "dr smith", IncorrectName: "dr jones"},
			wantOK: true,
		},
		{
			name:   "no honorific",
			text:   "should be Patel not Khan",
			want:   Match{CorrectName: "Patel", IncorrectName: "Khan"},
			wantOK: true,
		},
		{
			name:   "no selection leaves incorrect empty",
			text:   "should be Dr Lee",
			want:   Match{CorrectName: "Dr Lee"},
			wantOK: true,
		},
		{
			name: "no match",
			text: "met with client, discussed pricing",
		},
		{
			name: "empty",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text, tt.selected)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatch_Record(t *testing.T) {
	m := Match{CorrectName: "Dr Patel", IncorrectName: "Dr Khan"}
	if got, want := m.Record(), "CORRECTION: Change Dr Khan to Dr Patel"; got != want {
		t.Errorf("Record() = %q, want %q", got, want)
	}
	if !m.Complete() {
		t.Error("Complete() = false, want true")
	}
	if (Match{CorrectName: "Dr Patel"}).Complete() {
		t.Error("Complete() with empty incorrect name = true")
	}
}

func TestParseRecord(t *testing.T) {
	m := Match{CorrectName: "Dr. Patel", IncorrectName: "Dr Khan"}
	got, ok := ParseRecord(m.Record())
	if !ok || got != m {
		t.Errorf("ParseRecord(Record()) = %+v, %v; want %+v", got, ok, m)
	}

	if _, ok := ParseRecord("met Dr Khan, change of plans to next week"); ok {
		t.Error("ParseRecord matched ordinary chat text")
	}
	if _, ok := ParseRecord("CORRECTION: Change  to Dr Lee"); ok {
		t.Error("ParseRecord matched a record without an incorrect name")
	}
}
