package config

import (
	"strings"
	"testing"
)

func TestDefaultSettingsValid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"lufs too low", func(s *Settings) { s.TargetI = -40 }, "-36 and -8"},
		{"lufs too high", func(s *Settings) { s.TargetI = -5 }, "-36 and -8"},
		{"negative lra", func(s *Settings) { s.TargetLRA = -1 }, "loudness range"},
		{"bad bit depth", func(s *Settings) { s.BitDepth = 20 }, "bit depth"},
		{"bad sample rate", func(s *Settings) { s.SampleRate = 12345 }, "sample rate"},
		{"zero channels", func(s *Settings) { s.Channels = 0 }, "channels"},
		{"too many channels", func(s *Settings) { s.Channels = 9 }, "channels"},
		{"zero workers", func(s *Settings) { s.Workers = 0 }, "workers"},
		{"negative fade", func(s *Settings) { s.FadeIn = -0.5 }, "fade"},
		{"empty template", func(s *Settings) { s.FilenameTemplate = "" }, "template"},
		{"bad format", func(s *Settings) { s.Format = "mp5" }, "invalid format"},
		{"bad mode", func(s *Settings) { s.Normalize = "three-pass" }, "normalization mode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestTPIsAdvisoryNotEnforced(t *testing.T) {
	s := DefaultSettings()
	s.TargetTP = -0.1
	if err := s.Validate(); err != nil {
		t.Fatalf("true-peak above -1.0 must validate (advisory only): %v", err)
	}
	if !s.TPAboveRecommended() {
		t.Error("TPAboveRecommended should flag -0.1 dBTP")
	}

	s.TargetTP = -1.5
	if s.TPAboveRecommended() {
		t.Error("TPAboveRecommended should not flag -1.5 dBTP")
	}
}

func TestFormatExtension(t *testing.T) {
	cases := []struct {
		format Format
		want   string
	}{
		{FormatWAV, "wav"},
		{FormatFLAC, "flac"},
		{FormatMP3, "mp3"},
		{FormatAAC, "m4a"},
		{FormatM4A, "m4a"},
		{FormatOGG, "ogg"},
		{FormatOpus, "opus"},
	}
	for _, tc := range cases {
		if got := tc.format.Extension(); got != tc.want {
			t.Errorf("%s.Extension() = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("  MP3 "); err != nil || f != FormatMP3 {
		t.Errorf("ParseFormat(\" MP3 \") = %v, %v", f, err)
	}
	if _, err := ParseFormat("wma"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestMetadataTagsOrderAndOmission(t *testing.T) {
	m := MetadataTemplate{Title: "{stem}", Artist: "Someone", Genre: "Ambient"}
	tags := m.Tags()
	want := [][2]string{{"artist", "Someone"}, {"title", "{stem}"}, {"genre", "Ambient"}}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d", len(tags), len(want))
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %v, want %v", i, tags[i], want[i])
		}
	}
}

func TestMetadataSetRejectsUnknownTag(t *testing.T) {
	var m MetadataTemplate
	if err := m.Set("artist", "A"); err != nil {
		t.Fatalf("Set(artist): %v", err)
	}
	if err := m.Set("composer", "B"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestSnapshotSemantics(t *testing.T) {
	s := DefaultSettings()
	snap := s
	s.TargetI = -23
	s.Metadata.Artist = "changed"
	if snap.TargetI != -16.0 || snap.Metadata.Artist != "" {
		t.Error("settings copy must be unaffected by later edits")
	}
}
