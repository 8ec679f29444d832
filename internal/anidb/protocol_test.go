package anidb

import (
	"errors"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	got := encodeRequest("AUTH", []param{{"user", "a"}, {"pass", "x&y\nz"}}, "t7")
	want := "AUTH user=a&pass=x&amp;y<br />z&tag=t7"
	if got != want {
		t.Fatalf("encodeRequest = %q, want %q", got, want)
	}
	if got := encodeRequest("PING", nil, "t1"); got != "PING tag=t1" {
		t.Fatalf("unexpected bare request %q", got)
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name     string
		datagram string
		tag      string
		code     int
		text     string
		lines    int
	}{
		{"tagged with data", "t3 220 FILE\n1|2|3\n", "t3", 220, "FILE", 1},
		{"auth", "t1 200 abc12 LOGIN ACCEPTED", "t1", 200, "abc12 LOGIN ACCEPTED", 0},
		{"untagged", "555 BANNED\nreason", "", 555, "BANNED", 1},
		{"crlf", "t2 320 NO SUCH FILE\r\n", "t2", 320, "NO SUCH FILE", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseReply(tt.datagram)
			if err != nil {
				t.Fatalf("parseReply: %v", err)
			}
			if r.tag != tt.tag || r.code != tt.code || r.text != tt.text || len(r.data) != tt.lines {
				t.Fatalf("unexpected reply %+v", r)
			}
		})
	}

	for _, bad := range []string{"", "hello world", "t1 OK"} {
		if _, err := parseReply(bad); !errors.Is(err, errMalformed) {
			t.Fatalf("parseReply(%q) expected malformed error, got %v", bad, err)
		}
	}
}

func TestDecodeValue(t *testing.T) {
	if got := decodeValue("it`s<br />fine"); got != "it's\nfine" {
		t.Fatalf("decodeValue = %q", got)
	}
}

func TestFieldsListsSplitBeforeDecoding(t *testing.T) {
	f, err := splitFields("a`b'c|1'2|", 3)
	if err != nil {
		t.Fatalf("splitFields: %v", err)
	}
	names := f.strList()
	if len(names) != 2 || names[0] != "a'b" || names[1] != "c" {
		t.Fatalf("unexpected list %q", names)
	}
	ids := f.intList()
	if len(ids) != 2 || ids[1] != 2 {
		t.Fatalf("unexpected ints %v", ids)
	}
	if empty := f.strList(); empty != nil {
		t.Fatalf("expected nil for empty list, got %q", empty)
	}
	if f.err != nil {
		t.Fatalf("unexpected parse error %v", f.err)
	}
}

func TestDecodeRejectsShortAndNonNumericLines(t *testing.T) {
	if _, err := decodeEpisode("1|2|3"); !errors.Is(err, errMalformed) {
		t.Fatalf("expected malformed for short line, got %v", err)
	}
	if _, err := decodeEpisode("x|2|3|4|5|6|7|8|9|10|11"); !errors.Is(err, errMalformed) {
		t.Fatalf("expected malformed for non-numeric id, got %v", err)
	}
}
