package anidb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reply codes used by tetsu.
const (
	codeLoginAccepted          = 200
	codeLoginAcceptedNewVer    = 201
	codeLoggedOut              = 203
	codeFile                   = 220
	codeAnime                  = 230
	codeEpisode                = 240
	codeGroup                  = 250
	codeNoSuchFile             = 320
	codeNoSuchAnime            = 330
	codeNoSuchEpisode          = 340
	codeNoSuchGroup            = 350
	codeNotLoggedIn            = 403
	codeLoginFailed            = 500
	codeLoginFirst             = 501
	codeAccessDenied           = 502
	codeClientOutdated         = 503
	codeClientBanned           = 504
	codeIllegalInput           = 505
	codeInvalidSession         = 506
	codeBanned                 = 555
	codeUnknownCommand         = 598
	codeInternalError          = 600
	codeOutOfService           = 601
	codeServerBusy             = 602
	codeTimeout                = 604
	fileMask                   = "71C2FEF800"
	fileAnimeMask              = "00000000"
	animeMask                  = "FCE8BA010080F8"
	protocolVersion            = "3"
	textEncoding               = "UTF-8"
	fieldSeparator             = "|"
	listSeparator              = "'"
	escapedApostrophe          = "`"
	lineBreak                  = "<br />"
	animeFieldCount            = 22
	episodeFieldCount          = 11
	fileFieldCount             = 20
	groupFieldCount            = 17
	maxDatagramSize            = 1400
)

var errMalformed = errors.New("malformed reply")

type param struct {
	key   string
	value string
}

// encodeRequest renders "COMMAND k=v&k=v&tag=t". Values have '&' and line
// breaks escaped the way the server expects.
func encodeRequest(command string, params []param, tag string) string {
	var b strings.Builder
	b.WriteString(command)
	sep := " "
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escapeValue(p.value))
		sep = "&"
	}
	if tag != "" {
		b.WriteString(sep)
		b.WriteString("tag=")
		b.WriteString(tag)
	}
	return b.String()
}

func escapeValue(value string) string {
	value = strings.ReplaceAll(value, "&", "&amp;")
	value = strings.ReplaceAll(value, "\r\n", lineBreak)
	return strings.ReplaceAll(value, "\n", lineBreak)
}

type reply struct {
	tag  string
	code int
	text string
	data []string
}

// parseReply splits a datagram into tag, code, header text, and data lines.
// Server-level errors may arrive without a tag; tag is empty then.
func parseReply(datagram string) (reply, error) {
	datagram = strings.TrimRight(datagram, "\r\n")
	lines := strings.Split(datagram, "\n")
	header := strings.TrimRight(lines[0], "\r")
	fields := strings.SplitN(header, " ", 3)

	var r reply
	if len(fields) > 0 && !isCode(fields[0]) {
		r.tag = fields[0]
		fields = fields[1:]
	}
	if len(fields) == 0 || !isCode(fields[0]) {
		return reply{}, fmt.Errorf("%w: header %q", errMalformed, header)
	}
	r.code, _ = strconv.Atoi(fields[0])
	if len(fields) > 1 {
		r.text = strings.Join(fields[1:], " ")
	}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			r.data = append(r.data, line)
		}
	}
	return r, nil
}

func isCode(token string) bool {
	if len(token) != 3 {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func decodeValue(raw string) string {
	raw = strings.ReplaceAll(raw, escapedApostrophe, "'")
	return strings.ReplaceAll(raw, lineBreak, "\n")
}

// fields holds one decoded data line and tracks the first parse error.
type fields struct {
	raw []string
	pos int
	err error
}

func splitFields(line string, want int) (*fields, error) {
	raw := strings.Split(line, fieldSeparator)
	if len(raw) < want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", errMalformed, want, len(raw))
	}
	return &fields{raw: raw}, nil
}

func (f *fields) next() string {
	value := f.raw[f.pos]
	f.pos++
	return value
}

func (f *fields) str() string {
	return decodeValue(f.next())
}

func (f *fields) int() int64 {
	raw := strings.TrimSpace(f.next())
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%w: field %d: %q is not an integer", errMalformed, f.pos-1, raw)
	}
	return v
}

func (f *fields) bool() bool {
	return f.int() != 0
}

func (f *fields) strList() []string {
	raw := f.next()
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]string, len(parts))
	for i, part := range parts {
		out[i] = decodeValue(part)
	}
	return out
}

func (f *fields) intList() []int64 {
	raw := f.next()
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			if f.err == nil {
				f.err = fmt.Errorf("%w: field %d: %q is not an integer list", errMalformed, f.pos-1, raw)
			}
			return nil
		}
		out = append(out, v)
	}
	return out
}
