package subunit

import (
	"strconv"
	"strings"
)

type detailsPhase int

const (
	phaseContentType detailsPhase = iota
	phaseName
	phaseLength
	phaseChunk
)

// detailsDecoder decodes a multipart outcome body fed one line at a time.
// A chunk may end mid-line; the rest of that line is decoded as the next
// length field.
type detailsDecoder struct {
	phase     detailsPhase
	details   Details
	ct        ContentType
	name      string
	chunks    [][]byte
	chunk     []byte
	remaining int

	// raw keeps every line received so a malformed body can still be
	// delivered as a plain message.
	raw    strings.Builder
	failed bool
}

func newDetailsDecoder() *detailsDecoder {
	return &detailsDecoder{details: Details{}}
}

// feed consumes one line and reports whether the closing "]" was seen.
func (d *detailsDecoder) feed(line string) bool {
	d.raw.WriteString(line)
	return d.consume(line)
}

func (d *detailsDecoder) consume(line string) bool {
	if d.failed {
		return line == "]\n"
	}
	switch d.phase {
	case phaseContentType:
		if line == "]\n" {
			return true
		}
		ct, ok := parseContentType(strings.TrimSuffix(line, "\n"))
		if !ok {
			d.failed = true
			return false
		}
		d.ct = ct
		d.phase = phaseName
	case phaseName:
		if line == "]\n" {
			d.failed = true
			return true
		}
		d.name = strings.TrimSuffix(line, "\n")
		d.phase = phaseLength
	case phaseLength:
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 0 {
			// A "]" where a length belongs ends a truncated part.
			d.failed = true
			return line == "]\n"
		}
		if n == 0 {
			d.details[d.name] = Content{Type: d.ct, Chunks: d.chunks}
			d.ct, d.name, d.chunks = ContentType{}, "", nil
			d.phase = phaseContentType
			return false
		}
		d.remaining = n
		d.chunk = make([]byte, 0, n)
		d.phase = phaseChunk
	case phaseChunk:
		take := min(d.remaining, len(line))
		d.chunk = append(d.chunk, line[:take]...)
		d.remaining -= take
		if d.remaining > 0 {
			return false
		}
		d.chunks = append(d.chunks, d.chunk)
		d.chunk = nil
		d.phase = phaseLength
		if rest := line[take:]; rest != "" {
			return d.consume(rest)
		}
	}
	return false
}

// parseContentType parses "Content-Type: type/subtype[;k=v,...]".
func parseContentType(s string) (ContentType, bool) {
	const prefix = "Content-Type: "
	if !strings.HasPrefix(s, prefix) {
		return ContentType{}, false
	}
	s = strings.TrimPrefix(s, prefix)
	mime, params, hasParams := strings.Cut(s, ";")
	typ, sub, ok := strings.Cut(mime, "/")
	if !ok || typ == "" || sub == "" {
		return ContentType{}, false
	}
	ct := ContentType{Type: typ, Subtype: sub}
	if hasParams && params != "" {
		ct.Parameters = make(map[string]string)
		for _, kv := range strings.Split(params, ",") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return ContentType{}, false
			}
			ct.Parameters[k] = v
		}
	}
	return ct, true
}
