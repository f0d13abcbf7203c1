package diff

import (
	"strconv"
	"strings"
)

type parseState int

const (
	stateIdle parseState = iota
	stateInFile
	stateInHunk
)

type parser struct {
	out    Diff
	state  parseState
	file   *FileDiff
	hunk   *Hunk
	oldNum int
	newNum int
	// Lines the hunk header still promises on each side. counted is false
	// when the header had no usable lengths.
	oldLeft int
	newLeft int
	counted bool
}

// Parse reads unified-diff text. It never fails: input it cannot make sense of
// is skipped, so truncated or foreign text yields whatever was recognised
// before it.
func Parse(text string) Diff {
	p := &parser{}
	for _, line := range splitLines(text) {
		p.feed(line)
	}
	p.closeFile()
	return p.out
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func (p *parser) feed(line string) {
	if strings.HasPrefix(line, gitHeaderPrefix) {
		p.closeFile()
		path := headerPath(line)
		if path == "" {
			return
		}
		p.file = &FileDiff{Path: path}
		p.state = stateInFile
		return
	}
	if p.state == stateIdle {
		return
	}
	if strings.HasPrefix(line, "@@") {
		p.closeHunk()
		h := parseHunkHeader(line)
		p.hunk = &Hunk{OldStart: h.oldStart, NewStart: h.newStart}
		p.oldNum, p.newNum = h.oldStart, h.newStart
		p.oldLeft, p.newLeft, p.counted = h.oldLen, h.newLen, h.ok
		p.state = stateInHunk
		return
	}
	if p.state != stateInHunk {
		return
	}
	switch {
	case line == "" || line[0] == ' ':
		content := ""
		if line != "" {
			content = line[1:]
		}
		p.hunk.Lines = append(p.hunk.Lines, Line{
			Kind:       Context,
			Content:    content,
			OldLineNum: intPtr(p.oldNum),
			NewLineNum: intPtr(p.newNum),
		})
		p.oldNum++
		p.newNum++
		p.oldLeft--
		p.newLeft--
	case line[0] == '+':
		if strings.HasPrefix(line, "+++") && p.hunkDone() {
			return
		}
		p.hunk.Lines = append(p.hunk.Lines, Line{Kind: Added, Content: line[1:], NewLineNum: intPtr(p.newNum)})
		p.newNum++
		p.newLeft--
	case line[0] == '-':
		if strings.HasPrefix(line, "---") && p.hunkDone() {
			return
		}
		p.hunk.Lines = append(p.hunk.Lines, Line{Kind: Removed, Content: line[1:], OldLineNum: intPtr(p.oldNum)})
		p.oldNum++
		p.oldLeft--
	}
}

// hunkDone reports whether a "---"/"+++" line can only be a file marker:
// the header's line counts are used up, or were never known.
func (p *parser) hunkDone() bool {
	return !p.counted || (p.oldLeft <= 0 && p.newLeft <= 0)
}

func (p *parser) closeHunk() {
	if p.hunk != nil && p.file != nil {
		p.file.Hunks = append(p.file.Hunks, *p.hunk)
	}
	p.hunk = nil
	if p.file != nil {
		p.state = stateInFile
	}
}

func (p *parser) closeFile() {
	p.closeHunk()
	if p.file != nil {
		p.out.Files = append(p.out.Files, *p.file)
	}
	p.file = nil
	p.state = stateIdle
}

type hunkHeader struct {
	oldStart, oldLen int
	newStart, newLen int
	ok               bool
}

// parseHunkHeader reads "@@ -a[,b] +c[,d] @@". An omitted length means one
// line. Malformed fields come back as zero and clear ok.
func parseHunkHeader(line string) hunkHeader {
	body := strings.TrimPrefix(line, "@@")
	if end := strings.Index(body, "@@"); end >= 0 {
		body = body[:end]
	}
	var h hunkHeader
	var seenOld, seenNew bool
	for _, field := range strings.Fields(body) {
		if len(field) < 2 {
			continue
		}
		start, length, ok := parseRange(field[1:])
		switch field[0] {
		case '-':
			h.oldStart, h.oldLen, seenOld = start, length, ok
		case '+':
			h.newStart, h.newLen, seenNew = start, length, ok
		}
	}
	h.ok = seenOld && seenNew
	return h
}

func parseRange(s string) (start, length int, ok bool) {
	startText, lengthText, hasLength := strings.Cut(s, ",")
	start, err := strconv.Atoi(startText)
	if err != nil {
		return 0, 0, false
	}
	if !hasLength {
		return start, 1, true
	}
	length, err = strconv.Atoi(lengthText)
	if err != nil {
		return start, 0, false
	}
	return start, length, true
}

func intPtr(v int) *int {
	return &v
}
