package processor

import (
	"encoding/xml"
	"html"
	"regexp"
	"strings"
)

var (
	bookmarkStartRe = regexp.MustCompile(`<w:bookmarkStart\b[^>]*>`)
	bookmarkEndRe   = regexp.MustCompile(`<w:bookmarkEnd\b[^>]*>`)
	attributeRe     = regexp.MustCompile(`([\w:]+)\s*=\s*"([^"]*)"`)
	runPropsRe      = regexp.MustCompile(`(?s)<w:rPr/>|<w:rPr>.*?</w:rPr>|<w:rPr\s[^>]*>.*?</w:rPr>`)
)

// bookmark locates one bookmarkStart/bookmarkEnd pair inside document.xml.
// startTag and endTag are [begin, end) byte offsets of the two tags.
type bookmark struct {
	id       string
	name     string
	startTag [2]int
	endTag   [2]int
}

func parseAttributes(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attributeRe.FindAllStringSubmatch(tag, -1) {
		attrs[m[1]] = html.UnescapeString(m[2])
	}
	return attrs
}

// scanBookmarks returns every bookmark in document order. Starts without a
// matching end are skipped.
func scanBookmarks(content string) []bookmark {
	var out []bookmark
	for _, loc := range bookmarkStartRe.FindAllStringIndex(content, -1) {
		attrs := parseAttributes(content[loc[0]:loc[1]])
		name, id := attrs["w:name"], attrs["w:id"]
		if name == "" {
			continue
		}
		end, ok := findBookmarkEnd(content, id, loc[1])
		if !ok {
			continue
		}
		out = append(out, bookmark{id: id, name: name, startTag: [2]int{loc[0], loc[1]}, endTag: end})
	}
	return out
}

func findBookmarkEnd(content, id string, from int) ([2]int, bool) {
	for _, loc := range bookmarkEndRe.FindAllStringIndex(content[from:], -1) {
		if parseAttributes(content[from+loc[0] : from+loc[1]])["w:id"] == id {
			return [2]int{from + loc[0], from + loc[1]}, true
		}
	}
	return [2]int{}, false
}

func findBookmark(content, name string) (bookmark, bool) {
	for _, bm := range scanBookmarks(content) {
		if bm.name == name {
			return bm, true
		}
	}
	return bookmark{}, false
}

// anchorNames drops the trailing sentinel bookmark and de-duplicates the rest,
// keeping the first occurrence of each name.
func anchorNames(bookmarks []bookmark) []string {
	if len(bookmarks) == 0 {
		return []string{}
	}
	bookmarks = bookmarks[:len(bookmarks)-1]

	names := make([]string, 0, len(bookmarks))
	seen := make(map[string]bool, len(bookmarks))
	for _, bm := range bookmarks {
		if seen[bm.name] {
			continue
		}
		seen[bm.name] = true
		names = append(names, bm.name)
	}
	return names
}

// replaceBookmarkContent removes every run enclosed by bm and inserts a single
// run carrying value. The new run reuses the run properties of the first
// enclosed run, or of the nearest preceding run in the same paragraph when the
// bookmark encloses nothing.
func replaceBookmarkContent(content string, bm bookmark, value string) string {
	spanStart, spanEnd := bm.startTag[1], bm.endTag[0]
	span := content[spanStart:spanEnd]
	runs := findRuns(span)

	var rPr string
	if len(runs) > 0 {
		rPr = runProperties(span[runs[0][0]:runs[0][1]])
	} else {
		rPr = precedingRunProperties(content, bm.startTag[0])
	}
	newRun := buildRun(rPr, value)

	var b strings.Builder
	switch {
	case len(runs) > 0:
		last := 0
		for i, r := range runs {
			b.WriteString(span[last:r[0]])
			if i == 0 {
				b.WriteString(newRun)
			}
			last = r[1]
		}
		b.WriteString(span[last:])
	case insideParagraph(content, bm.startTag[0]):
		b.WriteString(newRun)
		b.WriteString(span)
	default:
		b.WriteString("<w:p>")
		b.WriteString(newRun)
		b.WriteString("</w:p>")
		b.WriteString(span)
	}

	return content[:spanStart] + b.String() + content[spanEnd:]
}

func isRunOpen(s string) bool {
	return len(s) > 4 && s[:4] == "<w:r" && (s[4] == '>' || s[4] == ' ' || s[4] == '/')
}

// findRuns returns the [begin, end) offsets of the outermost w:r elements in s.
func findRuns(s string) [][2]int {
	var runs [][2]int
	depth, start := 0, -1
	for i := 0; i < len(s); {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			break
		}
		i += j
		switch {
		case isRunOpen(s[i:]):
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return runs
			}
			if depth == 0 {
				start = i
			}
			if s[i+end-1] == '/' {
				if depth == 0 {
					runs = append(runs, [2]int{start, i + end + 1})
				}
			} else {
				depth++
			}
			i += end + 1
		case strings.HasPrefix(s[i:], "</w:r>"):
			if depth > 0 {
				depth--
				if depth == 0 {
					runs = append(runs, [2]int{start, i + len("</w:r>")})
				}
			}
			i += len("</w:r>")
		default:
			i++
		}
	}
	return runs
}

func runProperties(run string) string {
	return runPropsRe.FindString(run)
}

func lastParagraphOpen(s string) int {
	a := strings.LastIndex(s, "<w:p>")
	b := strings.LastIndex(s, "<w:p ")
	if a > b {
		return a
	}
	return b
}

func insideParagraph(content string, pos int) bool {
	return lastParagraphOpen(content[:pos]) > strings.LastIndex(content[:pos], "</w:p>")
}

func precedingRunProperties(content string, pos int) string {
	if !insideParagraph(content, pos) {
		return ""
	}
	paragraph := content[lastParagraphOpen(content[:pos]):pos]
	runs := findRuns(paragraph)
	if len(runs) == 0 {
		return ""
	}
	last := runs[len(runs)-1]
	return runProperties(paragraph[last[0]:last[1]])
}

func buildRun(rPr, value string) string {
	var b strings.Builder
	b.WriteString("<w:r>")
	b.WriteString(rPr)
	value = strings.ReplaceAll(value, "\r\n", "\n")
	for i, line := range strings.Split(value, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		for j, part := range strings.Split(line, "\t") {
			if j > 0 {
				b.WriteString("<w:tab/>")
			}
			if part == "" {
				continue
			}
			b.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(&b, []byte(part))
			b.WriteString("</w:t>")
		}
	}
	b.WriteString("</w:r>")
	return b.String()
}
