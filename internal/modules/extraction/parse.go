package extraction

import (
	"regexp"
	"strings"
)

// Data is what a certificate or reference document yields for the record.
type Data struct {
	Normes             string  `json:"normes,omitempty"`
	NormesCertificat   string  `json:"normesCertificat,omitempty"`
	DocumentsReference string  `json:"documentsReference,omitempty"`
	Confidence         float64 `json:"confidence,omitempty"`
	RawText            string  `json:"rawText,omitempty"`
}

var (
	standardRe = regexp.MustCompile(`(?i)\b((?:NF\s+)?(?:EN\s+ISO|EN|ISO)\s?\d{3,5}(?:-\d+)?(?::\s?\d{4})?)\b`)
	spaceRe    = regexp.MustCompile(`\s+`)
	// referenceRe matches lines naming a manual, notice or reference document.
	referenceRe = regexp.MustCompile(`(?i)\b(notice|r[ée]f[ée]rence|manuel|fiche\s+technique|documentation|instructions?\s+d'utilisation|user\s+manual)\b`)
)

// Standards lists the EN/ISO standard codes found in text, normalised and in
// first-seen order.
func Standards(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range standardRe.FindAllStringSubmatch(text, -1) {
		code := strings.ToUpper(spaceRe.ReplaceAllString(strings.TrimSpace(m[1]), " "))
		code = strings.ReplaceAll(code, ": ", ":")
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

// ReferenceLines keeps the lines of text that name reference documents.
func ReferenceLines(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if line == "" || !referenceRe.MatchString(line) || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// Parse builds the extracted fields for an upload kind. Certificates feed the
// standards slots; reference uploads feed the reference documents text.
func Parse(text string, reference bool) Data {
	d := Data{RawText: strings.TrimSpace(text)}
	if reference {
		d.DocumentsReference = strings.Join(ReferenceLines(text), "\n")
		if d.DocumentsReference == "" {
			d.DocumentsReference = firstLines(text, 3)
		}
		return d
	}
	std := strings.Join(Standards(text), ", ")
	d.Normes = std
	d.NormesCertificat = std
	return d
}

func firstLines(text string, n int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
			if len(out) == n {
				break
			}
		}
	}
	return strings.Join(out, "\n")
}
