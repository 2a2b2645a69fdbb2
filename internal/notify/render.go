package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"hero-quiz-service/internal/domain"
)

// SubjectPrefix starts every quiz-result subject line.
const SubjectPrefix = "Hasil Kuis Mengenang Pahlawan: "

// jakarta is Asia/Jakarta (WIB), which has no DST.
var jakarta = time.FixedZone("WIB", 7*60*60)

var monthsID = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

var htmlTemplate = template.Must(template.New("quiz-result").Parse(`<!doctype html>
<html lang="id">
<body style="font-family:sans-serif;color:#1f2937">
  <h2>Hai{{if .UserName}} {{.UserName}}{{end}},</h2>
  <p>Hasil kuis Anda untuk tokoh <strong>{{.HeroName}}</strong>:</p>
  <p style="font-size:20px"><strong>Skor: {{.Correct}}/{{.Total}}</strong></p>
  {{if .Practice}}<p>Mode latihan, tidak ada poin diberikan.</p>
  {{else}}<p>Poin: <strong>+{{.Awarded}}</strong></p>
  {{if .Breakdown}}<ul>{{range .Breakdown}}<li>{{.Key}}: {{.Value}}</li>{{end}}</ul>{{end}}
  {{end}}<p style="color:#6b7280">Waktu: {{.SentAt}}</p>
  <p>Terus semangat belajar!</p>
</body>
</html>`))

type breakdownLine struct {
	Key   string
	Value int
}

// RenderQuizResult builds the quiz-result email for n, stamped with sentAt in WIB.
func RenderQuizResult(n domain.QuizResultNotification, sentAt time.Time) (Email, error) {
	lines := sortedBreakdown(n.Breakdown)
	stamp := FormatJakarta(sentAt)

	var text strings.Builder
	if n.UserName != "" {
		fmt.Fprintf(&text, "Hai %s,\n", n.UserName)
	} else {
		text.WriteString("Hai,\n")
	}
	fmt.Fprintf(&text, "Hasil kuis Anda untuk tokoh %s:\n", n.HeroName)
	fmt.Fprintf(&text, "Skor: %d/%d\n", n.Correct, n.Total)
	if n.Practice {
		text.WriteString("Mode latihan, tidak ada poin diberikan.\n")
	} else {
		fmt.Fprintf(&text, "Poin: +%d", n.Awarded)
		if len(lines) > 0 {
			parts := make([]string, len(lines))
			for i, l := range lines {
				parts[i] = fmt.Sprintf("%s %d", l.Key, l.Value)
			}
			fmt.Fprintf(&text, " (Rincian: %s)", strings.Join(parts, ", "))
		}
		text.WriteString("\n")
	}
	fmt.Fprintf(&text, "Waktu: %s\n", stamp)
	text.WriteString("Terus semangat belajar!")

	var html bytes.Buffer
	err := htmlTemplate.Execute(&html, struct {
		domain.QuizResultNotification
		Breakdown []breakdownLine
		SentAt    string
	}{n, lines, stamp})
	if err != nil {
		return Email{}, fmt.Errorf("render quiz result: %w", err)
	}

	return Email{
		To:      n.Email,
		Subject: SubjectPrefix + n.HeroName,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// FormatJakarta renders t like "18 Okt 2026, 14.30" in WIB.
func FormatJakarta(t time.Time) string {
	t = t.In(jakarta)
	return fmt.Sprintf("%d %s %d, %02d.%02d", t.Day(), monthsID[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// sortedBreakdown orders base, perfect and firstTry first, then the rest by key.
func sortedBreakdown(b map[string]int) []breakdownLine {
	rank := map[string]int{"base": 0, "perfect": 1, "firstTry": 2}
	lines := make([]breakdownLine, 0, len(b))
	for k, v := range b {
		lines = append(lines, breakdownLine{Key: k, Value: v})
	}
	sort.Slice(lines, func(i, j int) bool {
		ri, iok := rank[lines[i].Key]
		rj, jok := rank[lines[j].Key]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return lines[i].Key < lines[j].Key
		}
	})
	return lines
}
