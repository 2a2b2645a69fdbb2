package quiz

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"hero-quiz-service/internal/domain"
)

func TestBuildDecoyBankExcludesTargetAndBlanks(t *testing.T) {
	bank := BuildDecoyBank(sampleHeroes(), "bung-tomo")

	for _, p := range bank.BirthPlaces {
		if p == "Surabaya" {
			t.Fatalf("target hero birthplace leaked into bank: %v", bank.BirthPlaces)
		}
		if strings.TrimSpace(p) == "" {
			t.Fatalf("blank birthplace in bank: %q", bank.BirthPlaces)
		}
	}
	if len(bank.BirthPlaces) != 3 {
		t.Fatalf("expected 3 birthplaces, got %v", bank.BirthPlaces)
	}
	if len(bank.Eras) != 5 {
		t.Fatalf("expected full era enumeration, got %v", bank.Eras)
	}
	for _, hl := range bank.Highlights {
		if strings.Contains(hl, "Surabaya 10 November") {
			t.Fatalf("target hero highlight leaked into bank")
		}
	}
}

func TestBuildDecoyBankWithNoOtherHeroes(t *testing.T) {
	heroes := sampleHeroes()[:1]
	bank := BuildDecoyBank(heroes, heroes[0].Slug)
	if len(bank.BirthPlaces) != 0 || len(bank.Recognitions) != 0 || len(bank.Highlights) != 0 {
		t.Fatalf("expected empty pools, got %+v", bank)
	}
	if len(bank.Eras) != 5 {
		t.Fatalf("eras must always be present, got %v", bank.Eras)
	}
}

func TestBuildDecoyBankIsOrderIndependent(t *testing.T) {
	heroes := sampleHeroes()
	reversed := make([]domain.Hero, len(heroes))
	for i, h := range heroes {
		reversed[len(heroes)-1-i] = h
	}

	a := BuildDecoyBank(heroes, "kartini")
	b := BuildDecoyBank(reversed, "kartini")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("bank differs by input order:\n%+v\n%+v", a, b)
	}
}

func TestEveryQuestionHasExactlyOneAnswer(t *testing.T) {
	heroes := sampleHeroes()
	for seed := int64(0); seed < 20; seed++ {
		synth := NewSynthesizer(rand.New(rand.NewSource(seed)))
		for _, hero := range heroes {
			questions := synth.Questions(hero, BuildDecoyBank(heroes, hero.Slug))
			for _, q := range questions {
				matches := 0
				ids := make(map[string]struct{})
				for _, o := range q.Options {
					if o.ID == q.AnswerID {
						matches++
					}
					if _, dup := ids[o.ID]; dup {
						t.Fatalf("duplicate option id %s in %q", o.ID, q.Prompt)
					}
					ids[o.ID] = struct{}{}
				}
				if matches != 1 {
					t.Fatalf("expected exactly one answer option in %q, got %d", q.Prompt, matches)
				}
			}
		}
	}
}

func TestBirthYearUsesFixedOffsets(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(1)))
	hero := domain.Hero{Slug: "x", Name: "X", Birth: &domain.LifeEvent{Date: "1920-10-03"}}

	questions := synth.Questions(hero, domain.DecoyBank{})
	if len(questions) != 1 {
		t.Fatalf("expected only the birth year question, got %d", len(questions))
	}
	q := questions[0]
	if got := optionTexts(q); !sameSet(got, []string{"1920", "1921", "1918"}) {
		t.Fatalf("unexpected year options %v", got)
	}
	if answerText(q) != "1920" {
		t.Fatalf("expected answer 1920, got %s", answerText(q))
	}
	if q.Explanation != "Tanggal lahir: 03-10-1920" {
		t.Fatalf("unexpected explanation %q", q.Explanation)
	}
}

func TestBirthplaceOmittedWhenDecoysStarved(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(2)))
	hero := domain.Hero{Slug: "x", Name: "X", Birth: &domain.LifeEvent{Place: "Surabaya"}}

	starved := domain.DecoyBank{BirthPlaces: []string{"Surabaya", "Jepara"}}
	if qs := synth.Questions(hero, starved); len(qs) != 0 {
		t.Fatalf("expected birthplace question to be omitted, got %+v", qs)
	}

	enough := domain.DecoyBank{BirthPlaces: []string{"Surabaya", "Jepara", "Bukittinggi"}}
	qs := synth.Questions(hero, enough)
	if len(qs) != 1 || len(qs[0].Options) != 3 {
		t.Fatalf("expected one 3-option birthplace question, got %+v", qs)
	}
	if answerText(qs[0]) != "Surabaya" {
		t.Fatalf("wrong answer %s", answerText(qs[0]))
	}
}

func TestRecognitionOmittedWhenDecoysStarved(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(3)))
	hero := domain.Hero{Slug: "x", Name: "X", Recognition: &domain.Recognition{Basis: "Keppres 1", Date: "2008-11-06"}}

	if qs := synth.Questions(hero, domain.DecoyBank{Recognitions: []string{"Keppres 2"}}); len(qs) != 0 {
		t.Fatalf("expected recognition question to be omitted, got %+v", qs)
	}

	qs := synth.Questions(hero, domain.DecoyBank{Recognitions: []string{"Keppres 2", "Keppres 3", "Keppres 4"}})
	if len(qs) != 1 || len(qs[0].Options) != 3 {
		t.Fatalf("expected one 3-option recognition question, got %+v", qs)
	}
	if qs[0].Explanation != "Tanggal Keppres: 06-11-2008" {
		t.Fatalf("unexpected explanation %q", qs[0].Explanation)
	}
}

func TestEraQuestionAlwaysHasThreeOptions(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(4)))
	bank := BuildDecoyBank(nil, "")
	for _, era := range domain.AllEras() {
		hero := domain.Hero{Slug: "x", Name: "X", Era: era}
		qs := synth.Questions(hero, bank)
		if len(qs) != 1 {
			t.Fatalf("expected one era question for %s, got %d", era, len(qs))
		}
		if len(qs[0].Options) != 3 {
			t.Fatalf("expected 3 options for %s, got %d", era, len(qs[0].Options))
		}
		if answerText(qs[0]) != string(era) {
			t.Fatalf("wrong era answer %s", answerText(qs[0]))
		}
		texts := optionTexts(qs[0])
		if !distinct(texts) {
			t.Fatalf("era options not distinct: %v", texts)
		}
	}
}

func TestHighlightKeptWithFewDecoys(t *testing.T) {
	synth := NewSynthesizer(rand.New(rand.NewSource(5)))
	hero := domain.Hero{Slug: "x", Name: "X", Highlights: []string{"  First fact  ", "Second fact"}}

	qs := synth.Questions(hero, domain.DecoyBank{})
	if len(qs) != 1 {
		t.Fatalf("expected highlight question even without decoys, got %d", len(qs))
	}
	if len(qs[0].Options) != 1 || answerText(qs[0]) != "First fact" {
		t.Fatalf("expected single trimmed first-highlight option, got %+v", qs[0].Options)
	}

	qs = synth.Questions(hero, domain.DecoyBank{Highlights: []string{"Other fact"}})
	if len(qs) != 1 || len(qs[0].Options) != 2 {
		t.Fatalf("expected 2 options with one decoy, got %+v", qs)
	}
	for _, o := range qs[0].Options {
		if o.Text == "Second fact" {
			t.Fatalf("only the first highlight may be used")
		}
	}
}

func TestBuildTruncatesToRequested(t *testing.T) {
	heroes := sampleHeroes()
	hero := heroes[0]
	bank := BuildDecoyBank(heroes, hero.Slug)
	synth := NewSynthesizer(rand.New(rand.NewSource(6)))

	all := synth.Questions(hero, bank)
	if len(all) != 5 {
		t.Fatalf("expected all five categories for the fixture hero, got %d", len(all))
	}
	if got := synth.Build(hero, bank, 2); len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got := synth.Build(hero, bank, 50); len(got) != 5 {
		t.Fatalf("expected capped at 5, got %d", len(got))
	}
	if got := synth.Build(hero, bank, 0); len(got) != DefaultQuestionCount {
		t.Fatalf("expected default count, got %d", len(got))
	}
	if got := synth.Build(domain.Hero{Slug: "empty", Name: "Empty"}, bank, 3); len(got) != 0 {
		t.Fatalf("expected no questions for a factless hero, got %d", len(got))
	}
}

func TestSeededSynthesizerIsReproducible(t *testing.T) {
	heroes := sampleHeroes()
	bank := BuildDecoyBank(heroes, heroes[0].Slug)

	a := NewSynthesizer(rand.New(rand.NewSource(42))).Build(heroes[0], bank, 5)
	b := NewSynthesizer(rand.New(rand.NewSource(42))).Build(heroes[0], bank, 5)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different quizzes")
	}
}

func TestYearOf(t *testing.T) {
	cases := map[string]int{
		"1920-10-03":           1920,
		"03-10-1920":           1920,
		"sekitar tahun 1785":   1785,
		"1945-08-17T00:00:00Z": 1945,
		"":                     0,
		"unknown":              0,
	}
	for in, want := range cases {
		if got := YearOf(in); got != want {
			t.Errorf("YearOf(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"1920-10-03":           "03-10-1920",
		"1920/10/03":           "03-10-1920",
		"03-10-1920":           "03-10-1920",
		"1945-08-17T10:00:00Z": "17-08-1945",
		"abad ke-19":           "abad ke-19",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func sampleHeroes() []domain.Hero {
	return []domain.Hero{
		{
			Slug:        "bung-tomo",
			Name:        "Bung Tomo",
			Era:         domain.EraRevolution,
			Birth:       &domain.LifeEvent{Date: "1920-10-03", Place: "Surabaya"},
			Recognition: &domain.Recognition{Basis: "Keppres No. 041/TK/2008", Date: "2008-11-02"},
			Highlights:  []string{"Membakar semangat arek-arek Surabaya 10 November 1945"},
		},
		{
			Slug:        "kartini",
			Name:        "R.A. Kartini",
			Era:         domain.EraColonialWars,
			Birth:       &domain.LifeEvent{Date: "1879-04-21", Place: "Jepara"},
			Recognition: &domain.Recognition{Basis: "Keppres No. 108 Tahun 1964"},
			Highlights:  []string{"Memperjuangkan pendidikan perempuan", "Menulis surat kepada sahabat di Belanda"},
		},
		{
			Slug:        "hatta",
			Name:        "Mohammad Hatta",
			Era:         domain.EraNationalMovement,
			Birth:       &domain.LifeEvent{Date: "1902-08-12", Place: "Bukittinggi"},
			Recognition: &domain.Recognition{Basis: "Keppres No. 84/TK/2012"},
			Highlights:  []string{"Proklamator kemerdekaan"},
		},
		{
			Slug:        "cut-nyak-dien",
			Name:        "Cut Nyak Dien",
			Era:         domain.EraColonialWars,
			Birth:       &domain.LifeEvent{Place: "Lampadang"},
			Recognition: &domain.Recognition{Basis: "Keppres No. 106 Tahun 1964"},
		},
		{
			Slug:  "blank",
			Name:  "Blank",
			Birth: &domain.LifeEvent{Place: "   "},
		},
	}
}

func optionTexts(q domain.Question) []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		out = append(out, o.Text)
	}
	return out
}

func answerText(q domain.Question) string {
	for _, o := range q.Options {
		if o.ID == q.AnswerID {
			return o.Text
		}
	}
	return ""
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int)
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

func distinct(xs []string) bool {
	seen := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			return false
		}
		seen[x] = struct{}{}
	}
	return true
}
