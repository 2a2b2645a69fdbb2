package quiz

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"hero-quiz-service/internal/domain"
)

// DefaultQuestionCount is used when the caller does not ask for a count.
const DefaultQuestionCount = 5

const decoysPerQuestion = 2

// Synthesizer builds multiple-choice questions from structured hero data.
// All randomness (option order, question order, ids) comes from one source so
// a seeded Synthesizer is fully reproducible.
type Synthesizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynthesizer returns a Synthesizer drawing from rnd. A nil rnd is seeded
// from the wall clock.
func NewSynthesizer(rnd *rand.Rand) *Synthesizer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rnd: rnd}
}

// Build synthesizes every applicable question, shuffles them and keeps
// max(1, min(available, requested)). A non-positive requested means the default.
func (s *Synthesizer) Build(hero domain.Hero, bank domain.DecoyBank, requested int) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requested <= 0 {
		requested = DefaultQuestionCount
	}
	questions := shuffle(s.rnd, s.questionsLocked(hero, bank))
	take := max(1, min(len(questions), requested))
	if take > len(questions) {
		return questions
	}
	return questions[:take]
}

// Questions returns one candidate question per applicable fact category, in
// category order: birth year, birthplace, era, recognition, highlight.
func (s *Synthesizer) Questions(hero domain.Hero, bank domain.DecoyBank) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionsLocked(hero, bank)
}

func (s *Synthesizer) questionsLocked(hero domain.Hero, bank domain.DecoyBank) []domain.Question {
	out := make([]domain.Question, 0, 5)
	name := hero.Name

	if hero.Birth != nil {
		if year := YearOf(hero.Birth.Date); year != 0 {
			explanation := ""
			if hero.Birth.Date != "" {
				explanation = "Tanggal lahir: " + FormatDate(hero.Birth.Date)
			}
			// Year decoys are fixed offsets, so this question never starves.
			out = append(out, s.question(
				fmt.Sprintf("Tahun berapa %s lahir?", name),
				strconv.Itoa(year),
				[]string{strconv.Itoa(year + 1), strconv.Itoa(year - 2)},
				explanation,
			))
		}
	}

	if hero.Birth != nil {
		if place := strings.TrimSpace(hero.Birth.Place); place != "" {
			decoys := s.sample(bank.BirthPlaces, place)
			if len(decoys) == decoysPerQuestion {
				out = append(out, s.question(fmt.Sprintf("Di mana %s lahir?", name), place, decoys, ""))
			}
		}
	}

	if era := strings.TrimSpace(string(hero.Era)); era != "" {
		pool := make([]string, 0, len(bank.Eras))
		for _, e := range bank.Eras {
			pool = append(pool, string(e))
		}
		out = append(out, s.question(
			fmt.Sprintf("Era perjuangan yang paling tepat untuk %s?", name),
			era,
			s.sample(pool, era),
			"",
		))
	}

	if hero.Recognition != nil {
		if basis := strings.TrimSpace(hero.Recognition.Basis); basis != "" {
			decoys := s.sample(bank.Recognitions, basis)
			if len(decoys) == decoysPerQuestion {
				explanation := ""
				if hero.Recognition.Date != "" {
					explanation = "Tanggal Keppres: " + FormatDate(hero.Recognition.Date)
				}
				out = append(out, s.question(fmt.Sprintf("Dasar penetapan gelar pahlawan %s?", name), basis, decoys, explanation))
			}
		}
	}

	// Only the first highlight is quizzed, and unlike birthplace/recognition the
	// question survives with fewer than two decoys.
	if len(hero.Highlights) > 0 {
		if truth := strings.TrimSpace(hero.Highlights[0]); truth != "" {
			out = append(out, s.question(
				fmt.Sprintf("Manakah pernyataan yang benar tentang %s?", name),
				truth,
				s.sample(bank.Highlights, truth),
				"",
			))
		}
	}

	return out
}

// sample draws up to two distinct values from pool that differ from correct.
func (s *Synthesizer) sample(pool []string, correct string) []string {
	seen := make(map[string]struct{}, len(pool))
	candidates := make([]string, 0, len(pool))
	for _, p := range pool {
		if p == correct {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		candidates = append(candidates, p)
	}
	candidates = shuffle(s.rnd, candidates)
	if len(candidates) > decoysPerQuestion {
		candidates = candidates[:decoysPerQuestion]
	}
	return candidates
}

func (s *Synthesizer) question(prompt, correct string, decoys []string, explanation string) domain.Question {
	answer := domain.Option{ID: s.newID(), Text: correct}
	options := []domain.Option{answer}
	for _, d := range decoys {
		options = append(options, domain.Option{ID: s.newID(), Text: d})
	}
	return domain.Question{
		ID:          s.newID(),
		Prompt:      prompt,
		Options:     shuffle(s.rnd, options),
		AnswerID:    answer.ID,
		Explanation: explanation,
	}
}

func (s *Synthesizer) newID() string {
	id, err := uuid.NewRandomFromReader(s.rnd)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// shuffle returns a Fisher-Yates permutation of a copy of xs.
func shuffle[T any](rnd *rand.Rand, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
