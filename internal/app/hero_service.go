package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/quiz"
)

const (
	DefaultHeroListLimit = 60
	MaxHeroListLimit     = 200
)

var (
	nonSearchable = regexp.MustCompile(`[^a-z0-9\s]+`)
	nonSlug       = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespace    = regexp.MustCompile(`\s+`)
	dashes        = regexp.MustCompile(`-+`)
)

// HeroFilter narrows a hero listing.
type HeroFilter struct {
	Query string
	Era   domain.Era
	Limit int
}

// HeroRecord is one entry of a hero import file.
type HeroRecord struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Nama        string             `json:"nama"`
	Era         string             `json:"era" validate:"omitempty,era"`
	PortraitURL string             `json:"portraitUrl" validate:"omitempty,url"`
	Birth       *LifeEventRecord   `json:"birth"`
	Death       *LifeEventRecord   `json:"death"`
	Recognition *RecognitionRecord `json:"recognition"`
	Biography   struct {
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
	} `json:"biography"`
	Aliases []string `json:"aliases"`
}

type LifeEventRecord struct {
	Date  string `json:"date"`
	Place string `json:"place"`
}

type RecognitionRecord struct {
	Basis string `json:"basis"`
	Date  string `json:"date"`
}

// ImportReport counts the outcome of an import.
type ImportReport struct {
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// HeroService serves the hero catalog and imports hero files.
type HeroService struct {
	repo     HeroRepository
	writer   HeroWriter
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewHeroService builds a HeroService. writer may be nil for read-only use.
func NewHeroService(repo HeroRepository, writer HeroWriter, log logrus.FieldLogger) *HeroService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HeroService{repo: repo, writer: writer, validate: NewRecordValidator(), log: log}
}

// NewRecordValidator returns a validator that understands the `era` tag.
func NewRecordValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("era", func(fl validator.FieldLevel) bool {
		return domain.Era(fl.Field().String()).Valid()
	})
	return v
}

// Get returns one hero or domain.ErrHeroNotFound.
func (s *HeroService) Get(ctx context.Context, slug string) (domain.Hero, error) {
	return s.repo.GetHero(ctx, slug)
}

// List filters heroes by era and search tokens and sorts them by name. Every
// token must appear in the hero's normalized name or aliases.
func (s *HeroService) List(ctx context.Context, f HeroFilter) ([]domain.HeroSummary, error) {
	all, err := s.repo.ListHeroes(ctx)
	if err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit == 0 {
		limit = DefaultHeroListLimit
	}
	limit = max(1, min(MaxHeroListLimit, limit))
	tokens := strings.Fields(NormalizeSearch(f.Query))

	matched := make([]domain.Hero, 0, len(all))
	for _, h := range all {
		if f.Era != "" && h.Era != f.Era {
			continue
		}
		if len(tokens) > 0 {
			haystack := NormalizeSearch(strings.Join(append([]string{h.Name}, h.Aliases...), " "))
			if !containsAll(haystack, tokens) {
				continue
			}
		}
		matched = append(matched, h)
	}

	col := collate.New(language.Indonesian, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(matched, func(i, j int) bool {
		return col.CompareString(matched[i].Name, matched[j].Name) < 0
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]domain.HeroSummary, 0, len(matched))
	for _, h := range matched {
		out = append(out, domain.HeroSummary{Slug: h.Slug, Name: h.Name, PortraitURL: h.PortraitURL, Era: h.Era})
	}
	return out, nil
}

// ParseRecords decodes a hero import file, which must be a JSON array.
func ParseRecords(r io.Reader) ([]HeroRecord, error) {
	var records []HeroRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("hero import must be a JSON array of records: %w", err)
	}
	return records, nil
}

// Import normalizes, validates and stores records. Records that fail
// validation or repeat an earlier slug are skipped, not fatal.
func (s *HeroService) Import(ctx context.Context, records []HeroRecord, overwrite bool) (ImportReport, error) {
	if s.writer == nil {
		return ImportReport{}, fmt.Errorf("hero import needs a writable store")
	}
	heroes, skipped := s.Normalize(records)
	n, err := s.writer.UpsertHeroes(ctx, heroes, overwrite)
	if err != nil {
		return ImportReport{}, fmt.Errorf("upsert heroes: %w", err)
	}
	return ImportReport{Upserted: n, Skipped: skipped + len(heroes) - n}, nil
}

// Normalize turns import records into hero records, returning how many were dropped.
func (s *HeroService) Normalize(records []HeroRecord) ([]domain.Hero, int) {
	heroes := make([]domain.Hero, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	skipped := 0

	for i, rec := range records {
		rec.Name = strings.TrimSpace(firstNonEmpty(rec.Name, rec.Nama))
		if err := s.validate.Struct(rec); err != nil {
			s.log.WithError(err).WithField("index", i).Warn("skipping invalid hero record")
			skipped++
			continue
		}
		hero := recordToHero(rec)
		if hero.Slug == "" {
			skipped++
			continue
		}
		if _, dup := seen[hero.Slug]; dup {
			s.log.WithField("slug", hero.Slug).Warn("skipping duplicate hero record")
			skipped++
			continue
		}
		seen[hero.Slug] = struct{}{}
		heroes = append(heroes, hero)
	}
	return heroes, skipped
}

func recordToHero(rec HeroRecord) domain.Hero {
	hero := domain.Hero{
		Slug:        Slugify(rec.Name),
		Name:        rec.Name,
		Summary:     strings.TrimSpace(rec.Biography.Summary),
		PortraitURL: strings.TrimSpace(rec.PortraitURL),
		Birth:       lifeEvent(rec.Birth),
		Death:       lifeEvent(rec.Death),
		Highlights:  trimAll(rec.Biography.Highlights),
		Aliases:     trimAll(rec.Aliases),
	}
	if hero.Summary == "" {
		hero.Summary = hero.Name
	}
	if rec.Recognition != nil {
		if basis := strings.TrimSpace(rec.Recognition.Basis); basis != "" {
			hero.Recognition = &domain.Recognition{Basis: basis, Date: quiz.FormatDate(strings.TrimSpace(rec.Recognition.Date))}
		}
	}

	hero.Era = domain.Era(rec.Era)
	if !hero.Era.Valid() {
		year := 0
		if rec.Birth != nil {
			year = quiz.YearOf(rec.Birth.Date)
		}
		hero.Era = domain.InferEra(year)
	}
	return hero
}

func lifeEvent(rec *LifeEventRecord) *domain.LifeEvent {
	if rec == nil {
		return nil
	}
	ev := domain.LifeEvent{
		Date:  quiz.FormatDate(strings.TrimSpace(rec.Date)),
		Place: strings.TrimSpace(rec.Place),
	}
	if ev.Date == "" && ev.Place == "" {
		return nil
	}
	return &ev
}

// Slugify lowercases name, drops diacritics and punctuation and joins words with dashes.
func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(foldDiacritics(strings.ToLower(name)), "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(dashes.ReplaceAllString(s, "-"), "-")
}

// NormalizeSearch lowercases s, strips diacritics and turns punctuation into
// single spaces.
func NormalizeSearch(s string) string {
	s = nonSearchable.ReplaceAllString(foldDiacritics(strings.ToLower(s)), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsAll(haystack string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(haystack, t) {
			return false
		}
	}
	return true
}

func trimAll(xs []string) []string {
	var out []string
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func firstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return x
		}
	}
	return ""
}
