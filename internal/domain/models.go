package domain

import "time"

// LifeEvent is a dated, located moment in a hero's life (birth or death).
type LifeEvent struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// Recognition is the official basis on which the hero title was granted.
type Recognition struct {
	Basis string `json:"basis"`
	Date  string `json:"date,omitempty"`
}

// Hero is a read-only hero record owned by the hero data store.
type Hero struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Era         Era          `json:"era"`
	Summary     string       `json:"summary,omitempty"`
	PortraitURL string       `json:"portraitUrl,omitempty"`
	Birth       *LifeEvent   `json:"birth,omitempty"`
	Death       *LifeEvent   `json:"death,omitempty"`
	Recognition *Recognition `json:"recognition,omitempty"`
	Highlights  []string     `json:"highlights,omitempty"`
	Aliases     []string     `json:"aliases,omitempty"`
}

// Ref returns the short reference embedded in quiz payloads.
func (h Hero) Ref() HeroRef {
	return HeroRef{Slug: h.Slug, Name: h.Name}
}

// HeroRef identifies a hero inside a quiz payload.
type HeroRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// HeroSummary is the list view of a hero.
type HeroSummary struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	PortraitURL string `json:"portraitUrl,omitempty"`
	Era         Era    `json:"era,omitempty"`
}

// DecoyBank holds wrong-answer pools gathered from every hero except the quizzed one.
type DecoyBank struct {
	BirthPlaces  []string
	Eras         []Era
	Recognitions []string
	Highlights   []string
}

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	AnswerID    string   `json:"answerId"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuizPayload is what both quiz generators hand back to clients.
type QuizPayload struct {
	Hero      HeroRef    `json:"hero"`
	Questions []Question `json:"questions"`
}

// QuizAttempt is the raw, append-only log of a submitted quiz.
type QuizAttempt struct {
	UserID    string
	Slug      string
	Total     int
	Correct   int
	CreatedAt time.Time
}

// QuizDaily tracks what a user has scored on one calendar day.
type QuizDaily struct {
	UserID       string
	Day          string
	ScoredCount  int
	HeroSlugs    []string
	PerfectToday bool
}

// HasHero reports whether slug was already scored on this day.
func (d QuizDaily) HasHero(slug string) bool {
	for _, s := range d.HeroSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// QuizPoints is the cumulative points total of a user.
type QuizPoints struct {
	UserID    string
	Points    int
	UpdatedAt time.Time
}

// QuizAward is the audit record written for every attempt, scored or not.
type QuizAward struct {
	UserID    string
	Slug      string
	Points    int
	Practice  bool
	Breakdown map[string]int
	CreatedAt time.Time
}

// AwardResult summarizes the outcome of a recorded attempt.
type AwardResult struct {
	AwardedPoints  int            `json:"awardedPoints"`
	Practice       bool           `json:"practice"`
	Breakdown      map[string]int `json:"breakdown"`
	IsPerfect      bool           `json:"isPerfect"`
	DailyRemaining int            `json:"dailyRemaining"`
}

// PointsSummary is the headline points view for a user.
type PointsSummary struct {
	Total          int `json:"total"`
	DailyRemaining int `json:"dailyRemaining"`
}

// AwardHistoryEntry is one row of a user's award history.
type AwardHistoryEntry struct {
	Slug      string         `json:"slug"`
	HeroName  string         `json:"heroName"`
	Points    int            `json:"points"`
	Practice  bool           `json:"practice"`
	Breakdown map[string]int `json:"breakdown"`
	CreatedAt time.Time      `json:"createdAt"`
}

// QuizResultNotification is the payload of the quiz-result email job.
type QuizResultNotification struct {
	Email     string         `json:"email"`
	UserName  string         `json:"userName,omitempty"`
	HeroName  string         `json:"heroName"`
	Total     int            `json:"total"`
	Correct   int            `json:"correct"`
	Awarded   int            `json:"awarded"`
	Practice  bool           `json:"practice"`
	Breakdown map[string]int `json:"breakdown"`
}
