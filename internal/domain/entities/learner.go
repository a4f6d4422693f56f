package entities

import (
	"sort"
	"time"
)

const (
	MinMastery = 0
	MaxMastery = 100
)

// MasteryRules are the tunables of a mastery update.
type MasteryRules struct {
	InitialMastery int // mastery of a topic never practised
	StepUp         int // gain after a correct answer
	StepDown       int // loss after an incorrect answer
	RecentWindow   int // number of latest results kept per topic
}

// DefaultMasteryRules returns the +5/-3 rules with a window of five results.
func DefaultMasteryRules() MasteryRules {
	return MasteryRules{
		InitialMastery: 50,
		StepUp:         5,
		StepDown:       3,
		RecentWindow:   5,
	}
}

// ClampMastery bounds m to [MinMastery, MaxMastery].
func ClampMastery(m int) int {
	return min(MaxMastery, max(MinMastery, m))
}

// TopicProgress stores the learning progress of a learner for a single topic.
type TopicProgress struct {
	Mastery         int    `json:"mastery"`          // 0-100
	Attempts        int    `json:"attempts"`         // never decreases
	CorrectAttempts int    `json:"correct_attempts"` // never decreases
	RecentResults   []bool `json:"recent_results"`   // latest results, oldest first
}

// NewTopicProgress creates progress for a topic that was never practised.
func NewTopicProgress(initialMastery int) *TopicProgress {
	return &TopicProgress{
		Mastery:       ClampMastery(initialMastery),
		RecentResults: []bool{},
	}
}

// Record applies one attempt to the progress.
func (p *TopicProgress) Record(isCorrect bool, rules MasteryRules) {
	p.Attempts++
	if isCorrect {
		p.CorrectAttempts++
	}

	window := max(1, rules.RecentWindow)
	p.RecentResults = append(p.RecentResults, isCorrect)
	if over := len(p.RecentResults) - window; over > 0 {
		p.RecentResults = append([]bool(nil), p.RecentResults[over:]...)
	}

	if isCorrect {
		p.Mastery = ClampMastery(p.Mastery + rules.StepUp)
	} else {
		p.Mastery = ClampMastery(p.Mastery - rules.StepDown)
	}
}

// Accuracy returns the overall share of correct attempts.
// The second value is false when the topic has no attempts yet.
func (p TopicProgress) Accuracy() (float64, bool) {
	if p.Attempts == 0 {
		return 0, false
	}
	return float64(p.CorrectAttempts) / float64(p.Attempts), true
}

// RecentErrorRate returns the share of incorrect results in the recent window, 0 when empty.
func (p TopicProgress) RecentErrorRate() float64 {
	if len(p.RecentResults) == 0 {
		return 0
	}

	wrong := 0
	for _, ok := range p.RecentResults {
		if !ok {
			wrong++
		}
	}
	return float64(wrong) / float64(len(p.RecentResults))
}

// Graduated reports whether the topic has reached full mastery.
func (p TopicProgress) Graduated() bool {
	return p.Mastery >= MaxMastery
}

func (p *TopicProgress) clone() *TopicProgress {
	cp := *p
	cp.RecentResults = append([]bool{}, p.RecentResults...)
	return &cp
}

// SubjectProgress groups topic progress of one subject.
type SubjectProgress struct {
	Subject string                    `json:"subject"`
	Topics  map[string]*TopicProgress `json:"topics"`
	Seen    map[int]bool              `json:"seen,omitempty"` // question ids already served
}

// NewSubjectProgress creates progress with every topic at the initial mastery.
func NewSubjectProgress(subject string, topics []string, initialMastery int) *SubjectProgress {
	sp := &SubjectProgress{
		Subject: subject,
		Topics:  make(map[string]*TopicProgress, len(topics)),
		Seen:    make(map[int]bool),
	}
	for _, t := range topics {
		sp.Topics[t] = NewTopicProgress(initialMastery)
	}
	return sp
}

// Topic returns progress of a topic.
func (s *SubjectProgress) Topic(name string) (*TopicProgress, bool) {
	p, ok := s.Topics[name]
	return p, ok
}

// TopicNames returns all topic names in lexicographic order.
func (s *SubjectProgress) TopicNames() []string {
	names := make([]string, 0, len(s.Topics))
	for name := range s.Topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MasteryOverview returns a copy of topic -> mastery.
func (s *SubjectProgress) MasteryOverview() map[string]int {
	out := make(map[string]int, len(s.Topics))
	for name, p := range s.Topics {
		out[name] = p.Mastery
	}
	return out
}

// MarkSeen remembers that a question was served.
func (s *SubjectProgress) MarkSeen(questionID int) {
	if s.Seen == nil {
		s.Seen = make(map[int]bool)
	}
	s.Seen[questionID] = true
}

// Forget drops the given question ids from the seen set.
func (s *SubjectProgress) Forget(questionIDs []int) {
	for _, id := range questionIDs {
		delete(s.Seen, id)
	}
}

func (s *SubjectProgress) clone() *SubjectProgress {
	cp := &SubjectProgress{
		Subject: s.Subject,
		Topics:  make(map[string]*TopicProgress, len(s.Topics)),
		Seen:    make(map[int]bool, len(s.Seen)),
	}
	for name, p := range s.Topics {
		cp.Topics[name] = p.clone()
	}
	for id := range s.Seen {
		cp.Seen[id] = true
	}
	return cp
}

// AttemptRecord is an audit entry of a single recorded attempt.
type AttemptRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	QuestionID   int       `json:"question_id,omitempty"`
	Correct      bool      `json:"correct"`
	MasteryAfter int       `json:"mastery_after"`
}

// Learner is the whole state of one learner session.
type Learner struct {
	SessionID string                      `json:"session_id"`
	Subjects  map[string]*SubjectProgress `json:"subjects"`
	History   []AttemptRecord             `json:"history"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// NewLearner creates a learner with every topic of catalog (subject -> topics) at the initial mastery.
func NewLearner(sessionID string, catalog map[string][]string, initialMastery int, now time.Time) *Learner {
	l := &Learner{
		SessionID: sessionID,
		Subjects:  make(map[string]*SubjectProgress, len(catalog)),
		History:   []AttemptRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for subject, topics := range catalog {
		l.Subjects[subject] = NewSubjectProgress(subject, topics, initialMastery)
	}
	return l
}

// Subject returns progress of a subject.
func (l *Learner) Subject(name string) (*SubjectProgress, bool) {
	sp, ok := l.Subjects[name]
	return sp, ok
}

// EnsureSubject returns progress of a subject, adding the subject and any missing topics.
func (l *Learner) EnsureSubject(subject string, topics []string, initialMastery int) *SubjectProgress {
	if l.Subjects == nil {
		l.Subjects = make(map[string]*SubjectProgress)
	}

	sp, ok := l.Subjects[subject]
	if !ok {
		sp = NewSubjectProgress(subject, topics, initialMastery)
		l.Subjects[subject] = sp
		return sp
	}

	if sp.Topics == nil {
		sp.Topics = make(map[string]*TopicProgress, len(topics))
	}
	for _, t := range topics {
		if _, ok := sp.Topics[t]; !ok {
			sp.Topics[t] = NewTopicProgress(initialMastery)
		}
	}
	return sp
}

// RecordAttempt updates the topic progress and appends an audit entry to the history.
func (l *Learner) RecordAttempt(
	subject, topic string,
	questionID int,
	isCorrect bool,
	rules MasteryRules,
	now time.Time,
) AttemptRecord {
	sp := l.EnsureSubject(subject, nil, rules.InitialMastery)

	p, ok := sp.Topics[topic]
	if !ok {
		p = NewTopicProgress(rules.InitialMastery)
		sp.Topics[topic] = p
	}
	p.Record(isCorrect, rules)

	rec := AttemptRecord{
		Timestamp:    now,
		Subject:      subject,
		Topic:        topic,
		QuestionID:   questionID,
		Correct:      isCorrect,
		MasteryAfter: p.Mastery,
	}
	l.History = append(l.History, rec)
	l.UpdatedAt = now

	return rec
}

// Clone returns a deep copy of the learner.
func (l *Learner) Clone() *Learner {
	cp := &Learner{
		SessionID: l.SessionID,
		Subjects:  make(map[string]*SubjectProgress, len(l.Subjects)),
		History:   append([]AttemptRecord{}, l.History...),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	for name, sp := range l.Subjects {
		cp.Subjects[name] = sp.clone()
	}
	return cp
}

// LearnerFactory creates the initial state of a new session.
type LearnerFactory func(sessionID string, now time.Time) *Learner
