package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

var (
	ErrEmptyBank           = errors.New("question bank is empty")
	ErrInvalidDifficulty   = errors.New("invalid question difficulty")
	ErrDuplicateQuestionID = errors.New("duplicate question id")
	ErrInvalidWeight       = errors.New("invalid question weight")
	ErrInvalidQuestionID   = errors.New("question id must be positive")
)

// QuestionBankRepository provides read-only access to the static question bank.
// The bank is loaded once at startup and never mutated afterwards.
type QuestionBankRepository struct {
	subjects []string
	topics   map[string][]string                       // subject -> sorted topics
	byTopic  map[string]map[string][]entities.Question // subject -> topic -> questions
	byID     map[int]entities.Question
}

// NewQuestionBankRepository loads the bank from the JSON file at path.
func NewQuestionBankRepository(path string) (*QuestionBankRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	return ParseQuestionBank(data)
}

// ParseQuestionBank builds a repository from the nested {subject: {topic: [questions]}} JSON.
func ParseQuestionBank(data []byte) (*QuestionBankRepository, error) {
	var raw map[string]map[string][]entities.Question
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question bank JSON: %w", err)
	}

	r := &QuestionBankRepository{
		topics:  make(map[string][]string, len(raw)),
		byTopic: make(map[string]map[string][]entities.Question, len(raw)),
		byID:    make(map[int]entities.Question),
	}

	for subject, topics := range raw {
		if len(topics) == 0 {
			continue
		}

		r.byTopic[subject] = make(map[string][]entities.Question, len(topics))
		for topic, questions := range topics {
			list := make([]entities.Question, 0, len(questions))
			for _, q := range questions {
				if q.ID <= 0 {
					return nil, fmt.Errorf("%w: %s/%s has id %d", ErrInvalidQuestionID, subject, topic, q.ID)
				}
				if !q.Difficulty.Valid() {
					return nil, fmt.Errorf("%w: question %d has %q", ErrInvalidDifficulty, q.ID, q.Difficulty)
				}
				if q.Weight < 0 || q.Weight > 1 {
					return nil, fmt.Errorf("%w: question %d has %v", ErrInvalidWeight, q.ID, q.Weight)
				}
				if _, dup := r.byID[q.ID]; dup {
					return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestionID, q.ID)
				}

				q.Subject = subject
				q.Topic = topic
				r.byID[q.ID] = q
				list = append(list, q)
			}

			r.byTopic[subject][topic] = list
			r.topics[subject] = append(r.topics[subject], topic)
		}

		sort.Strings(r.topics[subject])
		r.subjects = append(r.subjects, subject)
	}

	if len(r.subjects) == 0 {
		return nil, ErrEmptyBank
	}
	sort.Strings(r.subjects)

	return r, nil
}

// Subjects returns all subject names in lexicographic order.
func (r *QuestionBankRepository) Subjects() []string {
	return append([]string(nil), r.subjects...)
}

// Topics returns the sorted topics of a subject.
func (r *QuestionBankRepository) Topics(subject string) ([]string, bool) {
	topics, ok := r.topics[subject]
	if !ok {
		return nil, false
	}
	return append([]string(nil), topics...), true
}

// Catalog returns subject -> topics for every subject of the bank.
func (r *QuestionBankRepository) Catalog() map[string][]string {
	out := make(map[string][]string, len(r.topics))
	for subject, topics := range r.topics {
		out[subject] = append([]string(nil), topics...)
	}
	return out
}

// Questions returns a copy of the questions of one topic in bank order.
func (r *QuestionBankRepository) Questions(subject, topic string) []entities.Question {
	return append([]entities.Question(nil), r.byTopic[subject][topic]...)
}

// GetByID retrieves a question by its id.
func (r *QuestionBankRepository) GetByID(id int) (entities.Question, bool) {
	q, ok := r.byID[id]
	return q, ok
}

// SubjectsForTopic returns the sorted subjects that contain the topic.
func (r *QuestionBankRepository) SubjectsForTopic(topic string) []string {
	var out []string
	for _, subject := range r.subjects {
		if _, ok := r.byTopic[subject][topic]; ok {
			out = append(out, subject)
		}
	}
	return out
}
