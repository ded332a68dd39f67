package memory

import (
	"context"

	"topic-quiz-service/internal/domain"
)

// StaticSource serves fixed question sets by topic (useful for tests/demos).
type StaticSource struct {
	sets map[string][]domain.Question
}

// NewStaticSource indexes sets by normalized topic.
func NewStaticSource(sets map[string][]domain.Question) *StaticSource {
	indexed := make(map[string][]domain.Question, len(sets))
	for topic, questions := range sets {
		indexed[domain.NormalizeTopic(topic)] = questions
	}
	return &StaticSource{sets: indexed}
}

func (s *StaticSource) FetchQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	questions, ok := s.sets[domain.NormalizeTopic(topic)]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	return append([]domain.Question(nil), questions...), nil
}

// DemoSets is a small built-in bank covering the preset topics.
func DemoSets() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Math Fun": {
			{ID: "m1", Question: "What is 7 x 8?", Options: []string{"54", "56", "58", "64"}, CorrectAnswerIndex: 1},
			{ID: "m2", Question: "What is the square root of 144?", Options: []string{"11", "12", "13", "14"}, CorrectAnswerIndex: 1},
			{ID: "m3", Question: "Which number is prime?", Options: []string{"21", "27", "29", "33"}, CorrectAnswerIndex: 2},
			{ID: "m4", Question: "What is 15% of 200?", Options: []string{"15", "20", "30", "35"}, CorrectAnswerIndex: 2},
			{ID: "m5", Question: "How many degrees are in a triangle?", Options: []string{"90", "180", "270", "360"}, CorrectAnswerIndex: 1},
		},
		"Space": {
			{ID: "s1", Question: "Which planet is closest to the Sun?", Options: []string{"Venus", "Mercury", "Mars", "Earth"}, CorrectAnswerIndex: 1},
			{ID: "s2", Question: "What is the largest planet in our solar system?", Options: []string{"Saturn", "Neptune", "Jupiter", "Uranus"}, CorrectAnswerIndex: 2},
			{ID: "s3", Question: "What galaxy do we live in?", Options: []string{"Andromeda", "Milky Way", "Triangulum", "Sombrero"}, CorrectAnswerIndex: 1},
			{ID: "s4", Question: "Which planet has a day longer than its year?", Options: []string{"Venus", "Mars", "Jupiter", "Mercury"}, CorrectAnswerIndex: 0},
			{ID: "s5", Question: "Who was the first person to walk on the Moon?", Options: []string{"Buzz Aldrin", "Yuri Gagarin", "Neil Armstrong", "John Glenn"}, CorrectAnswerIndex: 2},
		},
		"Web Development": {
			{ID: "w1", Question: "Which HTTP status code means Not Found?", Options: []string{"200", "301", "404", "500"}, CorrectAnswerIndex: 2},
			{ID: "w2", Question: "Which CSS property controls text size?", Options: []string{"font-weight", "font-size", "text-style", "line-height"}, CorrectAnswerIndex: 1},
			{ID: "w3", Question: "What does DOM stand for?", Options: []string{"Document Object Model", "Data Object Map", "Display Order Model", "Dynamic Output Module"}, CorrectAnswerIndex: 0},
			{ID: "w4", Question: "Which HTML element links a stylesheet?", Options: []string{"<style>", "<script>", "<link>", "<meta>"}, CorrectAnswerIndex: 2},
			{ID: "w5", Question: "Which method turns a JavaScript object into a JSON string?", Options: []string{"JSON.parse", "JSON.stringify", "Object.toJSON", "String.from"}, CorrectAnswerIndex: 1},
		},
		"World History": {
			{ID: "h1", Question: "In which year did World War II end?", Options: []string{"1943", "1944", "1945", "1946"}, CorrectAnswerIndex: 2},
			{ID: "h2", Question: "Who was the first emperor of Rome?", Options: []string{"Julius Caesar", "Augustus", "Nero", "Trajan"}, CorrectAnswerIndex: 1},
			{ID: "h3", Question: "Which civilization built Machu Picchu?", Options: []string{"Aztec", "Maya", "Inca", "Olmec"}, CorrectAnswerIndex: 2},
			{ID: "h4", Question: "The Magna Carta was sealed in which country?", Options: []string{"France", "England", "Spain", "Italy"}, CorrectAnswerIndex: 1},
			{ID: "h5", Question: "Which wall fell in 1989?", Options: []string{"Hadrian's Wall", "The Great Wall", "The Berlin Wall", "The Western Wall"}, CorrectAnswerIndex: 2},
		},
	}
}
