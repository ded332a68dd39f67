// Package view turns controller snapshots into display-ready pages.
// Render is pure: the browser client and the terminal client only draw what it returns.
package view

import (
	"fmt"
	"math"
	"time"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/quiz"
)

// LoadingRotation is how long each loading message stays on screen.
const LoadingRotation = 2 * time.Second

// LoadingMessages rotate under the loading headline.
var LoadingMessages = []string{
	"Just a second...",
	"Thinking of some good questions...",
	"Getting the quiz ready for you...",
	"Almost there!",
	"Hang tight!",
}

// TopicCard is a preset topic offered on the home screen.
type TopicCard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Note string `json:"note"`
}

// PresetTopics are the one-click topics, in display order.
var PresetTopics = []TopicCard{
	{ID: "tech", Name: "Web Development", Note: "For coders!"},
	{ID: "science", Name: "Space", Note: "Outer space!"},
	{ID: "history", Name: "World History", Note: "Back in time!"},
	{ID: "math", Name: "Math Fun", Note: "Numbers!"},
}

// Page is everything a client needs to draw one screen. Exactly one screen section is set.
type Page struct {
	SessionID string       `json:"sessionId"`
	Version   uint64       `json:"version"`
	Screen    string       `json:"screen"`
	Home      *HomePage    `json:"home,omitempty"`
	Loading   *LoadingPage `json:"loading,omitempty"`
	Quiz      *QuizPage    `json:"quiz,omitempty"`
	Results   *ResultsPage `json:"results,omitempty"`
}

// HomePage is the topic picker, with the last generation error if any.
type HomePage struct {
	Title       string      `json:"title"`
	Intro       string      `json:"intro"`
	Error       string      `json:"error,omitempty"`
	Topics      []TopicCard `json:"topics"`
	Placeholder string      `json:"placeholder"`
	StartLabel  string      `json:"startLabel"`
}

// LoadingPage is shown while questions are generated.
type LoadingPage struct {
	Headline     string   `json:"headline"`
	Topic        string   `json:"topic"`
	Messages     []string `json:"messages"`
	RotateMillis int64    `json:"rotateMillis"`
}

// OptionView is one letter-labelled answer option.
type OptionView struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// QuizPage is the current question. Progress is a rounded percentage.
type QuizPage struct {
	Counter      string       `json:"counter"`
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	Progress     int          `json:"progress"`
	Question     string       `json:"question"`
	Options      []OptionView `json:"options"`
	AdvanceLabel string       `json:"advanceLabel"`
	CanAdvance   bool         `json:"canAdvance"`
}

// ChartSegment is one slice of the results chart.
type ChartSegment struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ReviewView is one question in the results review. The right answer is only set when the choice was wrong.
type ReviewView struct {
	Question        string `json:"question"`
	Correct         bool   `json:"correct"`
	YourChoiceLabel string `json:"yourChoiceLabel"`
	YourChoice      string `json:"yourChoice"`
	RightOneLabel   string `json:"rightOneLabel,omitempty"`
	RightOne        string `json:"rightOne,omitempty"`
}

// ResultsPage is the score, feedback tier and per-question review.
type ResultsPage struct {
	Title         string         `json:"title"`
	Text          string         `json:"text"`
	Percent       int            `json:"percent"`
	Correct       int            `json:"correct"`
	Mistakes      int            `json:"mistakes"`
	Chart         []ChartSegment `json:"chart"`
	ReviewHeading string         `json:"reviewHeading"`
	Review        []ReviewView   `json:"review"`
	RestartLabel  string         `json:"restartLabel"`
}

// Render maps a snapshot to the page for its screen.
func Render(s app.Snapshot) Page {
	page := Page{SessionID: s.SessionID, Version: s.Version, Screen: s.Screen.String()}
	switch s.Screen {
	case domain.ScreenLoading:
		page.Loading = renderLoading(s.Topic)
	case domain.ScreenQuiz:
		if s.Quiz != nil {
			page.Quiz = renderQuiz(*s.Quiz)
		}
	case domain.ScreenResults:
		if s.Results != nil {
			page.Results = renderResults(*s.Results)
		}
	default:
		page.Home = renderHome(s.Error)
	}
	return page
}

func renderHome(errMsg string) *HomePage {
	topics := make([]TopicCard, len(PresetTopics))
	copy(topics, PresetTopics)
	return &HomePage{
		Title:       "Welcome to My Quiz App",
		Intro:       "Test your knowledge on anything you want. Just pick a topic below or type your own!",
		Error:       errMsg,
		Topics:      topics,
		Placeholder: "Type any topic here...",
		StartLabel:  "Start Quiz",
	}
}

func renderLoading(topic string) *LoadingPage {
	messages := make([]string, len(LoadingMessages))
	copy(messages, LoadingMessages)
	return &LoadingPage{
		Headline:     "Wait a moment...",
		Topic:        topic,
		Messages:     messages,
		RotateMillis: LoadingRotation.Milliseconds(),
	}
}

// LoadingMessage is the message to show after elapsed time on the loading screen.
func LoadingMessage(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return LoadingMessages[int(elapsed/LoadingRotation)%len(LoadingMessages)]
}

// OptionLabel is the letter shown next to option i: A, B, C, D.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

func renderQuiz(q app.QuizState) *QuizPage {
	options := make([]OptionView, len(q.Options))
	for i, text := range q.Options {
		options[i] = OptionView{
			Label:    OptionLabel(i),
			Text:     text,
			Selected: q.Selected != nil && *q.Selected == i,
		}
	}
	advance := "Next"
	if q.IsLast {
		advance = "See Score"
	}
	return &QuizPage{
		Counter:      fmt.Sprintf("%d of %d", q.Index+1, q.Total),
		Index:        q.Index,
		Total:        q.Total,
		Progress:     int(math.Round(q.Progress)),
		Question:     q.Question,
		Options:      options,
		AdvanceLabel: advance,
		CanAdvance:   q.Selected != nil,
	}
}

// Feedback returns the headline and message for a tier.
func Feedback(tier quiz.Tier) (title, text string) {
	switch tier {
	case quiz.TierPerfect:
		return "You're Amazing!", "Wow, you got every single one right!"
	case quiz.TierGreat:
		return "Great Job!", "You really know your stuff!"
	case quiz.TierGood:
		return "Nice Work!", "You did pretty well!"
	default:
		return "Good Effort!", "Keep practicing, you'll get it!"
	}
}

func renderResults(sum quiz.Summary) *ResultsPage {
	title, text := Feedback(sum.Tier)
	review := make([]ReviewView, len(sum.Review))
	for i, item := range sum.Review {
		review[i] = ReviewView{
			Question:        item.Question,
			Correct:         item.Correct,
			YourChoiceLabel: "Your choice",
			YourChoice:      item.Selected,
		}
		if !item.Correct {
			review[i].RightOneLabel = "The right one"
			review[i].RightOne = item.CorrectAnswer
		}
	}
	return &ResultsPage{
		Title:    title,
		Text:     text,
		Percent:  int(math.Round(sum.Percentage)),
		Correct:  sum.Score,
		Mistakes: sum.Mistakes,
		Chart: []ChartSegment{
			{Name: "Correct", Value: sum.Score},
			{Name: "Wrong", Value: sum.Mistakes},
		},
		ReviewHeading: "Let's see the answers:",
		Review:        review,
		RestartLabel:  "Try Another Quiz",
	}
}
