package domain

import "errors"

// GenerationFailureMessage is the only thing a user learns about a failed generation.
const GenerationFailureMessage = "Oops! I couldn't get the quiz ready. Can you try again?"

var (
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrTopicNotFound indicates a static source has no questions for the topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrGeneration wraps every failure to obtain a usable question set.
	ErrGeneration = errors.New("could not prepare quiz")
	// ErrInvalidQuestionSet indicates a provider response that does not satisfy the question contract.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrNoQuestions is returned when an engine is built over an empty question set.
	ErrNoQuestions = errors.New("question set is empty")
	// ErrResultMissing indicates a result list that does not hold exactly one result per question.
	ErrResultMissing = errors.New("results do not match questions")
)

// Invalid user actions. These are local guards: the caller is told, nothing changes.
var (
	ErrNoSelection       = errors.New("no option selected")
	ErrOptionOutOfRange  = errors.New("option index out of range")
	ErrQuizOver          = errors.New("quiz is no longer in progress")
	ErrInvalidTransition = errors.New("action not allowed on the current screen")
	ErrFetchInFlight     = errors.New("a quiz is already being prepared")
	ErrEmptyTopic        = errors.New("topic is empty")
)

// IsInvalidAction reports whether err is a rejected user action rather than a failure.
func IsInvalidAction(err error) bool {
	for _, target := range []error{
		ErrNoSelection,
		ErrOptionOutOfRange,
		ErrQuizOver,
		ErrInvalidTransition,
		ErrFetchInFlight,
		ErrEmptyTopic,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
