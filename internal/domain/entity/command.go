package entity

type Intent string

const (
	IntentCommand  Intent = "command"
	IntentQuestion Intent = "question"
)

func (i Intent) Valid() bool {
	return i == IntentCommand || i == IntentQuestion
}

// CommandResult is the closed schema the /command endpoint returns. Fields
// that do not apply to the intent are empty strings, never absent.
type CommandResult struct {
	Intent       Intent `json:"intent"`
	Answer       string `json:"answer"`
	Script       string `json:"script"`
	Confirmation string `json:"confirmation"`
}

// SpokenText is what the user hears back: the confirmation of an action or
// the answer to a question.
func (r *CommandResult) SpokenText() string {
	if r.Intent == IntentCommand {
		return r.Confirmation
	}
	return r.Answer
}
