package output

type PromptID string

const (
	PromptDescribe PromptID = "describe"
	PromptCommand  PromptID = "command"
	PromptElement  PromptID = "element"
)

// PromptBuilder renders the instruction text sent to the model.
type PromptBuilder interface {
	Build(id PromptID, fields map[string]string) (string, error)
}
