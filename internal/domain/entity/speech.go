package entity

type Audio struct {
	Data   []byte
	Format string
}

type SpeechStatus string

const (
	SpeechPlayed   SpeechStatus = "played"
	SpeechStarted  SpeechStatus = "started"
	SpeechFailed   SpeechStatus = "failed"
	SpeechSkipped  SpeechStatus = "skipped"
	SpeechDisabled SpeechStatus = "disabled"
)
