package domain

import "time"

// Interaction is one inbound component press or modal submission.
// Token carries the correlation token embedded in the control's custom ID;
// ResponseToken is the platform's own response credential for this event.
type Interaction struct {
	ID            string
	Token         string
	ResponseToken string
	UserID        string
	ChannelID     string
	MessageID     string
	GuildID       string
	Locale        string
	Values        map[string]string
}

type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Username  string
	Locale    string
	Text      string
	Timestamp time.Time
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonDanger
)

type Button struct {
	Label string
	Token string
	Style ButtonStyle
}

// Content is the outward shape of a bot message: text plus any interactive
// components carrying correlation tokens.
type Content struct {
	Text    string
	Buttons []Button
}

type ModalField struct {
	Key       string
	Label     string
	Value     string
	Required  bool
	Paragraph bool
}

type Modal struct {
	Token  string
	Title  string
	Fields []ModalField
}

type Document struct {
	Kind      string
	ID        string
	Body      []byte
	UpdatedAt time.Time
}
