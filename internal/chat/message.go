package chat

// Kind says how a renderer should treat a Message.
type Kind string

const (
	// KindText is an ordinary chat bubble. Text is markdown.
	KindText Kind = "text"
	// KindTyping shows a typing indicator until the next bot message.
	KindTyping Kind = "typing"
	// KindClear empties the transcript on screen.
	KindClear Kind = "clear"
	// KindChips replaces the quick-pick suggestions.
	KindChips Kind = "chips"
	// KindWithdraw removes previously offered choices.
	KindWithdraw Kind = "withdraw"
)

// ChoiceID names a button the bot can offer.
type ChoiceID string

const (
	ChoiceSubmitSolution ChoiceID = "submit_solution"
	ChoiceFeedbackYes    ChoiceID = "feedback_yes"
	ChoiceFeedbackNo     ChoiceID = "feedback_no"
	ChoiceUpdateYes      ChoiceID = "update_yes"
	ChoiceUpdateNo       ChoiceID = "update_no"
	ChoiceEndYes         ChoiceID = "end_yes"
	ChoiceEndNo          ChoiceID = "end_no"
)

// Choice is a button attached to a bot message.
type Choice struct {
	ID    ChoiceID `json:"id"`
	Label string   `json:"label"`
}

// Message is everything a renderer needs to display one event.
type Message struct {
	Kind     Kind
	Text     string
	FromUser bool
	// Speech is what a voice renderer should read aloud.
	Speech string
	// Speak is set when the user talked to the bot and has not muted it.
	Speak   bool
	Choices []Choice
	// Options are problems the user can click to ask about.
	Options []string
	Chips   []string
}

// Renderer displays messages. Render is called with the session locked
// and must not call back into the session.
type Renderer interface {
	Render(Message)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Message)

func (f RendererFunc) Render(m Message) { f(m) }
