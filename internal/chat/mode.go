package chat

// Mode is where a session is in the conversation.
type Mode int

const (
	ModeAwaitingUsername Mode = iota
	ModeIdle
	ModeTeachingProblemPending
	ModeTeachingSolutionPending
	ModeAwaitingSubmittedSolution
	ModeAwaitingFeedback
	ModeSessionEnded
)

var modeNames = map[Mode]string{
	ModeAwaitingUsername:          "awaiting_username",
	ModeIdle:                      "idle",
	ModeTeachingProblemPending:    "teaching_problem_pending",
	ModeTeachingSolutionPending:   "teaching_solution_pending",
	ModeAwaitingSubmittedSolution: "awaiting_submitted_solution",
	ModeAwaitingFeedback:          "awaiting_feedback",
	ModeSessionEnded:              "session_ended",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// State is the session mode plus the problem it concerns. Subject is the
// pending problem while teaching, the problem awaiting a submitted
// solution, or the matched problem awaiting feedback.
type State struct {
	Mode    Mode
	Subject string
}
