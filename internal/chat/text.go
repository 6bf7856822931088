package chat

const (
	msgAskName       = "Hi there! What's your name?"
	msgGreeting      = "Nice to meet you, %s!"
	msgPrompt        = "How can I assist you today? You can describe your issue or type 'help' to see commands."
	msgHelp          = "Available commands:\n- 'clear' to clear chat\n- 'reset' to reset knowledge\n- 'solution' to teach me\n- 'profile' to view your profile\n- 'history' to see your recent questions"
	msgCleared       = "Chat cleared. ✅"
	msgReset         = "Knowledge and history reset. 🔄"
	msgNoHistory     = "No history recorded yet."
	msgHistoryHeader = "Your recent questions:"
	msgTeachProblem  = "Alright! Please type the problem you want to add a solution for."
	msgTeachSolution = "Got it! Now please provide the solution for: \"%s\""
	msgTeachSaved    = "Problem and solution saved successfully! ✅"
	msgLearned       = "Thanks %s! I've learned how to handle \"%s\"."
	msgAnswer        = "(Confidence: %d%%)\n%s\n\n*Taught by: %s | Badge: %s | Points: %d*"
	msgWasHelpful    = "Was this helpful?"
	msgSimilar       = "I haven't learned how to fix that *yet*, but users who had similar issues also asked about:\n%s\nWant to try one of these?"
	msgNoMatch       = "Hmm, I couldn't find anything close. If you'd like to teach me how to solve this, just hit the button below."
	msgTypeSolution  = "Please type the solution and hit Send."
	msgGlad          = "Glad I could help! ✅"
	msgSorry         = "Sorry this didn't help. Would you like to update the solution?"
	msgNotStored     = "This problem isn't stored yet. You can add a new solution using the 'solution' command."
	msgImproved      = "Please provide the improved solution."
	msgNoWorries     = "No worries. Let me know if you need anything else!"
	msgEndQuestion   = "Would you like to end this chat?"
	msgEnded         = "Chat ended. You can start a new issue anytime."
	msgCarryOn       = "Great! What else can I help you with?"
	msgYouSaid       = "You said: \"%s\""
	unknownAuthor    = "Unknown"
)

const (
	groupFeedback = "feedback"
	groupUpdate   = "update"
	groupEnd      = "end"
	groupSubmit   = "submit"
)

var (
	feedbackChoices = []Choice{{ID: ChoiceFeedbackYes, Label: "👍 Yes"}, {ID: ChoiceFeedbackNo, Label: "👎 No"}}
	updateChoices   = []Choice{{ID: ChoiceUpdateYes, Label: "Yes"}, {ID: ChoiceUpdateNo, Label: "No"}}
	endChoices      = []Choice{{ID: ChoiceEndYes, Label: "Yes"}, {ID: ChoiceEndNo, Label: "No"}}
	submitChoices   = []Choice{{ID: ChoiceSubmitSolution, Label: "Submit Solution"}}
)
