package bot

// ActionKind discriminates what a quick action resolves to.
type ActionKind string

const (
	ActionNavigate        ActionKind = "navigate"
	ActionSendCanned      ActionKind = "send_canned"
	ActionSendToResponder ActionKind = "send_to_responder"
)

// Target names the screen a Navigate action points at.
type Target string

const (
	TargetReport   Target = "report"
	TargetStations Target = "stations"
	TargetFeeds    Target = "feeds"
)

// Action is the resolved outcome of a quick-action label.
type Action struct {
	Kind   ActionKind
	Target Target
	// Text carries the canned reply for SendCanned, or the label to feed
	// the Responder for SendToResponder.
	Text string
}

// Quick-action labels shown above the chat input.
const (
	LabelReportCrime  = "Report a crime"
	LabelFindStations = "Find police stations"
	LabelSeeIncidents = "See recent incidents"
	LabelSafetyTips   = "Safety tips"
)

// QuickReplies returns the fixed shortcut labels in display order.
func QuickReplies() []string {
	return []string{LabelReportCrime, LabelFindStations, LabelSeeIncidents, LabelSafetyTips}
}

// Dispatch maps a quick-action label to its Action. Lookup is exact-match
// on the label; unknown labels are delegated to the Responder. Note the
// safety-tips quick action sends a different, shorter text than the
// Responder's safety keyword rule.
func Dispatch(label string) Action {
	switch label {
	case LabelReportCrime:
		return Action{Kind: ActionNavigate, Target: TargetReport}
	case LabelFindStations:
		return Action{Kind: ActionNavigate, Target: TargetStations}
	case LabelSeeIncidents:
		return Action{Kind: ActionNavigate, Target: TargetFeeds}
	case LabelSafetyTips:
		return Action{Kind: ActionSendCanned, Text: quickSafetyTips}
	default:
		return Action{Kind: ActionSendToResponder, Text: label}
	}
}
