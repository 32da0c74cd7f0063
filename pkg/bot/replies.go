package bot

// Fixed reply templates. These are product copy, not generated content;
// wording changes are product decisions.

var greetingReplies = []string{
	"Hello!",
	"Hi there!",
	"Greetings!",
	"Hello! How can I help?",
}

const thanksReply = "You're welcome! Is there anything else I can help with?"

const capabilityReply = "I'm a crime awareness assistant. I can help you:\n" +
	"- Report crimes\n- Find police stations\n" +
	"- Check recent incidents\n- Provide safety tips\n" +
	"- Answer crime-related questions"

const reportPrompt = "I can help you file a crime report. Would you like to: 1) Report a new incident or 2) Check status of existing report?"

const stationsReply = "Here are nearby police stations. Would you like directions to any?"

const feedReply = "Showing recent crime reports in your area..."

// safetyTipsLong is returned by the keyword rule. The quick action uses a
// different, shorter list (quickSafetyTips); the two are intentionally
// independent templates.
const safetyTipsLong = `Here are comprehensive safety tips:

🔹 General Awareness:
• Stay alert in crowded areas and avoid phone distractions
• Keep valuables hidden and secure your phone
• Vary your routines and trust your instincts
• Save emergency numbers: Police (999/112/911)

🚗 Transportation Safety:
• Use trusted taxis/ride-sharing apps
• Keep car doors locked and windows up
• Be cautious of "bumps" - could be carjacking
• Avoid displaying valuables in matatus

🏠 Home Security:
• Secure all doors/windows with proper locks
• Verify visitor identities before entry
• Inform security/neighbors about expected guests
• Consider security cameras/alarms

⚠️ If Confronted:
• Prioritize life over possessions
• Stay calm and observe details
• Report incidents immediately to police

For specific concerns, ask about:
• Home security measures
• Safe transportation options
• Emergency procedures`

const quickSafetyTips = "Here are some important safety tips:\n\n" +
	"1. Be aware of your surroundings\n" +
	"2. Avoid walking alone at night\n" +
	"3. Keep valuables out of sight\n" +
	"4. Trust your instincts\n" +
	"5. Have emergency numbers saved\n" +
	"6. Share your location with trusted contacts"

var fallbackReplies = []string{
	"I'm a crime awareness assistant. You can ask me about reporting crimes, finding police stations, or safety tips.",
	"I'm here to help with crime-related information. What would you like to know?",
	"For crime awareness assistance, you can ask me about reporting incidents, police stations, or safety tips.",
}

// GreetingReplies exposes the greeting set for tests and metrics labeling.
func GreetingReplies() []string { return append([]string(nil), greetingReplies...) }

// FallbackReplies exposes the fallback set.
func FallbackReplies() []string { return append([]string(nil), fallbackReplies...) }
