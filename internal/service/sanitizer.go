package service

import (
	"html"
	"log"
	"regexp"

	"leasebot/internal/model"

	"github.com/microcosm-cc/bluemonday"
)

// Size limits applied to text moving through the pipeline.
const (
	MaxPromptLength   = 1000
	MaxResponseLength = 5000
	MaxFieldLength    = 100
	MaxHistoryLength  = 20
)

// Fixed substitute sentences. Dangerous content is replaced wholesale, never
// filtered piecewise.
const (
	SafeInputMessage   = "I'm here to help with real estate questions only."
	SafeHistoryMessage = "I apologize, but I can only assist with real estate inquiries."
	SafeReplyMessage   = "I apologize, but I can only provide information related to real estate. How can I help you with your real estate requirements?"
)

// dangerousPatterns is the fixed battery of pattern classes checked against
// every inbound and outbound text: code-execution verbs, filesystem and env
// access, script/markup injection, SQL keywords.
var dangerousPatterns = []*regexp.Regexp{
	// Code execution attempts
	regexp.MustCompile(`(?i)(execute|run|eval|exec|import|require|include)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(function|def|class|module|package)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(bash|shell|terminal|command|cmd)\s*\([^)]*\)`),

	// Filesystem and OS access
	regexp.MustCompile(`(?i)(file:|open:|read:|write:|delete:|remove:|system:|os\.|subprocess)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(path|directory|folder|drive|volume)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(/etc|/var|/usr|/bin|/sbin|/opt)\s*\([^)]*\)`),

	// Environment and secrets probing
	regexp.MustCompile(`(?i)(env:|environment:|process\.env)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(config|settings|configuration)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(api key|secret|password|token|credential)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(private|confidential|sensitive)\s*\([^)]*\)`),

	// Script/markup injection
	regexp.MustCompile(`(?i)(<script|javascript:|data:|vbscript:|onload=|onerror=)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(<iframe|<embed|<object|<applet)\s*\([^)]*\)`),

	// SQL injection
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|alter|create)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(--|;|/\*|\*/)\s*\([^)]*\)`),

	// Obfuscated prompt-injection attempts
	regexp.MustCompile(`(?i)(base64|hex|binary|encode|decode)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(regex|pattern|match|search)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(memory|buffer|stack|heap)\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)(overflow|underflow|leak)\s*\([^)]*\)`),
}

// advancedInjectionPatterns catch attempts to smuggle the above past the
// battery through escaping, Unicode notation, comments or concatenation.
var advancedInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\\u|\\x|\\0|\\n|\\r|\\t)`),
	regexp.MustCompile(`(?i)(U\+[0-9a-fA-F]{4,6}|&#x?[0-9a-fA-F]+;)`),
	regexp.MustCompile(`(?is)(/\*.*?\*/|<!--.*?-->|#.*?$)`),
	regexp.MustCompile(`(?i)(\+|concat\(|join\(|append\()`),
}

var (
	eventAttrPattern  = regexp.MustCompile(`on\w+="[^"]*"`)
	jsURIPattern      = regexp.MustCompile(`(?i)javascript:`)
	controlCharRegexp = regexp.MustCompile("[\x00-\x1F\x7F-\u009F]")
)

// Sanitizer cleans text entering or leaving the pipeline. Pure beyond
// logging; safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with a strip-everything HTML policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// IsDangerous reports whether the text matches any dangerous-content pattern.
func (s *Sanitizer) IsDangerous(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range dangerousPatterns {
		if p.MatchString(text) {
			log.Printf("Potentially dangerous content detected: %s", p.String())
			return true
		}
	}
	for _, p := range advancedInjectionPatterns {
		if p.MatchString(text) {
			log.Printf("Advanced injection attempt detected: %s", p.String())
			return true
		}
	}
	return false
}

// Sanitize cleans a user message before it enters the extraction pipeline.
// Order matters: the dangerous-content check may replace the whole input, and
// every later step operates on the (possibly replaced) string.
func (s *Sanitizer) Sanitize(text string) string {
	return s.sanitize(text, SafeInputMessage, MaxPromptLength, "")
}

// SanitizeReply cleans model output before it is returned or re-extracted.
// Longer budget than user input, and truncation marks the cut with an
// ellipsis so the reply does not end mid-word silently.
func (s *Sanitizer) SanitizeReply(text string) string {
	return s.sanitize(text, SafeReplyMessage, MaxResponseLength, "...")
}

func (s *Sanitizer) sanitize(text, substitute string, maxLen int, truncationMark string) string {
	if text == "" {
		return ""
	}

	if s.IsDangerous(text) {
		log.Printf("Input replaced with safe substitute sentence")
		return substitute
	}

	if len(text) > maxLen {
		log.Printf("Input truncated from %d to %d characters", len(text), maxLen)
		text = text[:maxLen] + truncationMark
	}

	// Control chars go first: the HTML tokenizer would otherwise turn NUL
	// bytes into U+FFFD replacement runes instead of dropping them.
	text = controlCharRegexp.ReplaceAllString(text, "")
	text = s.StripHTML(text)

	return text
}

// StripHTML removes markup unconditionally: tags, inline event-handler
// attributes and javascript: URIs. Runs even when no attack was detected.
// The policy entity-escapes its text output, so unescape afterwards to keep
// apostrophes and ampersands intact for extraction.
func (s *Sanitizer) StripHTML(text string) string {
	text = s.policy.Sanitize(text)
	text = html.UnescapeString(text)
	text = eventAttrPattern.ReplaceAllString(text, "")
	text = jsURIPattern.ReplaceAllString(text, "")
	return text
}

// ValidateHistory caps the conversation history and sanitizes each turn.
// Malformed turns are dropped; dangerous content is substituted, keeping the
// turn count intact for the model.
func (s *Sanitizer) ValidateHistory(history []model.ChatMessage) []model.ChatMessage {
	if len(history) == 0 {
		return nil
	}
	if len(history) > MaxHistoryLength {
		log.Printf("Conversation history truncated from %d to %d messages", len(history), MaxHistoryLength)
		history = history[len(history)-MaxHistoryLength:]
	}

	validated := make([]model.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		if msg.Role != "user" && msg.Role != "assistant" {
			log.Printf("Dropping history message with invalid role: %q", msg.Role)
			continue
		}
		if s.IsDangerous(msg.Content) {
			msg.Content = SafeHistoryMessage
		}
		validated = append(validated, msg)
	}
	return validated
}
