package engine

import "strings"

// complianceTriggers mark replies that touch client data, financials or legal matters
var complianceTriggers = []string{
	"client", "loan", "sba", "financial", "capital", "funding",
	"tax", "legal", "compliance", "pii", "grant", "credit",
	"revenue", "profit", "cash flow", "projections", "balance sheet",
	"income", "audit", "regulation", "contract", "liability",
	"advising session", "session notes", "neoserra",
}

// NeedsComplianceFooter reports whether the reply or the user message mention a compliance topic
func NeedsComplianceFooter(userMessage, reply string) bool {
	text := strings.ToLower(reply + " " + userMessage)
	for _, trigger := range complianceTriggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}
