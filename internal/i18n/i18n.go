package i18n

import "strings"

// Supported portal languages. Hebrew is the default market, English the
// fallback for international clients.
const (
	LangHebrew  = "he"
	LangEnglish = "en"
)

var translations = map[string]map[string]string{
	LangHebrew: {
		"quote.status.draft":    "טיוטה",
		"quote.status.sent":     "נשלחה",
		"quote.status.approved": "אושרה",
		"quote.status.rejected": "נדחתה",
		"quote.status.expired":  "פגת תוקף",
		"quote.valid_until":     "בתוקף עד",
		"quote.approved_notice": "הצעת המחיר אושרה. תודה!",
		"quote.rejected_notice": "הצעת המחיר נדחתה.",
		"quote.expired_notice":  "תוקף הצעת המחיר פג. פנו אלינו לקבלת הצעה מעודכנת.",
	},
	LangEnglish: {
		"quote.status.draft":    "Draft",
		"quote.status.sent":     "Sent",
		"quote.status.approved": "Approved",
		"quote.status.rejected": "Rejected",
		"quote.status.expired":  "Expired",
		"quote.valid_until":     "Valid until",
		"quote.approved_notice": "This quote has been approved. Thank you!",
		"quote.rejected_notice": "This quote has been rejected.",
		"quote.expired_notice":  "This quote has expired. Contact us for an updated offer.",
	},
}

// T translates a code for the given language. Unknown languages fall back to
// Hebrew; unknown codes fall back to the code itself.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	if v, ok := translations[LangHebrew][code]; ok {
		return v
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, "-;"); i >= 0 {
			tag = tag[:i]
		}
		switch tag {
		case LangHebrew, "iw":
			return LangHebrew
		case LangEnglish:
			return LangEnglish
		}
	}
	return LangHebrew
}
