package drafts

import (
	"net/url"
	"strings"
)

// MaxMailtoBody is the longest encoded body kept in a mailto link. Longer
// bodies are left out so mail clients still open the link.
const MaxMailtoBody = 1400

// MailtoLink builds a mailto link for to. It reports whether body fit into
// the link; when it did not, only the subject is carried.
func MailtoLink(to, subject, body string) (string, bool) {
	link := "mailto:" + to + "?subject=" + escape(subject)
	encoded := escape(body)
	if len(encoded) > MaxMailtoBody {
		return link, false
	}
	return link + "&body=" + encoded, true
}

func escape(s string) string {
	out := url.QueryEscape(s)
	out = strings.ReplaceAll(out, "+", "%20")
	return strings.ReplaceAll(out, "%2F", "/")
}
