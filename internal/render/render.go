// Package render turns an aggregated Slack message into the markdown body of
// a note. Rendering is pure: the same message always yields the same bytes.
package render

import (
	"fmt"
	"time"

	"github.com/enescakir/emoji"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
)

const dateLayout = "2006 01 02"

// Render produces three stacked lines: a headline (avatar + author name),
// the message body, and a de-emphasized footer (channel, date, permalink).
// Absent headline or footer parts collapse to empty strings so the vertical
// structure stays constant. Emoji short-codes like :smile: are replaced with
// their glyphs; unresolvable codes pass through unchanged.
func Render(m *slack.Message) string {
	if m == nil {
		return ""
	}
	out := headline(m) + "  \n" + m.Text + "  \n<small>" + footer(m) + "</small>"
	return emoji.Parse(out)
}

func headline(m *slack.Message) string {
	if m.Author == nil {
		return ""
	}
	icon := ""
	if m.Author.AvatarURL != "" {
		icon = fmt.Sprintf(`<img alt="Profile Image" src="%s" />`, m.Author.AvatarURL)
	}
	return icon + m.Author.DisplayName
}

func footer(m *slack.Message) string {
	out := ""
	if m.Channel != nil {
		out += fmt.Sprintf("Posted in #%s | ", m.Channel.Name)
	}
	if m.Timestamp != 0 {
		sec := int64(m.Timestamp)
		out += time.Unix(sec, 0).UTC().Format(dateLayout) + " | "
	}
	if m.Permalink != "" {
		out += fmt.Sprintf("[View message](%s)", m.Permalink)
	}
	return out
}
