package mcpserver

// NoteFormatContract describes the markdown layout of notes produced from
// Slack messages, for LLM consumers reading or composing around them.
const NoteFormatContract = `# Rendered Note Format

Every note clipped from Slack has three stacked lines, joined with
markdown line breaks (two trailing spaces + newline):

` + "```" + `markdown
<img alt="Profile Image" src="<avatar url>" /><author display name>
<message body, with :short-codes: replaced by emoji glyphs>
<small>Posted in #<channel> | <yyyy MM dd> | [View message](<permalink>)</small>
` + "```" + `

## Rules

1. The headline is empty when the author could not be resolved; the
   ` + "`" + `<img ... />` + "`" + ` markup is omitted when the author has no avatar.
2. Emoji short-codes (e.g. ` + "`" + `:smile:` + "`" + `) are substituted with their
   glyphs; unresolvable codes pass through unchanged.
3. Each footer part (channel reference, date, permalink) is omitted
   entirely when its source datum is absent. The ` + "`" + `<small>` + "`" + ` wrapper is
   always present.
4. Dates are UTC, formatted ` + "`" + `yyyy MM dd` + "`" + ` (e.g. ` + "`" + `2023 11 14` + "`" + `).
5. For thread replies the date and permalink anchor on the thread root's
   timestamp, not the reply's own.
`
