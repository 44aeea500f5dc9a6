package slack

// User is the author of a message. DisplayName and AvatarURL may be empty
// when the workspace profile does not carry them.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Channel is the conversation a message was posted in.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is the aggregated view of a single Slack message. Author, Channel,
// and Permalink are best-effort: they are nil/empty when the corresponding
// lookup failed. Timestamp is the canonical timestamp in seconds; for
// thread replies this is the thread root's timestamp, not the reply's own.
type Message struct {
	Text      string   `json:"text"`
	Timestamp float64  `json:"ts"`
	Author    *User    `json:"user,omitempty"`
	Channel   *Channel `json:"channel,omitempty"`
	Permalink string   `json:"permalink,omitempty"`
}

// Wire shapes for the Slack Web API. Every response carries an "ok" flag;
// on failure "error" holds a short code instead.

type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type repliesResponse struct {
	apiEnvelope
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
	User     string `json:"user"`
}

type userResponse struct {
	apiEnvelope
	User *wireUser `json:"user"`
}

type wireUser struct {
	ID      string `json:"id"`
	Profile struct {
		DisplayNameNormalized string `json:"display_name_normalized"`
		RealNameNormalized    string `json:"real_name_normalized"`
		Image24               string `json:"image_24"`
	} `json:"profile"`
}

type channelResponse struct {
	apiEnvelope
	Channel *wireChannel `json:"channel"`
}

type wireChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type permalinkResponse struct {
	apiEnvelope
	Permalink string `json:"permalink"`
}
